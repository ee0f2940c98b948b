package main

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/geange/nfasim"
	"github.com/geange/nfasim/internal/config"
	"github.com/geange/nfasim/internal/loader"
	"github.com/geange/nfasim/internal/record"
)

var (
	automatonPath   string
	input           string
	outputPath      string
	sourceLabel     string
	unionDuplicates bool
)

// simulateCmd loads an automaton, runs it over the input and writes the record
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run an automaton over an input string and save the trace",
	Run: func(cmd *cobra.Command, args []string) {
		applySimulateFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("%v", err)
		}

		logrus.Infof("Simulating %s on input %q", cfg.AutomatonPath, cfg.Input)
		rec, err := simulate(cfg)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if err := record.WriteFile(cfg.OutputPath, rec); err != nil {
			logrus.Fatalf("Could not save simulation: %v", err)
		}
		logrus.WithField("path", cfg.OutputPath).Info("Simulation saved")
		printSummary(cmd.OutOrStdout(), rec, cfg.OutputPath)
	},
}

// applySimulateFlags copies explicitly set flags over the loaded configuration.
func applySimulateFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("automaton") {
		c.AutomatonPath = automatonPath
	}
	if flags.Changed("input") {
		c.Input = input
	}
	if flags.Changed("output") {
		c.OutputPath = outputPath
	}
	if flags.Changed("label") {
		c.SourceLabel = sourceLabel
	}
	if flags.Changed("union-duplicates") {
		c.UnionDuplicates = unionDuplicates
	}
}

func indexOptions(c *config.Config) []nfasim.IndexOption {
	if c.UnionDuplicates {
		return []nfasim.IndexOption{nfasim.WithUnionDuplicates()}
	}
	return nil
}

func simulate(c *config.Config) (*record.Record, error) {
	a, err := loader.Load(c.AutomatonPath)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("Loaded %d states, %d transitions", a.GetNumStates(), a.GetNumTransitions())

	res, err := nfasim.Run(a, c.Input, indexOptions(c)...)
	if err != nil {
		return nil, err
	}
	for i, step := range res.Trace {
		logrus.Tracef("step %d: %v", i, step)
	}
	return record.New(c.Label(), res), nil
}

func printSummary(w io.Writer, rec *record.Record, path string) {
	out := termenv.NewOutput(w)
	verdict := out.String("REJECTED").Foreground(out.Color("1")).Bold()
	if rec.Accepted {
		verdict = out.String("ACCEPTED").Foreground(out.Color("2")).Bold()
	}
	fmt.Fprintf(w, "%s %q after %d steps, trace saved to %s\n", verdict, rec.Input, len(rec.Trace)-1, path)
}

func init() {
	simulateCmd.Flags().StringVar(&automatonPath, "automaton", "", "Path to the automaton description (JSON or YAML)")
	simulateCmd.Flags().StringVar(&input, "input", "", "Input string to simulate")
	simulateCmd.Flags().StringVar(&outputPath, "output", config.DefaultOutputPath, "Where to write the simulation record")
	simulateCmd.Flags().StringVar(&sourceLabel, "label", "", "Source label stored in the record (default: automaton file name)")
	simulateCmd.Flags().BoolVar(&unionDuplicates, "union-duplicates", false, "Merge repeated (state, symbol) transitions instead of keeping the last one")

	rootCmd.AddCommand(simulateCmd)
}
