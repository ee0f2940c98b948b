package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/geange/nfasim"
	"github.com/geange/nfasim/internal/loader"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check an automaton description and report its structure",
	Run: func(cmd *cobra.Command, args []string) {
		applySimulateFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := validate(cmd.OutOrStdout(), cfg.AutomatonPath, indexOptions(cfg)...); err != nil {
			logrus.Fatalf("Validation failed: %v", err)
		}
	},
}

// validate loads the description at path and writes a short report to w.
// A description without a start state is an error since it cannot be run.
func validate(w io.Writer, path string, opts ...nfasim.IndexOption) error {
	a, err := loader.Load(path)
	if err != nil {
		return err
	}

	index := nfasim.BuildTransitionIndex(a.Transitions(), opts...)
	fmt.Fprintf(w, "states:      %d\n", a.GetNumStates())
	fmt.Fprintf(w, "transitions: %d (%d distinct)\n", a.GetNumTransitions(), index.Size())
	fmt.Fprintf(w, "alphabet:    %s\n", formatAlphabet(nfasim.Alphabet(a)))
	if n := index.Duplicates(); n > 0 {
		logrus.Warnf("%d transitions repeat an earlier (state, symbol) pair", n)
	}

	if !a.HasStart() {
		return fmt.Errorf("%s: %w", path, nfasim.ErrInvalidAutomaton)
	}
	fmt.Fprintf(w, "start:       %s\n", a.Label(a.Start()))

	if dead := nfasim.UnreachableAcceptStates(a, opts...); len(dead) > 0 {
		logrus.Warnf("Accept states never reached: %v", a.Labels(dead))
	}
	if nfasim.IsEmptyAutomaton(a, opts...) {
		logrus.Warn("Automaton accepts no strings")
	}
	return nil
}

func formatAlphabet(symbols []rune) string {
	parts := make([]string, len(symbols))
	for i, r := range symbols {
		parts[i] = string(r)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func init() {
	validateCmd.Flags().StringVar(&automatonPath, "automaton", "", "Path to the automaton description (JSON or YAML)")
	validateCmd.Flags().BoolVar(&unionDuplicates, "union-duplicates", false, "Merge repeated (state, symbol) transitions instead of keeping the last one")

	rootCmd.AddCommand(validateCmd)
}
