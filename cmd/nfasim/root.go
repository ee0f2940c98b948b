package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/geange/nfasim/internal/config"
)

var (
	configFile string // YAML configuration file
	envFile    string // dotenv file read before the environment
	logLevel   string // Log verbosity level

	// cfg is resolved once per invocation before any subcommand runs.
	cfg *config.Config
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:           "nfasim",
	Short:         "Step-by-step simulator for nondeterministic finite automata",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(config.Options{
			File:    configFile,
			EnvFile: envFile,
			Lookup:  os.LookupEnv,
		})
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			c.LogLevel = logLevel
		}

		level, err := logrus.ParseLevel(c.LogLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", c.LogLevel)
		}
		logrus.SetLevel(level)

		cfg = c
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "Path to a dotenv file (ignored if missing)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "Log level (trace, debug, info, warn, error, fatal, panic)")
}
