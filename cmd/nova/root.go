package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "nova",
	Short: "Host compliance audits driven by profile data",
	Long: `Nova runs audit modules against profile data synced to this host and
reports which checks failed, succeeded or were controlled, together with a
compliance score. Profiles are selected explicitly or through a topfile that
maps host match expressions to profiles.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.nova.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// setupLogging installs the logger used until a command builds its own
// redacting logger from configuration.
func setupLogging() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
