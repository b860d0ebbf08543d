package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/nova/internal/infrastructure/container"
)

// CommandContext provides common command dependencies.
type CommandContext struct {
	Container *container.Container
	Logger    *slog.Logger
	Context   context.Context
}

// CommandHandler is a function that executes with initialized dependencies.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// withContainer wraps a command handler with container initialization:
// configuration loading, the redacting logger and service wiring.
func withContainer(handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var searchPaths []string
		if cfgFile == "" {
			if home, err := os.UserHomeDir(); err == nil {
				searchPaths = append(searchPaths, home)
			}
			searchPaths = append(searchPaths, ".")
		}

		c, err := container.New(container.Options{
			ConfigFile:  cfgFile,
			SearchPaths: searchPaths,
			LogOutput:   os.Stderr,
			Debug:       debug,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		logger := c.Logger()
		slog.SetDefault(logger)
		if used := c.Viper().ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "file", used)
		}

		ctx := &CommandContext{
			Container: c,
			Logger:    logger,
			Context:   cmd.Context(),
		}
		return handler(ctx, cmd, args)
	}
}
