package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/nova/internal/infrastructure/output"
)

var loadJSON bool

// loadCmd rebuilds the catalog and prints what was found.
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load modules and profiles and list what was found",
	Long: `Scan the module and profile directories and print the loaded modules,
the loaded profile data, and anything that could not be loaded.`,
	Args: cobra.NoArgs,
	RunE: withContainer(runLoad),
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().BoolVar(&loadJSON, "json", false, "Print the summary as JSON")
}

func runLoad(c *CommandContext, _ *cobra.Command, _ []string) error {
	summary, err := c.Container.AuditService().Load(c.Context)
	if err != nil {
		return err
	}

	if loadJSON {
		return output.NewJSONFormatter(os.Stdout, true).FormatValue(summary)
	}
	if err := output.NewYAMLFormatter(os.Stdout).FormatValue(summary); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}
