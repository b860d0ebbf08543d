package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/nova/internal/version"
)

// versionCmd implements the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of nova",
	Run: func(cmd *cobra.Command, _ []string) {
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "nova version %s (commit %s, built %s, %s %s)\nmodule contract %s\n",
			info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform, info.ModuleContract)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
