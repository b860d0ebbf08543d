package main

import (
	"github.com/spf13/cobra"

	"github.com/reglet-dev/nova/internal/application/dto"
)

var topOpts = struct {
	common  CommonOptions
	display displayFlags
}{common: DefaultCommonOptions()}

// topCmd runs the profiles a topfile assigns to this host.
var topCmd = &cobra.Command{
	Use:   "top [topfile]",
	Short: "Audit this host against the profiles its topfile selects",
	Long: `Read the topfile (default: nova.topfile, relative to the profile
directory), keep the entries whose match expression selects this host, and
audit each tag group. Results of all groups are combined into one report.`,
	Example: `  nova top
  nova top custom.nova --format sarif -o nova.sarif`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return topOpts.common.ValidateFlags()
	},
	RunE: withContainer(runTop),
}

func init() {
	rootCmd.AddCommand(topCmd)

	topOpts.common.RegisterFlags(topCmd)
	topOpts.display.register(topCmd)
}

func runTop(c *CommandContext, cmd *cobra.Command, args []string) error {
	req := dto.TopRequest{Display: topOpts.display.options(cmd)}
	if len(args) == 1 {
		req.Topfile = args[0]
	}

	ctx, cancel := topOpts.common.ApplyToContext(c.Context)
	defer cancel()

	report, err := c.Container.AuditService().Top(ctx, req)
	if err != nil {
		return err
	}

	if err := topOpts.common.writeReport(c.Container.Formatters(), report); err != nil {
		return err
	}
	return reportError(report)
}
