package main

import (
	"github.com/spf13/cobra"

	"github.com/reglet-dev/nova/internal/application/dto"
	"github.com/reglet-dev/nova/internal/domain/entities"
)

var auditOpts = struct {
	common  CommonOptions
	display displayFlags
	tags    string
	topfile string
	kwargs  []string
}{common: DefaultCommonOptions()}

// auditCmd runs explicitly requested profiles.
var auditCmd = &cobra.Command{
	Use:   "audit [configs]",
	Short: "Audit this host against the given profiles",
	Long: `Run every loaded module against the selected profiles and report the
results. configs is a comma-separated list of dotted profile names such as
"cis.centos-7,network"; a name selects the profile and every profile below it.
Without configs the run is driven by the topfile, like "nova top".`,
	Example: `  nova audit cis.centos-7
  nova audit cis,network --tags 'CIS-1.*' -v
  nova audit cis -k min_uid=1000 --format json`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return auditOpts.common.ValidateFlags()
	},
	RunE: withContainer(runAudit),
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditOpts.common.RegisterFlags(auditCmd)
	auditOpts.display.register(auditCmd)
	auditCmd.Flags().StringVar(&auditOpts.tags, "tags", entities.DefaultTagFilter, "Only run checks whose tag matches this glob")
	auditCmd.Flags().StringVar(&auditOpts.topfile, "topfile", "", "Topfile used when no configs are given")
	auditCmd.Flags().StringArrayVarP(&auditOpts.kwargs, "kwarg", "k", nil, "Module keyword argument as key=value (repeatable)")
}

func runAudit(c *CommandContext, cmd *cobra.Command, args []string) error {
	kwargs, err := parseKwargs(auditOpts.kwargs)
	if err != nil {
		return err
	}

	req := dto.AuditRequest{
		Tags:    auditOpts.tags,
		Topfile: auditOpts.topfile,
		Kwargs:  kwargs,
		Display: auditOpts.display.options(cmd),
	}
	if len(args) == 1 {
		req.Configs = dto.SplitConfigs(args[0])
	}

	ctx, cancel := auditOpts.common.ApplyToContext(c.Context)
	defer cancel()

	c.Logger.Debug("starting audit", "configs", req.Configs, "tags", req.Tags)
	report, err := c.Container.AuditService().Audit(ctx, req)
	if err != nil {
		return err
	}

	if err := auditOpts.common.writeReport(c.Container.Formatters(), report); err != nil {
		return err
	}
	return reportError(report)
}
