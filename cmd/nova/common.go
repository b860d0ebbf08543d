package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/nova/internal/application/dto"
	"github.com/reglet-dev/nova/internal/infrastructure/output"
)

// CommonOptions contains the output and execution flags shared by the
// audit commands.
type CommonOptions struct {
	Format  string
	Output  string
	Timeout time.Duration
	NoColor bool
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Format: "table",
	}
}

// RegisterFlags adds common flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout,
		"Global timeout for the whole run (0 to disable)")
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		"Output format: table, json, yaml, junit, sarif")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", opts.Output,
		"Output file path (default: stdout)")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", opts.NoColor,
		"Disable colored table output")
}

// ApplyToContext applies timeout to context.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return ctx, func() {}
}

// ValidateFlags validates common options.
func (opts *CommonOptions) ValidateFlags() error {
	supported := output.NewFormatterFactory().SupportedFormats()
	if !slices.Contains(supported, opts.Format) {
		return fmt.Errorf("invalid format: %s (valid: %v)", opts.Format, supported)
	}
	if opts.Timeout < 0 {
		return fmt.Errorf("--timeout must not be negative")
	}
	return nil
}

// openOutput returns the report destination and a close function.
func (opts *CommonOptions) openOutput() (io.Writer, func(), error) {
	if opts.Output == "" {
		return os.Stdout, func() {}, nil
	}
	//nolint:gosec // G304: User-controlled output file path is intentional
	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}

// writeReport renders report in the selected format.
func (opts *CommonOptions) writeReport(factory *output.FormatterFactory, report *dto.Report) error {
	w, done, err := opts.openOutput()
	if err != nil {
		return err
	}
	defer done()

	formatter, err := factory.Create(opts.Format, w, output.FormatterOptions{
		Indent: true,
		Color:  !opts.NoColor && opts.Output == "",
	})
	if err != nil {
		return err
	}
	if err := formatter.Format(report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

// reportError turns a report with failures or errors into a non-nil error,
// giving the process a non-zero exit status.
func reportError(report *dto.Report) error {
	if len(report.Failure) > 0 || len(report.Errors) > 0 {
		return fmt.Errorf("audit failed: %d passed, %d failed, %d errors",
			len(report.Success), len(report.Failure), len(report.Errors))
	}
	return nil
}
