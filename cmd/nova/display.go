package main

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/nova/internal/application/dto"
)

// displayFlags are the tri-state report toggles. A flag left unset on the
// command line falls back to configuration.
type displayFlags struct {
	verbose        bool
	showSuccess    bool
	showCompliance bool
	showProfile    bool
}

func (d *displayFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&d.verbose, "verbose", "v", false, "Show every result entry with its module fields")
	cmd.Flags().BoolVar(&d.showSuccess, "show-success", true, "Include successful checks")
	cmd.Flags().BoolVar(&d.showCompliance, "show-compliance", true, "Include the compliance score")
	cmd.Flags().BoolVar(&d.showProfile, "show-profile", false, "Deprecated, has no effect")
	_ = cmd.Flags().MarkDeprecated("show-profile", "it is no longer supported")
}

// options converts the flags the user actually set into request options.
func (d *displayFlags) options(cmd *cobra.Command) dto.DisplayOptions {
	var opts dto.DisplayOptions
	changed := func(name string, v bool) *bool {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		return dto.Bool(v)
	}
	opts.Verbose = changed("verbose", d.verbose)
	opts.ShowSuccess = changed("show-success", d.showSuccess)
	opts.ShowCompliance = changed("show-compliance", d.showCompliance)
	opts.ShowProfile = changed("show-profile", d.showProfile)
	if debug {
		opts.Debug = dto.Bool(true)
	}
	return opts
}

// parseKwargs turns key=value pairs into module keyword arguments. Values
// are decoded as YAML scalars or flow collections, so "retries=3" yields an
// integer and "ports=[22, 80]" a list. Undecodable values stay strings.
func parseKwargs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	kwargs := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid kwarg %q: expected key=value", pair)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
			value = raw
		}
		kwargs[key] = value
	}
	return kwargs, nil
}
