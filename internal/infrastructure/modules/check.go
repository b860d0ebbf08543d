// Package modules provides the audit modules nova runs: the built-in stat
// and grep checks, and external executables found in the module directory.
package modules

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/reglet-dev/nova/internal/application/ports"
	"github.com/reglet-dev/nova/internal/domain/execution"
	"github.com/reglet-dev/nova/internal/domain/services"
	"github.com/reglet-dev/nova/internal/domain/values"
)

// Extra fields attached to every built-in result entry.
const (
	FieldModule  = "module"
	FieldProfile = "profile"
	FieldPath    = "path"
	FieldReason  = "reason"
)

// check is the common part of every built-in check declaration.
type check interface {
	tag() string
	validate() error
}

// checkFunc evaluates one decoded check of type C and returns its class and,
// for failures, a reason.
type checkFunc[C check] func(ctx context.Context, c C) (values.Class, string)

// runChecks decodes the section list of every profile into checks of type C
// and evaluates those whose tag passes the request's filter.
func runChecks[C check](
	ctx context.Context,
	module, section string,
	req ports.ModuleRequest,
	eval checkFunc[C],
	describe func(C) (description, path string),
) (*execution.Envelope, error) {
	filter, err := services.NewTagFilter(req.Tags)
	if err != nil {
		return nil, fmt.Errorf("invalid tag filter %q: %w", req.Tags, err)
	}

	env := execution.NewEnvelope()
	for _, p := range req.Profiles {
		raw, ok := p.Data.Section(section)
		if !ok || raw == nil {
			continue
		}
		items, ok := raw.([]any)
		if !ok {
			env.AddError(module, "malformed check section", fmt.Sprintf("%s: %s must be a list", p.Key, section))
			continue
		}

		for i, item := range items {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			var c C
			if err := decodeCheck(item, &c); err != nil {
				env.AddError(module, "malformed check", fmt.Sprintf("%s: %s[%d]: %v", p.Key, section, i, err))
				continue
			}
			if err := c.validate(); err != nil {
				env.AddError(module+"/"+c.tag(), "malformed check", fmt.Sprintf("%s: %v", p.Key, err))
				continue
			}
			if !filter.Matches(c.tag()) {
				continue
			}

			class, reason := eval(ctx, c)
			desc, path := describe(c)
			entry := execution.ResultEntry{
				Tag:         c.tag(),
				Description: desc,
				Extra: map[string]any{
					FieldModule:  module,
					FieldProfile: p.Key,
					FieldPath:    path,
				},
			}
			if reason != "" {
				entry.Extra[FieldReason] = reason
			}
			env.Add(class, entry)
		}
	}
	return env, nil
}

// decodeCheck decodes one raw list item into a typed check. Unknown keys
// are rejected so typos surface as malformed checks.
func decodeCheck(raw any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           target,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
