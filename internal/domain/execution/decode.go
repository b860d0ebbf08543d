package execution

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reglet-dev/nova/internal/domain/values"
)

// ContractViolationError reports module output that does not fit the
// envelope: a non-mapping value, an unknown class, or a malformed entry.
type ContractViolationError struct {
	Value  any
	Reason string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("bad return type: %s", e.Reason)
}

// DecodeModuleOutput converts the untyped output of a module into an
// Envelope. Only the known classes are accepted.
func DecodeModuleOutput(raw any) (*Envelope, error) {
	m, ok := asStringMap(raw)
	if !ok {
		return nil, &ContractViolationError{Value: raw, Reason: fmt.Sprintf("expected a mapping, got %T", raw)}
	}

	// Stable key order keeps decoding errors reproducible.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := NewEnvelope()
	for _, k := range keys {
		class, err := values.ParseClass(k)
		if err != nil {
			return nil, &ContractViolationError{Value: raw, Reason: fmt.Sprintf("unknown result class %q", k)}
		}

		if class == values.ClassErrors {
			if err := decodeErrors(env, m[k]); err != nil {
				return nil, &ContractViolationError{Value: raw, Reason: err.Error()}
			}
			continue
		}

		if m[k] == nil {
			continue
		}
		items, ok := m[k].([]any)
		if !ok {
			return nil, &ContractViolationError{Value: raw, Reason: fmt.Sprintf("%s must be a list, got %T", k, m[k])}
		}
		for i, item := range items {
			fields, ok := asStringMap(item)
			if !ok {
				return nil, &ContractViolationError{Value: raw, Reason: fmt.Sprintf("%s[%d] must be a mapping, got %T", k, i, item)}
			}
			entry, err := NewResultEntry(fields)
			if err != nil {
				return nil, &ContractViolationError{Value: raw, Reason: fmt.Sprintf("%s[%d]: %v", k, i, err)}
			}
			env.Add(class, entry)
		}
	}
	return env, nil
}

// decodeErrors accepts either a list of {source: descriptor} mappings or a
// single {source: descriptor} mapping.
func decodeErrors(env *Envelope, raw any) error {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		for i, item := range v {
			m, ok := asStringMap(item)
			if !ok {
				return fmt.Errorf("entry %d of Errors must be a mapping, got %T", i, item)
			}
			appendErrorMap(env, m)
		}
		return nil
	default:
		m, ok := asStringMap(raw)
		if !ok {
			return fmt.Errorf("value of Errors must be a list or mapping, got %T", raw)
		}
		appendErrorMap(env, m)
		return nil
	}
}

func appendErrorMap(env *Envelope, m map[string]any) {
	sources := make([]string, 0, len(m))
	for k := range m {
		sources = append(sources, k)
	}
	sort.Strings(sources)

	for _, source := range sources {
		switch desc := m[source].(type) {
		case string:
			env.AddError(source, desc, nil)
		default:
			dm, ok := asStringMap(desc)
			if !ok {
				env.AddError(source, fmt.Sprint(desc), nil)
				continue
			}
			msg := ""
			if e, ok := dm["error"]; ok && e != nil {
				msg = fmt.Sprint(e)
			}
			env.AddError(source, msg, dm["data"])
		}
	}
}

// asStringMap normalizes the mapping types produced by the JSON and YAML
// decoders into map[string]any.
func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// LastLine returns the final non-empty line of a fault message.
func LastLine(msg string) string {
	lines := strings.Split(strings.TrimRight(msg, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
