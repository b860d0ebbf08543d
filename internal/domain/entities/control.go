package entities

import (
	"fmt"
	"sort"
)

// ControlReasonKey is the ControlSpec field holding the human readable reason.
const ControlReasonKey = "reason"

// ControlSpec describes one compensating control: a reason plus any extra
// fields the profile author attached.
type ControlSpec map[string]any

// Reason returns the control's reason, or "" when none was given.
func (c ControlSpec) Reason() string {
	if r, ok := c[ControlReasonKey]; ok && r != nil {
		return fmt.Sprint(r)
	}
	return ""
}

// TaggedControl is a control declaration bound to the check tag it covers.
type TaggedControl struct {
	Spec ControlSpec
	Tag  string
}

// ParseControlEntry normalizes one entry of a profile's control section.
//
// A bare string declares a control with no reason. A mapping declares one
// control per key: a string value becomes the reason, a mapping value is
// taken as the spec itself. Keys of a mapping are returned in sorted order.
func ParseControlEntry(raw any) ([]TaggedControl, error) {
	switch v := raw.(type) {
	case string:
		return []TaggedControl{{Tag: v, Spec: ControlSpec{}}}, nil
	case map[string]any:
		return parseControlMap(v), nil
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[fmt.Sprint(k)] = val
		}
		return parseControlMap(m), nil
	default:
		return nil, fmt.Errorf("control entries must be strings or dicts: %v", raw)
	}
}

func parseControlMap(m map[string]any) []TaggedControl {
	tags := make([]string, 0, len(m))
	for k := range m {
		tags = append(tags, k)
	}
	sort.Strings(tags)

	out := make([]TaggedControl, 0, len(tags))
	for _, tag := range tags {
		out = append(out, TaggedControl{Tag: tag, Spec: toControlSpec(m[tag])})
	}
	return out
}

func toControlSpec(v any) ControlSpec {
	switch s := v.(type) {
	case nil:
		return ControlSpec{}
	case string:
		return ControlSpec{ControlReasonKey: s}
	case map[string]any:
		spec := make(ControlSpec, len(s))
		for k, val := range s {
			spec[k] = val
		}
		return spec
	case map[any]any:
		spec := make(ControlSpec, len(s))
		for k, val := range s {
			spec[fmt.Sprint(k)] = val
		}
		return spec
	default:
		return ControlSpec{ControlReasonKey: fmt.Sprint(s)}
	}
}
