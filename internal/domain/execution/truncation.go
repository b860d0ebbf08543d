package execution

import (
	"encoding/json"
	"fmt"
)

// DefaultDataLimit bounds the size of the data recorded with an error entry.
const DefaultDataLimit = 4096

// TruncationStrategy shrinks oversized error data before it is recorded.
type TruncationStrategy interface {
	Truncate(data any, limit int) (any, bool)
}

// GreedyTruncator cuts long strings and replaces large nested values with a
// placeholder until the serialized value fits.
type GreedyTruncator struct{}

// Truncate returns data unchanged when it fits within limit bytes of JSON.
// The second result reports whether anything was cut.
func (t *GreedyTruncator) Truncate(data any, limit int) (any, bool) {
	if limit <= 0 || data == nil {
		return data, false
	}

	serialized, err := json.Marshal(data)
	if err != nil {
		// Not representable as JSON; fall back to its printed form.
		s := fmt.Sprint(data)
		if len(s) <= limit {
			return s, false
		}
		return s[:limit] + "... [TRUNCATED]", true
	}
	if len(serialized) <= limit {
		return data, false
	}

	threshold := limit / 2
	switch v := data.(type) {
	case string:
		return v[:threshold] + "... [TRUNCATED]", true
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			b, _ := json.Marshal(val)
			if len(b) > threshold {
				out[k] = placeholder(val)
				continue
			}
			out[k] = val
		}
		return out, true
	default:
		return placeholder(v), true
	}
}

func placeholder(v any) map[string]string {
	return map[string]string{
		"_truncated": "value exceeded size limit",
		"_type":      fmt.Sprintf("%T", v),
	}
}
