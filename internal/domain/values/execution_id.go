// Package values holds the small immutable types shared by the audit domain.
package values

import (
	"fmt"

	"github.com/google/uuid"
)

// ExecutionID identifies one recorded audit or top run.
type ExecutionID struct {
	value uuid.UUID
}

// NewExecutionID returns a random run identifier.
func NewExecutionID() ExecutionID {
	return ExecutionID{value: uuid.New()}
}

// ParseExecutionID parses the textual form produced by String.
func ParseExecutionID(s string) (ExecutionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ExecutionID{}, fmt.Errorf("invalid run id %q: %w", s, err)
	}
	return ExecutionID{value: id}, nil
}

func (e ExecutionID) String() string {
	return e.value.String()
}

// IsZero returns true if this is the zero value
func (e ExecutionID) IsZero() bool {
	return e.value == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler so run ids render as strings
// in JSON and YAML output.
func (e ExecutionID) MarshalText() ([]byte, error) {
	return []byte(e.value.String()), nil
}
