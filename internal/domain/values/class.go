package values

import (
	"fmt"
)

// Class is the outcome class a result entry is filed under.
type Class string

const (
	// ClassSuccess holds checks that passed
	ClassSuccess Class = "Success"
	// ClassFailure holds checks that failed and are not covered by a control
	ClassFailure Class = "Failure"
	// ClassControlled holds failures overridden by a compensating control
	ClassControlled Class = "Controlled"
	// ClassErrors holds faults recorded while selecting profiles or running modules
	ClassErrors Class = "Errors"
)

// Classes lists every known class in report order.
func Classes() []Class {
	return []Class{ClassFailure, ClassSuccess, ClassControlled, ClassErrors}
}

// ParseClass converts a raw class name into a Class.
func ParseClass(s string) (Class, error) {
	c := Class(s)
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

// IsPassing returns true if entries of this class count toward compliance
func (c Class) IsPassing() bool {
	return c == ClassSuccess || c == ClassControlled
}

// IsScored returns true if entries of this class enter the compliance denominator
func (c Class) IsScored() bool {
	return c == ClassSuccess || c == ClassFailure || c == ClassControlled
}

// Validate returns an error if the class value is invalid
func (c Class) Validate() error {
	switch c {
	case ClassSuccess, ClassFailure, ClassControlled, ClassErrors:
		return nil
	default:
		return fmt.Errorf("invalid result class: %q", string(c))
	}
}

// String returns the class name as it appears in reports.
func (c Class) String() string {
	return string(c)
}
