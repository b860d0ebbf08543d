package entities

import (
	"fmt"

	"github.com/reglet-dev/nova/internal/domain/execution"
)

// Recorder is implemented by faults that are reported in the Errors section
// of a result instead of aborting the run.
type Recorder interface {
	error
	Entry() execution.ErrorEntry
}

// SelectionError reports a profile request that matched no loaded profile.
type SelectionError struct {
	Request string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("No matching profiles found for %s", e.Request)
}

// Entry implements Recorder.
func (e *SelectionError) Entry() execution.ErrorEntry {
	return execution.ErrorEntry{Source: e.Request, Error: e.Error()}
}

// ModuleFaultError reports a module that failed while running.
type ModuleFaultError struct {
	Cause  error
	Module string
}

func (e *ModuleFaultError) Error() string {
	return fmt.Sprintf("module %s: exception occurred: %v", e.Module, e.Cause)
}

func (e *ModuleFaultError) Unwrap() error {
	return e.Cause
}

// Entry implements Recorder. Only the final line of the fault is kept.
func (e *ModuleFaultError) Entry() execution.ErrorEntry {
	msg := ""
	if e.Cause != nil {
		msg = execution.LastLine(e.Cause.Error())
	}
	return execution.ErrorEntry{Source: e.Module, Error: "exception occurred", Data: msg}
}

// ModuleContractError reports a module whose output is not a valid envelope.
type ModuleContractError struct {
	Value  any
	Module string
	Reason string
}

func (e *ModuleContractError) Error() string {
	return fmt.Sprintf("module %s: bad return type: %s", e.Module, e.Reason)
}

// Entry implements Recorder; the offending value is kept as data.
func (e *ModuleContractError) Entry() execution.ErrorEntry {
	return execution.ErrorEntry{Source: e.Module, Error: "bad return type", Data: e.Value}
}

// ModuleCancelledError reports a module that had not finished when the
// audit was cancelled.
type ModuleCancelledError struct {
	Cause  error
	Module string
}

func (e *ModuleCancelledError) Error() string {
	return fmt.Sprintf("module %s: audit cancelled: %v", e.Module, e.Cause)
}

func (e *ModuleCancelledError) Unwrap() error {
	return e.Cause
}

// Entry implements Recorder.
func (e *ModuleCancelledError) Entry() execution.ErrorEntry {
	var data any
	if e.Cause != nil {
		data = e.Cause.Error()
	}
	return execution.ErrorEntry{Source: e.Module, Error: "audit cancelled", Data: data}
}

// MalformedTopEntryError reports a topfile list entry of the wrong shape,
// or a match expression the host matcher could not evaluate.
type MalformedTopEntryError struct {
	Cause   error
	Topfile string
}

func (e *MalformedTopEntryError) Error() string {
	return e.Cause.Error()
}

func (e *MalformedTopEntryError) Unwrap() error {
	return e.Cause
}

// Entry implements Recorder.
func (e *MalformedTopEntryError) Entry() execution.ErrorEntry {
	return execution.ErrorEntry{Source: e.Topfile, Error: e.Cause.Error()}
}

// MalformedControlError reports a control entry that is neither a string
// nor a mapping.
type MalformedControlError struct {
	Cause   error
	Profile string
}

func (e *MalformedControlError) Error() string {
	return fmt.Sprintf("profile %s: %v", e.Profile, e.Cause)
}

func (e *MalformedControlError) Unwrap() error {
	return e.Cause
}

// Entry implements Recorder.
func (e *MalformedControlError) Entry() execution.ErrorEntry {
	return execution.ErrorEntry{Source: e.Profile, Error: e.Cause.Error()}
}
