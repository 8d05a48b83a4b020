package model

import "fmt"

// ErrorKind is one of the typed failure kinds surfaced to the control
// client (spec §7).
type ErrorKind string

const (
	InvalidArgument ErrorKind = "InvalidArgument"
	NoFocusedWindow ErrorKind = "NoFocusedWindow"
	NoSuchMonitor   ErrorKind = "NoSuchMonitor"
	NoSuchWorkspace ErrorKind = "NoSuchWorkspace"
	Paused          ErrorKind = "Paused"
	OsCallFailed    ErrorKind = "OsCallFailed"
)

// CommandError is the error type returned by every World command. Kind is
// matched with errors.Is against the sentinel errors below.
type CommandError struct {
	Kind ErrorKind
	Msg  string
}

func (e *CommandError) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is reports equality by Kind only, so callers can write
// errors.Is(err, model.ErrNoFocusedWindow) regardless of Msg.
func (e *CommandError) Is(target error) bool {
	t, ok := target.(*CommandError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel errors, one per ErrorKind, for use with errors.Is.
var (
	ErrInvalidArgument = &CommandError{Kind: InvalidArgument}
	ErrNoFocusedWindow = &CommandError{Kind: NoFocusedWindow}
	ErrNoSuchMonitor   = &CommandError{Kind: NoSuchMonitor}
	ErrNoSuchWorkspace = &CommandError{Kind: NoSuchWorkspace}
	ErrPaused          = &CommandError{Kind: Paused}
	ErrOsCallFailed    = &CommandError{Kind: OsCallFailed}
)

func newError(kind ErrorKind, format string, args ...any) *CommandError {
	return &CommandError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
