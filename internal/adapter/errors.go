package adapter

import (
	"errors"
	"fmt"
)

// ErrResourceForm signals that a factory's backend cannot be built from
// this resource form at all (wrong shape, not wrong value). Dispatch
// reports it as "this resource form is not supported". Factories must
// never use it to mean "value is invalid" — that hides the real problem
// from the user.
var ErrResourceForm = errors.New("resource form not supported")

// ValidationError means the resource form applies but the supplied value
// is invalid (missing file, malformed path, unsupported extension). The
// message is surfaced to the user verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// MissingDependencyError means the backend legitimately cannot run
// because an external requirement (a binary, an optional library) is
// absent. It is an expected condition, not a defect: dispatch reports it
// with the Install guidance and a batch run continues with its remaining
// entries.
type MissingDependencyError struct {
	Name    string
	Install string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("missing dependency: %s", e.Name)
}
