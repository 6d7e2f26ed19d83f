package dispatch

import (
	"fmt"
	"strings"
)

// UnknownSchemeError means no registry entry exists for a parsed scheme.
// The message lists every known scheme.
type UnknownSchemeError struct {
	Scheme string
	Known  []string
}

func (e *UnknownSchemeError) Error() string {
	return fmt.Sprintf("no adapter registered for scheme %q (known: %s)",
		e.Scheme, strings.Join(e.Known, ", "))
}

// UnsupportedResourceError wraps a construction mismatch for reporting:
// the scheme exists but its backend cannot be built from this resource
// form.
type UnsupportedResourceError struct {
	Scheme   string
	Resource string
}

func (e *UnsupportedResourceError) Error() string {
	return fmt.Sprintf("scheme %q does not support this resource form: %q", e.Scheme, e.Resource)
}

// InternalError marks a backend defect (a crash or an error outside the
// construction taxonomy). The stack is shown only under --debug.
type InternalError struct {
	Err   error
	Stack string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("adapter internal error: %v", e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }
