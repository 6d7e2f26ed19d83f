package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"spyglass/internal/adapter"
)

// OutcomeKind discriminates the result of one construction attempt.
type OutcomeKind int

const (
	// OutcomeInstance - construction succeeded.
	OutcomeInstance OutcomeKind = iota
	// OutcomeMismatch - the resource form does not apply to this backend.
	OutcomeMismatch
	// OutcomeValidation - the form applies but the value is invalid.
	OutcomeValidation
	// OutcomeMissingDependency - an external requirement is absent.
	OutcomeMissingDependency
	// OutcomeInternal - the backend misbehaved.
	OutcomeInternal
)

// Outcome is the value-level result of a construction attempt. Exactly
// one of Adapter and Err is set; which error taxonomy applied is in Kind,
// so callers branch on data instead of re-classifying exceptions.
type Outcome struct {
	Kind    OutcomeKind
	Adapter adapter.Adapter
	Err     error
}

// Construct invokes a scheme's factory with the typed construction input
// and classifies the result. A panic inside the factory is contained and
// reported as an internal outcome rather than crashing the run.
func Construct(ctx context.Context, factory adapter.Factory, in adapter.ConstructInput) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{
				Kind: OutcomeInternal,
				Err: &InternalError{
					Err:   fmt.Errorf("adapter factory panicked: %v", r),
					Stack: string(debug.Stack()),
				},
			}
		}
	}()

	inst, err := factory(ctx, in)
	if err == nil {
		if inst == nil {
			return Outcome{Kind: OutcomeInternal, Err: &InternalError{
				Err: fmt.Errorf("adapter factory returned nil adapter without error"),
			}}
		}
		return Outcome{Kind: OutcomeInstance, Adapter: inst}
	}

	var validation *adapter.ValidationError
	var missing *adapter.MissingDependencyError
	switch {
	case errors.Is(err, adapter.ErrResourceForm):
		return Outcome{Kind: OutcomeMismatch, Err: err}
	case errors.As(err, &validation):
		return Outcome{Kind: OutcomeValidation, Err: err}
	case errors.As(err, &missing):
		return Outcome{Kind: OutcomeMissingDependency, Err: err}
	default:
		return Outcome{Kind: OutcomeInternal, Err: &InternalError{Err: err}}
	}
}
