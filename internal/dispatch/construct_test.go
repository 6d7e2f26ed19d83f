package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"spyglass/internal/adapter"
	"spyglass/internal/result"
)

type stubAdapter struct{}

func (s *stubAdapter) Structure(_ context.Context) (*result.Record, error) {
	return result.New("stub", "test", nil), nil
}

func TestConstruct(t *testing.T) {
	ctx := context.Background()
	in := adapter.ConstructInput{Resource: "res"}

	tests := []struct {
		name    string
		factory adapter.Factory
		want    OutcomeKind
	}{
		{
			name: "success",
			factory: func(_ context.Context, _ adapter.ConstructInput) (adapter.Adapter, error) {
				return &stubAdapter{}, nil
			},
			want: OutcomeInstance,
		},
		{
			name: "resource form mismatch",
			factory: func(_ context.Context, _ adapter.ConstructInput) (adapter.Adapter, error) {
				return nil, fmt.Errorf("takes no resource: %w", adapter.ErrResourceForm)
			},
			want: OutcomeMismatch,
		},
		{
			name: "validation failure",
			factory: func(_ context.Context, _ adapter.ConstructInput) (adapter.Adapter, error) {
				return nil, adapter.Validationf("file %q does not exist", "/nope")
			},
			want: OutcomeValidation,
		},
		{
			name: "missing dependency",
			factory: func(_ context.Context, _ adapter.ConstructInput) (adapter.Adapter, error) {
				return nil, &adapter.MissingDependencyError{Name: "nmap", Install: "apt install nmap"}
			},
			want: OutcomeMissingDependency,
		},
		{
			name: "unclassified error is internal",
			factory: func(_ context.Context, _ adapter.ConstructInput) (adapter.Adapter, error) {
				return nil, errors.New("nil map write")
			},
			want: OutcomeInternal,
		},
		{
			name: "nil adapter without error is internal",
			factory: func(_ context.Context, _ adapter.ConstructInput) (adapter.Adapter, error) {
				return nil, nil
			},
			want: OutcomeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Construct(ctx, tt.factory, in)
			if out.Kind != tt.want {
				t.Errorf("Construct kind = %d, want %d (err: %v)", out.Kind, tt.want, out.Err)
			}
			if tt.want == OutcomeInstance && out.Adapter == nil {
				t.Error("success outcome carries no adapter")
			}
			if tt.want != OutcomeInstance && out.Err == nil {
				t.Error("failure outcome carries no error")
			}
		})
	}
}

func TestConstruct_ContainsPanic(t *testing.T) {
	factory := func(_ context.Context, _ adapter.ConstructInput) (adapter.Adapter, error) {
		panic("uninitialized state")
	}

	out := Construct(context.Background(), factory, adapter.ConstructInput{})
	if out.Kind != OutcomeInternal {
		t.Fatalf("panic should be an internal outcome, got %d", out.Kind)
	}

	var internal *InternalError
	if !errors.As(out.Err, &internal) {
		t.Fatalf("error type %T, want *InternalError", out.Err)
	}
	if internal.Stack == "" {
		t.Error("panic outcome should capture a stack")
	}
}

func TestConstruct_ValidationMessageSurvivesVerbatim(t *testing.T) {
	factory := func(_ context.Context, _ adapter.ConstructInput) (adapter.Adapter, error) {
		return nil, adapter.Validationf("unsupported extension %q", ".doc")
	}

	out := Construct(context.Background(), factory, adapter.ConstructInput{})
	if out.Err.Error() != `unsupported extension ".doc"` {
		t.Errorf("validation message altered: %q", out.Err)
	}
}
