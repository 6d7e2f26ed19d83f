// Package adapter defines the contract between the dispatch core and the
// per-scheme backends.
//
// An adapter is constructed once per URI by its scheme's Factory, used for
// a single extraction, and discarded. Optional capabilities (element
// lookup, metadata, closing) are separate interfaces that a backend
// declares by satisfying them.
package adapter

import (
	"context"

	"spyglass/internal/result"
	"spyglass/internal/uri"
)

// ConstructInput carries everything a factory may need to build an
// adapter: the parsed URI, the raw resource remainder after "scheme://",
// the query map, and the full original URI string.
type ConstructInput struct {
	URI      uri.ParsedURI
	Resource string
	Query    map[string]string
	FullURI  string
}

// Get returns a query value, or def when the key is absent.
func (in ConstructInput) Get(key, def string) string {
	if v, ok := in.Query[key]; ok {
		return v
	}
	return def
}

// Factory builds an adapter for one dispatch. It reports failures through
// the error taxonomy in errors.go: ErrResourceForm when the resource form
// does not apply to this backend, *ValidationError when the form applies
// but the value is invalid, *MissingDependencyError when an external
// requirement is absent. Anything else is treated as a backend defect.
type Factory func(ctx context.Context, in ConstructInput) (Adapter, error)

// Adapter is the minimal contract every backend must fulfil.
type Adapter interface {
	// Structure extracts a full structural summary of the resource.
	Structure(ctx context.Context) (*result.Record, error)
}

// ElementLookup is the optional element-addressing capability. Element
// returns (nil, nil) for a simply-missing name; an error from Element
// always means the backend misbehaved, never "not found".
type ElementLookup interface {
	Adapter

	Element(ctx context.Context, name string) (*result.Record, error)
}

// MetadataProvider is the optional coarse-description capability (sizes,
// counts). It is surfaced on demand only and never drives dispatch.
type MetadataProvider interface {
	Adapter

	Metadata(ctx context.Context) (map[string]any, error)
}

// Closer is implemented by backends holding releasable resources (file
// handles, database connections). Dispatch closes the adapter on every
// exit path.
type Closer interface {
	Close() error
}
