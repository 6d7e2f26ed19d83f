// Package registry maps URI schemes to their adapter factories and
// renderers.
//
// A Registry is populated once, from an ordered entry list at startup, and
// is read-only afterwards. Duplicate registration is a programming error
// surfaced at construction; there is no mutation or reset mid-run — test
// isolation comes from constructing fresh registries.
package registry

import (
	"fmt"
	"sort"

	"spyglass/internal/adapter"
	"spyglass/internal/codec"
)

// Entry binds one scheme to its adapter factory and renderer. Schema and
// Help are optional introspection producers used by the schemes listing.
type Entry struct {
	Scheme   string
	Factory  adapter.Factory
	Renderer codec.Renderer
	Schema   func() map[string]string
	Help     func() string
}

// Registry is the process-wide scheme table.
type Registry struct {
	entries map[string]Entry
}

// New builds a registry from an ordered entry list. It fails on an empty
// scheme, a missing factory or renderer, or a duplicate scheme — all
// programming errors, not recoverable runtime conditions.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if e.Scheme == "" {
			return nil, fmt.Errorf("registry: entry with empty scheme")
		}
		if e.Factory == nil {
			return nil, fmt.Errorf("registry: scheme %q has no adapter factory", e.Scheme)
		}
		if e.Renderer == nil {
			return nil, fmt.Errorf("registry: scheme %q has no renderer", e.Scheme)
		}
		if _, exists := r.entries[e.Scheme]; exists {
			return nil, fmt.Errorf("registry: scheme %q already registered", e.Scheme)
		}
		r.entries[e.Scheme] = e
	}
	return r, nil
}

// Lookup returns the full entry for a scheme.
func (r *Registry) Lookup(scheme string) (Entry, bool) {
	e, ok := r.entries[scheme]
	return e, ok
}

// LookupAdapter returns the adapter factory for a scheme, if registered.
func (r *Registry) LookupAdapter(scheme string) (adapter.Factory, bool) {
	e, ok := r.entries[scheme]
	if !ok {
		return nil, false
	}
	return e.Factory, true
}

// LookupRenderer returns the renderer for a scheme, if registered.
func (r *Registry) LookupRenderer(scheme string) (codec.Renderer, bool) {
	e, ok := r.entries[scheme]
	if !ok {
		return nil, false
	}
	return e.Renderer, true
}

// Schemes returns every registered scheme, sorted.
func (r *Registry) Schemes() []string {
	schemes := make([]string, 0, len(r.entries))
	for s := range r.entries {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

// Help returns the help line for a scheme, or "" when none is declared.
func (r *Registry) Help(scheme string) string {
	e, ok := r.entries[scheme]
	if !ok || e.Help == nil {
		return ""
	}
	return e.Help()
}

// Schema returns the query-parameter schema for a scheme, or nil.
func (r *Registry) Schema(scheme string) map[string]string {
	e, ok := r.entries[scheme]
	if !ok || e.Schema == nil {
		return nil
	}
	return e.Schema()
}
