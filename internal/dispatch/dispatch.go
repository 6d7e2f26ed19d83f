// Package dispatch implements the core resolution pipeline: parse the
// URI, look the scheme up in the registry, construct the adapter, extract
// structure or a single element, and render the result.
//
// One URI is fully resolved before the next is considered; the only state
// shared across dispatches is the read-only registry.
package dispatch

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"spyglass/internal/adapter"
	"spyglass/internal/codec"
	"spyglass/internal/registry"
	"spyglass/internal/uri"
)

// Options adjust a single dispatch.
type Options struct {
	// Format selects the output format (defaults to text).
	Format codec.Format
	// Metadata also surfaces the adapter's optional metadata record.
	Metadata bool
}

// Dispatcher resolves resource URIs against a registry.
type Dispatcher struct {
	registry *registry.Registry
	logger   *zap.Logger
}

// New creates a dispatcher. A nil logger disables logging.
func New(reg *registry.Registry, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{registry: reg, logger: logger}
}

// Run resolves one URI end to end. Rendered output goes to stdout,
// user-facing error text to stderr. The returned error is non-nil for
// every reported failure, so callers can decide the exit code; an
// element that simply is not found is a defined result, not a failure.
func (d *Dispatcher) Run(ctx context.Context, rawURI string, opts Options, stdout, stderr io.Writer) error {
	if opts.Format == "" {
		opts.Format = codec.FormatText
	}

	parsed, err := uri.Parse(rawURI)
	if err != nil {
		codec.WriteError(stderr, err)
		return err
	}
	d.logger.Debug("parsed resource URI",
		zap.String("scheme", parsed.Scheme),
		zap.String("host", parsed.Host),
		zap.String("path", parsed.Path))

	entry, ok := d.registry.Lookup(parsed.Scheme)
	if !ok {
		err := &UnknownSchemeError{Scheme: parsed.Scheme, Known: d.registry.Schemes()}
		codec.WriteError(stderr, err)
		return err
	}

	in := adapter.ConstructInput{
		URI:      parsed,
		Resource: parsed.Resource(),
		Query:    parsed.Query,
		FullURI:  rawURI,
	}

	out := Construct(ctx, entry.Factory, in)
	switch out.Kind {
	case OutcomeInstance:
		// proceed
	case OutcomeMismatch:
		err := &UnsupportedResourceError{Scheme: parsed.Scheme, Resource: in.Resource}
		entry.Renderer.Error(stderr, err)
		return err
	default:
		entry.Renderer.Error(stderr, out.Err)
		return out.Err
	}

	inst := out.Adapter
	defer func() {
		if closer, ok := inst.(adapter.Closer); ok {
			if cerr := closer.Close(); cerr != nil {
				d.logger.Warn("adapter close failed", zap.String("scheme", parsed.Scheme), zap.Error(cerr))
			}
		}
	}()

	if err := d.extract(ctx, entry, inst, in, opts, stdout); err != nil {
		entry.Renderer.Error(stderr, err)
		return err
	}

	if opts.Metadata {
		if err := writeMetadata(ctx, inst, stdout); err != nil {
			entry.Renderer.Error(stderr, err)
			return err
		}
	}
	return nil
}

// extract decides between element lookup and full-structure extraction
// and renders the outcome.
//
// A scheme is element-based when its renderer satisfies ElementRenderer.
// For such schemes, an explicit ?element= wins; otherwise the raw
// resource itself is the element name, so a bare scheme://NAME reads as
// "look up element NAME".
func (d *Dispatcher) extract(ctx context.Context, entry registry.Entry, inst adapter.Adapter, in adapter.ConstructInput, opts Options, stdout io.Writer) error {
	explicit := in.Query["element"]

	if er, elementBased := entry.Renderer.(codec.ElementRenderer); elementBased && (explicit != "" || in.Resource != "") {
		name := explicit
		if name == "" {
			name = in.Resource
		}

		lookup, ok := inst.(adapter.ElementLookup)
		if !ok {
			return &InternalError{Err: fmt.Errorf(
				"scheme %q renderer supports elements but its adapter does not implement element lookup", entry.Scheme)}
		}

		rec, err := lookup.Element(ctx, name)
		if err != nil {
			// The element contract never errors for a missing name, so
			// this is adapter misbehavior, not "not found".
			return &InternalError{Err: fmt.Errorf("element lookup %q: %w", name, err)}
		}
		d.logger.Debug("element lookup",
			zap.String("scheme", entry.Scheme),
			zap.String("element", name),
			zap.Bool("found", rec != nil))
		return er.Element(stdout, rec, opts.Format)
	}

	rec, err := inst.Structure(ctx)
	if err != nil {
		return fmt.Errorf("extract structure: %w", err)
	}
	if rec == nil {
		return &InternalError{Err: fmt.Errorf("scheme %q returned no structure record", entry.Scheme)}
	}
	d.logger.Debug("structure extracted",
		zap.String("scheme", entry.Scheme),
		zap.String("type", rec.Type))
	return entry.Renderer.Structure(stdout, rec, opts.Format)
}

// writeMetadata surfaces the optional metadata operation when the adapter
// implements it.
func writeMetadata(ctx context.Context, inst adapter.Adapter, stdout io.Writer) error {
	provider, ok := inst.(adapter.MetadataProvider)
	if !ok {
		return nil
	}
	meta, err := provider.Metadata(ctx)
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	if len(meta) == 0 {
		return nil
	}
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if _, err := fmt.Fprintf(stdout, "---\n%s", data); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// compile-time check: the generic renderers satisfy the contracts.
var (
	_ codec.Renderer        = (*codec.Generic)(nil)
	_ codec.ElementRenderer = (*codec.Elements)(nil)
)
