// Package result defines the tagged, ephemeral records adapters hand to
// renderers. A record is created fresh per invocation and consumed
// immediately; nothing here is cached or persisted.
package result

import (
	"encoding/json"
	"fmt"
)

// Record carries one extraction result. Type is the discriminant renderers
// dispatch on (e.g. "sqlite_table", "xlsx_sheet", "git_ref"); Source
// identifies the origin (file path, host, environment). Payload is a typed
// struct for modeled kinds, or a map[string]any for shapes not worth
// modeling individually.
type Record struct {
	Type    string
	Source  string
	Payload any
}

// New creates a record of the given kind.
func New(kind, source string, payload any) *Record {
	return &Record{Type: kind, Source: source, Payload: payload}
}

// MarshalJSON serializes the record verbatim: the payload's fields are
// inlined next to "type" and "source". Keys are emitted sorted, so
// rendering the same record twice produces byte-identical output.
func (r *Record) MarshalJSON() ([]byte, error) {
	flat := map[string]any{
		"type":   r.Type,
		"source": r.Source,
	}
	if r.Payload != nil {
		raw, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			// Non-object payload keeps its own key.
			flat["payload"] = json.RawMessage(raw)
		} else {
			for k, v := range fields {
				if k == "type" || k == "source" {
					continue
				}
				flat[k] = v
			}
		}
	}
	return json.Marshal(flat)
}

// Fields returns the record's payload as a flat map, for renderers that
// fall back to a raw structured dump.
func (r *Record) Fields() map[string]any {
	flat := map[string]any{
		"type":   r.Type,
		"source": r.Source,
	}
	if r.Payload == nil {
		return flat
	}
	raw, err := json.Marshal(r.Payload)
	if err != nil {
		flat["payload"] = fmt.Sprintf("%v", r.Payload)
		return flat
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		flat["payload"] = string(raw)
		return flat
	}
	for k, v := range fields {
		flat[k] = v
	}
	return flat
}
