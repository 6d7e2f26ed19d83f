package backend

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"spyglass/internal/adapter"
	"spyglass/internal/codec"
	"spyglass/internal/result"
)

// jsonDocAdapter browses a JSON document: top-level structure by default,
// a single value addressed by a gjson path when ?path= is given.
type jsonDocAdapter struct {
	path  string
	query string
	doc   gjson.Result
}

func newJSONDoc(_ context.Context, in adapter.ConstructInput) (adapter.Adapter, error) {
	path := in.Resource
	if path == "" {
		return nil, adapter.Validationf("json requires an explicit file path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, adapter.Validationf("read %q: %v", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, adapter.Validationf("%q is not valid JSON", path)
	}
	return &jsonDocAdapter{path: path, query: in.Query["path"], doc: gjson.ParseBytes(data)}, nil
}

// JSONEntry describes one top-level key.
type JSONEntry struct {
	Key   string `json:"key"`
	Kind  string `json:"kind"`
	Items int    `json:"items,omitempty"`
}

// JSONDocument summarizes a document's top level.
type JSONDocument struct {
	Path    string      `json:"path"`
	Kind    string      `json:"kind"`
	Entries []JSONEntry `json:"entries,omitempty"`
}

func (d JSONDocument) Columns() []string { return []string{"KEY", "KIND", "ITEMS"} }

func (d JSONDocument) Rows() [][]string {
	rows := make([][]string, 0, len(d.Entries))
	for _, e := range d.Entries {
		items := ""
		if e.Items > 0 {
			items = fmt.Sprintf("%d", e.Items)
		}
		rows = append(rows, []string{e.Key, e.Kind, items})
	}
	return rows
}

func (d JSONDocument) GrepItems() []codec.GrepItem {
	items := make([]codec.GrepItem, 0, len(d.Entries))
	for i, e := range d.Entries {
		items = append(items, codec.GrepItem{Path: d.Path, Line: i + 1, Name: e.Key})
	}
	return items
}

// JSONValue is one value pulled out by path query.
type JSONValue struct {
	Path  string `json:"path"`
	Query string `json:"query"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func (v JSONValue) FormatText(w io.Writer) error {
	_, err := fmt.Fprintln(w, v.Value)
	return err
}

func (a *jsonDocAdapter) Structure(_ context.Context) (*result.Record, error) {
	if a.query != "" {
		value := a.doc.Get(a.query)
		if !value.Exists() {
			return nil, fmt.Errorf("no value at path %q in %q", a.query, a.path)
		}
		payload := JSONValue{Path: a.path, Query: a.query, Kind: jsonKind(value), Value: value.Raw}
		return result.New("json_value", a.path, payload), nil
	}

	doc := JSONDocument{Path: a.path, Kind: jsonKind(a.doc)}
	a.doc.ForEach(func(key, value gjson.Result) bool {
		entry := JSONEntry{Key: key.String(), Kind: jsonKind(value)}
		if value.IsArray() {
			entry.Items = len(value.Array())
		} else if value.IsObject() {
			entry.Items = len(value.Map())
		}
		doc.Entries = append(doc.Entries, entry)
		return true
	})
	return result.New("json_document", a.path, doc), nil
}

func (a *jsonDocAdapter) Metadata(_ context.Context) (map[string]any, error) {
	info, err := os.Stat(a.path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", a.path, err)
	}
	return map[string]any{"size_bytes": info.Size(), "kind": jsonKind(a.doc)}, nil
}

func jsonKind(v gjson.Result) string {
	switch {
	case v.IsArray():
		return "array"
	case v.IsObject():
		return "object"
	case v.Type == gjson.String:
		return "string"
	case v.Type == gjson.Number:
		return "number"
	case v.Type == gjson.True, v.Type == gjson.False:
		return "bool"
	case v.Type == gjson.Null:
		return "null"
	default:
		return "unknown"
	}
}
