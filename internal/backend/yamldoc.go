package backend

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"spyglass/internal/adapter"
	"spyglass/internal/codec"
	"spyglass/internal/result"
)

// yamlDocAdapter summarizes a YAML document's top-level structure.
type yamlDocAdapter struct {
	path string
	doc  any
}

func newYAMLDoc(_ context.Context, in adapter.ConstructInput) (adapter.Adapter, error) {
	path := in.Resource
	if path == "" {
		return nil, adapter.Validationf("yaml requires an explicit file path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, adapter.Validationf("read %q: %v", path, err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, adapter.Validationf("%q is not valid YAML: %v", path, err)
	}
	return &yamlDocAdapter{path: path, doc: doc}, nil
}

// YAMLEntry describes one top-level key or item.
type YAMLEntry struct {
	Key   string `json:"key"`
	Kind  string `json:"kind"`
	Items int    `json:"items,omitempty"`
}

// YAMLDocument summarizes a document's top level.
type YAMLDocument struct {
	Path    string      `json:"path"`
	Kind    string      `json:"kind"`
	Entries []YAMLEntry `json:"entries,omitempty"`
}

func (d YAMLDocument) Columns() []string { return []string{"KEY", "KIND", "ITEMS"} }

func (d YAMLDocument) Rows() [][]string {
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

func (d YAMLDocument) GrepItems() []codec.GrepItem {
	items := make([]codec.GrepItem, 0, len(d.Entries))
	for i, e := range d.Entries {
		items = append(items, codec.GrepItem{Path: d.Path, Line: i + 1, Name: e.Key})
	}
	return items
}

func (a *yamlDocAdapter) Structure(_ context.Context) (*result.Record, error) {
	doc := YAMLDocument{Path: a.path, Kind: yamlKind(a.doc)}

	switch v := a.doc.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			doc.Entries = append(doc.Entries, yamlEntry(k, v[k]))
		}
	case []any:
		for i, item := range v {
			doc.Entries = append(doc.Entries, yamlEntry(fmt.Sprintf("[%d]", i), item))
		}
	}

	return result.New("yaml_document", a.path, doc), nil
}

func yamlEntry(key string, v any) YAMLEntry {
	entry := YAMLEntry{Key: key, Kind: yamlKind(v)}
	switch x := v.(type) {
	case map[string]any:
		entry.Items = len(x)
	case []any:
		entry.Items = len(x)
	}
	return entry
}

func yamlKind(v any) string {
	switch v.(type) {
	case map[string]any:
		return "mapping"
	case []any:
		return "sequence"
	case string:
		return "string"
	case int, int64, float64:
		return "number"
	case bool:
		return "bool"
	case nil:
		return "null"
	default:
		return "scalar"
	}
}
