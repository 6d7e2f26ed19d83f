package backend

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"spyglass/internal/adapter"
	"spyglass/internal/codec"
	"spyglass/internal/result"
)

// envAdapter browses the process environment. Constructing it can never
// fail: any resource form is just an element name for lookup.
type envAdapter struct{}

func newEnv(_ context.Context, _ adapter.ConstructInput) (adapter.Adapter, error) {
	return &envAdapter{}, nil
}

// EnvVar is one environment variable.
type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FormatText renders the variable in NAME=value shape.
func (v EnvVar) FormatText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s=%s\n", v.Name, v.Value)
	return err
}

// EnvList is the full environment, sorted by name.
type EnvList struct {
	Count int      `json:"count"`
	Vars  []EnvVar `json:"vars"`
}

func (l EnvList) Columns() []string { return []string{"NAME", "VALUE"} }

func (l EnvList) Rows() [][]string {
	rows := make([][]string, 0, len(l.Vars))
	for _, v := range l.Vars {
		rows = append(rows, []string{v.Name, v.Value})
	}
	return rows
}

func (l EnvList) GrepItems() []codec.GrepItem {
	items := make([]codec.GrepItem, 0, len(l.Vars))
	for i, v := range l.Vars {
		items = append(items, codec.GrepItem{Path: "env", Line: i + 1, Name: v.Name})
	}
	return items
}

func (a *envAdapter) Structure(_ context.Context) (*result.Record, error) {
	environ := os.Environ()
	vars := make([]EnvVar, 0, len(environ))
	for _, kv := range environ {
		name, value, _ := strings.Cut(kv, "=")
		vars = append(vars, EnvVar{Name: name, Value: value})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })

	return result.New("env_list", "environment", EnvList{Count: len(vars), Vars: vars}), nil
}

// Element looks one variable up. An unset variable is a defined absent
// result, never an error.
func (a *envAdapter) Element(_ context.Context, name string) (*result.Record, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return nil, nil
	}
	return result.New("env_var", "environment", EnvVar{Name: name, Value: value}), nil
}

func (a *envAdapter) Metadata(_ context.Context) (map[string]any, error) {
	return map[string]any{"variables": len(os.Environ())}, nil
}
