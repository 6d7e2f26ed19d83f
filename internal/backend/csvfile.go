package backend

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"spyglass/internal/adapter"
	"spyglass/internal/codec"
	"spyglass/internal/config"
	"spyglass/internal/result"
)

// csvFileAdapter browses a CSV file: header, a bounded row sample, and
// the total row count.
type csvFileAdapter struct {
	path  string
	limit int
}

func csvFactory(cfg *config.Config) adapter.Factory {
	return func(_ context.Context, in adapter.ConstructInput) (adapter.Adapter, error) {
		path := in.Resource
		if path == "" {
			return nil, adapter.Validationf("csv requires an explicit file path")
		}
		if _, err := os.Stat(path); err != nil {
			return nil, adapter.Validationf("csv file %q: %v", path, err)
		}
		limit := cfg.RowLimit
		if raw, ok := in.Query["limit"]; ok {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return nil, adapter.Validationf("invalid limit %q", raw)
			}
			limit = n
		}
		return &csvFileAdapter{path: path, limit: limit}, nil
	}
}

// CSVTable is a CSV file's header and a bounded sample of its rows.
type CSVTable struct {
	Path      string     `json:"path"`
	Header    []string   `json:"header"`
	RowSample [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

func (t CSVTable) Columns() []string { return t.Header }
func (t CSVTable) Rows() [][]string  { return t.RowSample }

func (t CSVTable) GrepItems() []codec.GrepItem {
	items := make([]codec.GrepItem, 0, len(t.Header))
	for i, col := range t.Header {
		items = append(items, codec.GrepItem{Path: t.Path, Line: i + 1, Name: col})
	}
	return items
}

func (a *csvFileAdapter) Structure(_ context.Context) (*result.Record, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", a.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%q is empty", a.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %q: %w", a.path, err)
	}

	table := CSVTable{Path: a.path, Header: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", a.path, err)
		}
		table.TotalRows++
		if len(table.RowSample) < a.limit {
			table.RowSample = append(table.RowSample, row)
		}
	}

	return result.New("csv_table", a.path, table), nil
}

func (a *csvFileAdapter) Metadata(_ context.Context) (map[string]any, error) {
	info, err := os.Stat(a.path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", a.path, err)
	}
	return map[string]any{"size_bytes": info.Size()}, nil
}
