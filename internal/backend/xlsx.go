package backend

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"spyglass/internal/adapter"
	"spyglass/internal/codec"
	"spyglass/internal/config"
	"spyglass/internal/result"
)

// xlsxAdapter browses a spreadsheet workbook: the sheet list by default,
// one sheet's rows when ?sheet= (name or zero-based index) is given.
type xlsxAdapter struct {
	file  *excelize.File
	path  string
	sheet string
	limit int
}

func xlsxFactory(cfg *config.Config) adapter.Factory {
	return func(_ context.Context, in adapter.ConstructInput) (adapter.Adapter, error) {
		path := in.Resource
		if path == "" {
			return nil, adapter.Validationf("xlsx requires an explicit file path")
		}
		if _, err := os.Stat(path); err != nil {
			return nil, adapter.Validationf("xlsx file %q: %v", path, err)
		}

		limit := cfg.RowLimit
		if raw, ok := in.Query["limit"]; ok {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return nil, adapter.Validationf("invalid limit %q", raw)
			}
			limit = n
		}

		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, adapter.Validationf("open workbook %q: %v", path, err)
		}

		return &xlsxAdapter{file: f, path: path, sheet: in.Query["sheet"], limit: limit}, nil
	}
}

func (a *xlsxAdapter) Close() error { return a.file.Close() }

// SheetInfo summarizes one sheet in the workbook listing.
type SheetInfo struct {
	Name  string `json:"name"`
	RowsN int    `json:"rows"`
	ColsN int    `json:"cols"`
}

// Workbook is the whole-workbook summary.
type Workbook struct {
	Path   string      `json:"path"`
	Sheets []SheetInfo `json:"sheets"`
}

func (b Workbook) Columns() []string { return []string{"SHEET", "ROWS", "COLS"} }

func (b Workbook) Rows() [][]string {
	rows := make([][]string, 0, len(b.Sheets))
	for _, s := range b.Sheets {
		rows = append(rows, []string{s.Name, strconv.Itoa(s.RowsN), strconv.Itoa(s.ColsN)})
	}
	return rows
}

func (b Workbook) GrepItems() []codec.GrepItem {
	items := make([]codec.GrepItem, 0, len(b.Sheets))
	for i, s := range b.Sheets {
		items = append(items, codec.GrepItem{Path: b.Path, Line: i + 1, Name: s.Name})
	}
	return items
}

// Sheet is one sheet's rows, bounded by the limit.
type Sheet struct {
	Path      string     `json:"path"`
	SheetName string     `json:"sheet_name"`
	RowData   [][]string `json:"rows"`
}

func (s Sheet) Columns() []string {
	if len(s.RowData) == 0 {
		return nil
	}
	return s.RowData[0]
}

func (s Sheet) Rows() [][]string {
	if len(s.RowData) < 2 {
		return nil
	}
	return s.RowData[1:]
}

func (a *xlsxAdapter) Structure(_ context.Context) (*result.Record, error) {
	if a.sheet != "" {
		return a.dumpSheet(a.sheet)
	}

	book := Workbook{Path: a.path}
	for _, name := range a.file.GetSheetList() {
		rows, err := a.file.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		info := SheetInfo{Name: name, RowsN: len(rows)}
		for _, row := range rows {
			if len(row) > info.ColsN {
				info.ColsN = len(row)
			}
		}
		book.Sheets = append(book.Sheets, info)
	}
	return result.New("xlsx_workbook", a.path, book), nil
}

// dumpSheet extracts one sheet addressed by name or zero-based index.
func (a *xlsxAdapter) dumpSheet(ref string) (*result.Record, error) {
	sheets := a.file.GetSheetList()

	name := ref
	if idx, err := strconv.Atoi(ref); err == nil {
		if idx < 0 || idx >= len(sheets) {
			return nil, fmt.Errorf("sheet index %d out of range (workbook has %d sheets)", idx, len(sheets))
		}
		name = sheets[idx]
	} else if !containsSheet(sheets, name) {
		return nil, fmt.Errorf("no sheet %q in %q", name, a.path)
	}

	rows, err := a.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	if len(rows) > a.limit {
		rows = rows[:a.limit]
	}
	return result.New("xlsx_sheet", a.path, Sheet{Path: a.path, SheetName: name, RowData: rows}), nil
}

func (a *xlsxAdapter) Metadata(_ context.Context) (map[string]any, error) {
	info, err := os.Stat(a.path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", a.path, err)
	}
	return map[string]any{
		"size_bytes": info.Size(),
		"sheets":     len(a.file.GetSheetList()),
	}, nil
}

func containsSheet(sheets []string, name string) bool {
	for _, s := range sheets {
		if s == name {
			return true
		}
	}
	return false
}
