package backend

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"spyglass/internal/adapter"
	"spyglass/internal/codec"
	"spyglass/internal/config"
	"spyglass/internal/result"
)

// sqliteAdapter browses an SQLite database file: the schema by default,
// one table's columns and rows when ?table= is given. The connection
// lives for a single dispatch and is closed on every exit path.
type sqliteAdapter struct {
	db    *sql.DB
	path  string
	table string
	limit int
}

func sqliteFactory(cfg *config.Config) adapter.Factory {
	return func(ctx context.Context, in adapter.ConstructInput) (adapter.Adapter, error) {
		path := in.Resource
		if path == "" {
			return nil, adapter.Validationf("sqlite requires an explicit database path")
		}
		if _, err := os.Stat(path); err != nil {
			return nil, adapter.Validationf("sqlite database %q: %v", path, err)
		}

		limit := cfg.RowLimit
		if raw, ok := in.Query["limit"]; ok {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return nil, adapter.Validationf("invalid limit %q", raw)
			}
			limit = n
		}

		db, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, adapter.Validationf("open sqlite database %q: %v", path, err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, adapter.Validationf("open sqlite database %q: %v", path, err)
		}

		return &sqliteAdapter{db: db, path: path, table: in.Query["table"], limit: limit}, nil
	}
}

func (a *sqliteAdapter) Close() error { return a.db.Close() }

// TableInfo summarizes one table in the schema listing.
type TableInfo struct {
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
}

// SQLiteSchema is the whole-database summary.
type SQLiteSchema struct {
	Path   string      `json:"path"`
	Tables []TableInfo `json:"tables"`
}

func (s SQLiteSchema) Columns() []string { return []string{"TABLE", "ROWS"} }

func (s SQLiteSchema) Rows() [][]string {
	rows := make([][]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		rows = append(rows, []string{t.Name, strconv.FormatInt(t.RowCount, 10)})
	}
	return rows
}

func (s SQLiteSchema) GrepItems() []codec.GrepItem {
	items := make([]codec.GrepItem, 0, len(s.Tables))
	for i, t := range s.Tables {
		items = append(items, codec.GrepItem{Path: s.Path, Line: i + 1, Name: t.Name})
	}
	return items
}

// SQLiteTable is one table's columns and a bounded row sample.
type SQLiteTable struct {
	Path      string     `json:"path"`
	Table     string     `json:"table"`
	ColNames  []string   `json:"columns"`
	RowSample [][]string `json:"rows"`
}

func (t SQLiteTable) Columns() []string { return t.ColNames }
func (t SQLiteTable) Rows() [][]string  { return t.RowSample }

func (a *sqliteAdapter) Structure(ctx context.Context) (*result.Record, error) {
	if a.table != "" {
		return a.dumpTable(ctx, a.table)
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	schema := SQLiteSchema{Path: a.path}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		schema.Tables = append(schema.Tables, TableInfo{Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	for i := range schema.Tables {
		var count int64
		q := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdent(schema.Tables[i].Name))
		if err := a.db.QueryRowContext(ctx, q).Scan(&count); err != nil {
			return nil, fmt.Errorf("count rows of %s: %w", schema.Tables[i].Name, err)
		}
		schema.Tables[i].RowCount = count
	}

	return result.New("sqlite_schema", a.path, schema), nil
}

func (a *sqliteAdapter) dumpTable(ctx context.Context, table string) (*result.Record, error) {
	q := fmt.Sprintf(`SELECT * FROM %s LIMIT %d`, quoteIdent(table), a.limit)
	rows, err := a.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("read table %q: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns of %q: %w", table, err)
	}

	out := SQLiteTable{Path: a.path, Table: table, ColNames: cols}
	values := make([]any, len(cols))
	scan := make([]any, len(cols))
	for i := range values {
		scan[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("scan row of %q: %w", table, err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = formatSQLValue(v)
		}
		out.RowSample = append(out.RowSample, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read table %q: %w", table, err)
	}

	return result.New("sqlite_table", a.path, out), nil
}

func (a *sqliteAdapter) Metadata(ctx context.Context) (map[string]any, error) {
	info, err := os.Stat(a.path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", a.path, err)
	}
	var tables int
	if err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'`).Scan(&tables); err != nil {
		return nil, fmt.Errorf("count tables: %w", err)
	}
	return map[string]any{"size_bytes": info.Size(), "tables": tables}, nil
}

// quoteIdent double-quotes an identifier, escaping embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func formatSQLValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
