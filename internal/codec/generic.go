package codec

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"spyglass/internal/result"
)

// Generic renders records by capability: payloads that know their own text
// shape, table shape, or grep shape use it; everything else degrades to
// json or the structured dump. Most schemes need nothing more specific.
type Generic struct{}

// NewGeneric creates a structure-only renderer.
func NewGeneric() *Generic {
	return &Generic{}
}

// Structure renders a full-structure record.
func (g *Generic) Structure(w io.Writer, rec *result.Record, format Format) error {
	return renderRecord(w, rec, format)
}

// Error writes user-facing error text.
func (g *Generic) Error(w io.Writer, err error) {
	WriteError(w, err)
}

// Elements is a Generic that also renders single elements; pairing a
// scheme with it marks the scheme as element-based.
type Elements struct {
	Generic
}

// NewElements creates an element-capable renderer.
func NewElements() *Elements {
	return &Elements{}
}

// Element renders a single-element record. A nil record is the defined
// not-found result.
func (e *Elements) Element(w io.Writer, rec *result.Record, format Format) error {
	if rec == nil {
		_, err := fmt.Fprintln(w, "no such element")
		return err
	}
	return renderRecord(w, rec, format)
}

// renderRecord multiplexes one record across the closed format set.
// Unsupported format/payload combinations fall back to json.
func renderRecord(w io.Writer, rec *result.Record, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, rec)
	case FormatCSV:
		if tab, ok := rec.Payload.(Tabular); ok {
			return writeCSV(w, tab)
		}
		return WriteJSON(w, rec)
	case FormatGrep:
		if lister, ok := rec.Payload.(GrepLister); ok {
			return writeGrep(w, lister.GrepItems())
		}
		return WriteJSON(w, rec)
	case FormatText:
		if tf, ok := rec.Payload.(TextFormatter); ok {
			return tf.FormatText(w)
		}
		if tab, ok := rec.Payload.(Tabular); ok {
			return WriteTable(w, tab.Columns(), tab.Rows())
		}
		return writeDump(w, rec)
	default:
		return WriteJSON(w, rec)
	}
}

// WriteTable renders rows and columns as an aligned text table.
func WriteTable(w io.Writer, cols []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append table row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, tab Tabular) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tab.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range tab.Rows() {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeGrep(w io.Writer, items []GrepItem) error {
	for _, item := range items {
		if _, err := fmt.Fprintf(w, "%s:%d:%s\n", item.Path, item.Line, item.Name); err != nil {
			return fmt.Errorf("write grep line: %w", err)
		}
	}
	return nil
}
