// Package codec renders extraction results in the supported output
// formats.
//
// Every scheme pairs with a Renderer. For json, a renderer serializes the
// record verbatim; for text, formatting dispatches on the record's payload
// with a raw structured dump as the fallback for unrecognized shapes;
// grep and csv are capability-driven and fall back to json where a payload
// does not support them.
package codec

import (
	"fmt"
	"io"

	"spyglass/internal/result"
)

// Format identifies an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatGrep Format = "grep"
	FormatCSV  Format = "csv"
)

// Formats lists every supported format name.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatGrep), string(FormatCSV)}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatGrep, FormatCSV:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown format %q (supported: text, json, grep, csv)", s)
}

// Renderer turns result records into user-facing output.
type Renderer interface {
	// Structure renders a full-structure record in the given format.
	Structure(w io.Writer, rec *result.Record, format Format) error

	// Error formats user-facing error text onto the error stream.
	Error(w io.Writer, err error)
}

// ElementRenderer is the optional element-rendering capability. A scheme
// whose renderer satisfies it is element-based: a bare scheme://NAME URI
// is interpreted as "look up element NAME".
type ElementRenderer interface {
	Renderer

	// Element renders a single-element record. A nil record means the
	// element was not found, which is a defined result, not a failure.
	Element(w io.Writer, rec *result.Record, format Format) error
}

// Tabular is satisfied by payloads with a natural rows-and-columns shape;
// it drives the csv format and the table portion of text output.
type Tabular interface {
	Columns() []string
	Rows() [][]string
}

// GrepItem is one line of grep-format output.
type GrepItem struct {
	Path string
	Line int
	Name string
}

// GrepLister is satisfied by payloads that can emit one line per matched
// sub-item in path:line:name shape.
type GrepLister interface {
	GrepItems() []GrepItem
}

// TextFormatter is satisfied by payloads carrying their own type-specific
// text formatting. Payloads without it get the raw structured dump.
type TextFormatter interface {
	FormatText(w io.Writer) error
}
