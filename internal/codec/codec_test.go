package codec

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"spyglass/internal/adapter"
	"spyglass/internal/result"
)

// tablePayload exercises the Tabular and GrepLister capabilities.
type tablePayload struct {
	Names []string `json:"names"`
}

func (p tablePayload) Columns() []string { return []string{"NAME"} }

func (p tablePayload) Rows() [][]string {
	rows := make([][]string, 0, len(p.Names))
	for _, n := range p.Names {
		rows = append(rows, []string{n})
	}
	return rows
}

func (p tablePayload) GrepItems() []GrepItem {
	items := make([]GrepItem, 0, len(p.Names))
	for i, n := range p.Names {
		items = append(items, GrepItem{Path: "/src", Line: i + 1, Name: n})
	}
	return items
}

// textPayload exercises the TextFormatter capability.
type textPayload struct {
	Line string `json:"line"`
}

func (p textPayload) FormatText(w io.Writer) error {
	_, err := io.WriteString(w, p.Line+"\n")
	return err
}

func TestParseFormat(t *testing.T) {
	for _, name := range Formats() {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("ParseFormat(%q) rejected a supported format: %v", name, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestGeneric_Structure(t *testing.T) {
	renderer := NewGeneric()

	t.Run("json is verbatim and idempotent", func(t *testing.T) {
		rec := result.New("table_kind", "src", tablePayload{Names: []string{"a", "b"}})

		var first, second bytes.Buffer
		if err := renderer.Structure(&first, rec, FormatJSON); err != nil {
			t.Fatalf("render: %v", err)
		}
		if err := renderer.Structure(&second, rec, FormatJSON); err != nil {
			t.Fatalf("render: %v", err)
		}
		if !bytes.Equal(first.Bytes(), second.Bytes()) {
			t.Error("json output must be byte-identical across renders")
		}
		if !strings.Contains(first.String(), `"table_kind"`) {
			t.Errorf("json output %q missing discriminant", first.String())
		}
	})

	t.Run("grep emits path:line:name", func(t *testing.T) {
		rec := result.New("table_kind", "src", tablePayload{Names: []string{"alpha", "beta"}})

		var out bytes.Buffer
		if err := renderer.Structure(&out, rec, FormatGrep); err != nil {
			t.Fatalf("render: %v", err)
		}
		want := "/src:1:alpha\n/src:2:beta\n"
		if out.String() != want {
			t.Errorf("grep output = %q, want %q", out.String(), want)
		}
	})

	t.Run("csv writes header and rows", func(t *testing.T) {
		rec := result.New("table_kind", "src", tablePayload{Names: []string{"x"}})

		var out bytes.Buffer
		if err := renderer.Structure(&out, rec, FormatCSV); err != nil {
			t.Fatalf("render: %v", err)
		}
		if out.String() != "NAME\nx\n" {
			t.Errorf("csv output = %q", out.String())
		}
	})

	t.Run("text uses the payload's own formatter", func(t *testing.T) {
		rec := result.New("text_kind", "src", textPayload{Line: "hello"})

		var out bytes.Buffer
		if err := renderer.Structure(&out, rec, FormatText); err != nil {
			t.Fatalf("render: %v", err)
		}
		if out.String() != "hello\n" {
			t.Errorf("text output = %q", out.String())
		}
	})

	t.Run("unrecognized payload dumps instead of crashing", func(t *testing.T) {
		rec := result.New("mystery_kind", "src", map[string]any{"weird": true})

		var out bytes.Buffer
		if err := renderer.Structure(&out, rec, FormatText); err != nil {
			t.Fatalf("render: %v", err)
		}
		if !strings.Contains(out.String(), "mystery_kind") {
			t.Errorf("dump %q should include the type discriminant", out.String())
		}
	})

	t.Run("unsupported format for payload falls back to json", func(t *testing.T) {
		rec := result.New("text_kind", "src", textPayload{Line: "hello"})

		var out bytes.Buffer
		if err := renderer.Structure(&out, rec, FormatGrep); err != nil {
			t.Fatalf("render: %v", err)
		}
		if !strings.Contains(out.String(), `"text_kind"`) {
			t.Errorf("fallback output = %q, want json", out.String())
		}
	})
}

func TestElements_Element(t *testing.T) {
	renderer := NewElements()

	t.Run("nil record renders the not-found notice", func(t *testing.T) {
		var out bytes.Buffer
		if err := renderer.Element(&out, nil, FormatText); err != nil {
			t.Fatalf("render: %v", err)
		}
		if !strings.Contains(out.String(), "no such element") {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("found record renders like a structure", func(t *testing.T) {
		var out bytes.Buffer
		rec := result.New("text_kind", "src", textPayload{Line: "value"})
		if err := renderer.Element(&out, rec, FormatText); err != nil {
			t.Fatalf("render: %v", err)
		}
		if out.String() != "value\n" {
			t.Errorf("output = %q", out.String())
		}
	})
}

func TestWriteError(t *testing.T) {
	t.Run("plain errors", func(t *testing.T) {
		var out bytes.Buffer
		WriteError(&out, errors.New("boom"))
		if !strings.Contains(out.String(), "boom") {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("missing dependency appends install guidance", func(t *testing.T) {
		var out bytes.Buffer
		WriteError(&out, &adapter.MissingDependencyError{Name: "nmap", Install: "apt install nmap"})
		if !strings.Contains(out.String(), "apt install nmap") {
			t.Errorf("output = %q, want install guidance", out.String())
		}
	})
}
