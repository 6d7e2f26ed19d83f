package result

import (
	"bytes"
	"encoding/json"
	"testing"
)

type samplePayload struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags,omitempty"`
}

func TestRecord_MarshalJSON(t *testing.T) {
	t.Run("payload fields are inlined next to type and source", func(t *testing.T) {
		rec := New("sample_kind", "/tmp/sample", samplePayload{Name: "a", Count: 2, Tags: []string{"x"}})

		data, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var flat map[string]any
		if err := json.Unmarshal(data, &flat); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if flat["type"] != "sample_kind" {
			t.Errorf("type = %v", flat["type"])
		}
		if flat["source"] != "/tmp/sample" {
			t.Errorf("source = %v", flat["source"])
		}
		if flat["name"] != "a" {
			t.Errorf("payload field name = %v, want inlined", flat["name"])
		}
		if _, nested := flat["payload"]; nested {
			t.Error("object payload should be inlined, not nested under payload")
		}
	})

	t.Run("non-object payload keeps its own key", func(t *testing.T) {
		rec := New("scalar_kind", "src", 42)

		data, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var flat map[string]any
		if err := json.Unmarshal(data, &flat); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if flat["payload"] != float64(42) {
			t.Errorf("payload = %v, want 42", flat["payload"])
		}
	})

	t.Run("rendering twice is byte-identical", func(t *testing.T) {
		rec := New("sample_kind", "src", samplePayload{Name: "b", Count: 7, Tags: []string{"p", "q"}})

		first, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		second, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(first, second) {
			t.Errorf("output differs between renders:\n%s\n%s", first, second)
		}
	})

	t.Run("nil payload renders type and source only", func(t *testing.T) {
		data, err := json.Marshal(New("empty_kind", "src", nil))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		want := `{"source":"src","type":"empty_kind"}`
		if string(data) != want {
			t.Errorf("got %s, want %s", data, want)
		}
	})
}

func TestRecord_Fields(t *testing.T) {
	rec := New("sample_kind", "src", samplePayload{Name: "c", Count: 1})
	fields := rec.Fields()

	if fields["type"] != "sample_kind" || fields["source"] != "src" {
		t.Errorf("discriminant fields missing: %v", fields)
	}
	if fields["name"] != "c" {
		t.Errorf("payload fields missing: %v", fields)
	}
}
