package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"spyglass/internal/adapter"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestJSONDoc_Summary(t *testing.T) {
	path := writeFixture(t, "app.json", `{"name":"spyglass","ports":[1,2,3],"tls":{"cert":"a","key":"b"}}`)

	inst, err := newJSONDoc(context.Background(), adapter.ConstructInput{Resource: path})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	rec, err := inst.Structure(context.Background())
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if rec.Type != "json_document" {
		t.Errorf("Type = %q, want json_document", rec.Type)
	}

	doc := rec.Payload.(JSONDocument)
	if doc.Kind != "object" {
		t.Errorf("Kind = %q, want object", doc.Kind)
	}
	kinds := map[string]JSONEntry{}
	for _, e := range doc.Entries {
		kinds[e.Key] = e
	}
	if e := kinds["ports"]; e.Kind != "array" || e.Items != 3 {
		t.Errorf("ports entry = %+v, want array of 3", e)
	}
	if e := kinds["tls"]; e.Kind != "object" || e.Items != 2 {
		t.Errorf("tls entry = %+v, want object of 2", e)
	}
}

func TestJSONDoc_PathQuery(t *testing.T) {
	path := writeFixture(t, "app.json", `{"tls":{"cert":"server.pem"}}`)

	inst, err := newJSONDoc(context.Background(), adapter.ConstructInput{
		Resource: path,
		Query:    map[string]string{"path": "tls.cert"},
	})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	rec, err := inst.Structure(context.Background())
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if rec.Type != "json_value" {
		t.Errorf("Type = %q, want json_value", rec.Type)
	}
	v := rec.Payload.(JSONValue)
	if v.Kind != "string" || v.Value != `"server.pem"` {
		t.Errorf("value = %+v", v)
	}
}

func TestJSONDoc_MissingPath(t *testing.T) {
	path := writeFixture(t, "app.json", `{"a":1}`)

	inst, err := newJSONDoc(context.Background(), adapter.ConstructInput{
		Resource: path,
		Query:    map[string]string{"path": "b.c"},
	})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if _, err := inst.Structure(context.Background()); err == nil {
		t.Fatal("missing path should fail extraction")
	}
}

func TestJSONDoc_InvalidDocument(t *testing.T) {
	path := writeFixture(t, "broken.json", `{"a":`)

	_, err := newJSONDoc(context.Background(), adapter.ConstructInput{Resource: path})
	var verr *adapter.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}
