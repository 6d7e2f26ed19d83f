package backend

import (
	"context"
	"errors"
	"testing"

	"spyglass/internal/adapter"
	"spyglass/internal/config"
)

func TestCSVFile_Structure(t *testing.T) {
	path := writeFixture(t, "towns.csv", "name,pop\nAvon,1200\nBree,300\nCeel,9000\n")

	inst, err := csvFactory(config.DefaultConfig())(context.Background(), adapter.ConstructInput{
		Resource: path,
		Query:    map[string]string{"limit": "2"},
	})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	rec, err := inst.Structure(context.Background())
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if rec.Type != "csv_table" {
		t.Errorf("Type = %q, want csv_table", rec.Type)
	}

	table := rec.Payload.(CSVTable)
	if len(table.Header) != 2 || table.Header[0] != "name" {
		t.Errorf("header = %v", table.Header)
	}
	// The sample is bounded by the limit, the total is not.
	if len(table.RowSample) != 2 {
		t.Errorf("sample = %d rows, limit was 2", len(table.RowSample))
	}
	if table.TotalRows != 3 {
		t.Errorf("TotalRows = %d, want 3", table.TotalRows)
	}
}

func TestCSVFile_RaggedRows(t *testing.T) {
	path := writeFixture(t, "ragged.csv", "a,b,c\n1,2\n1,2,3,4\n")

	inst, err := csvFactory(config.DefaultConfig())(context.Background(), adapter.ConstructInput{Resource: path})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	rec, err := inst.Structure(context.Background())
	if err != nil {
		t.Fatalf("ragged rows should not fail: %v", err)
	}
	if rec.Payload.(CSVTable).TotalRows != 2 {
		t.Errorf("TotalRows = %d, want 2", rec.Payload.(CSVTable).TotalRows)
	}
}

func TestCSVFile_Validation(t *testing.T) {
	path := writeFixture(t, "ok.csv", "a\n1\n")
	for name, in := range map[string]adapter.ConstructInput{
		"missing file":  {Resource: "/nonexistent/data.csv"},
		"empty path":    {},
		"invalid limit": {Resource: path, Query: map[string]string{"limit": "zero"}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := csvFactory(config.DefaultConfig())(context.Background(), in)
			var verr *adapter.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
		})
	}
}
