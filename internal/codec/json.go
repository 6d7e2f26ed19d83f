package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"spyglass/internal/result"
)

// WriteJSON serializes a record verbatim. No renderer-specific shaping
// happens at this layer, and the output is deterministic: rendering the
// same record twice produces byte-identical bytes.
func WriteJSON(w io.Writer, rec *result.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
