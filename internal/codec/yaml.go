package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"spyglass/internal/result"
)

// writeDump renders a record as a raw structured dump. It is the text
// fallback for payload shapes no type-specific routine recognizes, so an
// unknown record type degrades to readable output instead of crashing.
func writeDump(w io.Writer, rec *result.Record) error {
	data, err := yaml.Marshal(rec.Fields())
	if err != nil {
		return fmt.Errorf("dump record: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	return nil
}
