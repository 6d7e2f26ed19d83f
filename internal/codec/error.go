package codec

import (
	"errors"
	"fmt"
	"io"

	"spyglass/internal/adapter"
)

// WriteError formats user-facing error text. A missing-dependency
// condition gets installation guidance appended, since the user can fix
// it themselves.
func WriteError(w io.Writer, err error) {
	fmt.Fprintf(w, "spyglass: %v\n", err)

	var missing *adapter.MissingDependencyError
	if errors.As(err, &missing) && missing.Install != "" {
		fmt.Fprintf(w, "  install: %s\n", missing.Install)
	}
}
