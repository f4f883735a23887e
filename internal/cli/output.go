package cli

import (
	"encoding/json"
	"io"
)

// writeJSON emits a value as indented JSON for --json consumers.
func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
