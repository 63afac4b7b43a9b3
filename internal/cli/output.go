package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// printResult writes v as indented JSON, or calls text for the text format
func printResult(w io.Writer, format string, v any, text func(w io.Writer)) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
