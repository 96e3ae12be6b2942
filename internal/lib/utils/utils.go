// Package utils contains small helpers that don't belong to a domain package.
package utils

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON writes v as tab-indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("marshalling JSON: %w", err)
	}

	_, err = fmt.Fprintln(w, string(out))
	return err
}
