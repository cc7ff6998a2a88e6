// internal/jsonutil/json.go
package jsonutil

import (
	"encoding/json"
	"io"
)

// EncodePretty writes v as indented JSON to w.
func EncodePretty(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// EncodeArray converts each row and writes the result as one indented JSON
// array. A nil or empty input is written as [].
func EncodeArray[T, W any](w io.Writer, rows []T, conv func(T) W) error {
	out := make([]W, len(rows))
	for i, r := range rows {
		out[i] = conv(r)
	}
	return EncodePretty(w, out)
}
