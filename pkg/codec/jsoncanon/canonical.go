// Package jsoncanon provides the pretty-printed JSON encoding used for the
// two disk-backed stores that the spec mandates as JSON rather than CBOR:
// the ref map and the work directory state. It mirrors the canonical-mode
// shape of pkg/codec/cborcanon but targets encoding/json's indented form so
// that a rewritten file's bytes are deterministic for a given value.
package jsoncanon

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Marshal encodes v as indented JSON with a trailing newline, matching the
// format a human would get from a pretty-printer.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("canonical JSON marshal failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON data into v.
func Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// Equal reports whether two values would serialize to the same bytes,
// used to make a flush a no-op when nothing actually changed.
func Equal(a, b interface{}) bool {
	aBytes, aErr := Marshal(a)
	bBytes, bErr := Marshal(b)
	if aErr != nil || bErr != nil {
		return false
	}
	return bytes.Equal(aBytes, bBytes)
}
