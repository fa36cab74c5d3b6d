package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Envelope is the top-level shape of every CLI response.
type Envelope struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

// Wrap returns v in an Envelope unless it already is one.
func Wrap(v any) Envelope {
	switch t := v.(type) {
	case Envelope:
		return t
	case *Envelope:
		if t != nil {
			return *t
		}
	}
	return Envelope{Data: v}
}

// Valid reports whether f is a supported output format.
func Valid(f string) bool {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "", "json", "edn":
		return true
	default:
		return false
	}
}

// Write writes v in the requested format (json by default, or edn).
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s (expected json|edn)", format)
	}
}

// WriteJSON writes a single JSON document followed by a newline. Output stays strict JSON;
// hints for follow-up commands belong in Envelope.Meta.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
