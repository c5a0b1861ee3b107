package qrsheet

import (
	"bytes"
	"encoding/json"

	"github.com/hejijunhao/qrsheet/internal/canonical"
	"github.com/hejijunhao/qrsheet/internal/csvline"
	"github.com/hejijunhao/qrsheet/internal/normalize"
)

// IsJSONLike reports whether the trimmed text starts and ends with matching
// braces or brackets. It does not check that the text parses.
func IsJSONLike(s string) bool {
	return normalize.LooksLikeJSON(s)
}

// NormalizeContent infers the payload shape of raw. JSON-looking text is
// returned undecoded; every other shape becomes a Record.
func NormalizeContent(raw string) Normalized {
	return normalize.Content(raw)
}

// ToRecord resolves n to a definite value. Deferred JSON text that parses is
// returned decoded (*Record, []any, json.Number, string or bool); text that
// does not parse, or parses to null, becomes {value: <text>}. A Record is
// returned as is.
func ToRecord(n Normalized) any {
	return canonical.ToRecord(n)
}

// ToCSVLine renders v as a quoted header line and a quoted value line joined
// by "\n". Records and arrays contribute one column per entry; any other
// value is a single "value" column.
func ToCSVLine(v any) string {
	return csvline.Format(v)
}

// ToJSON encodes a value returned by ToRecord as compact JSON, keeping
// record key order and leaving <, > and & unescaped.
func ToJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
