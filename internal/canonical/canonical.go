// Package canonical turns the normalizer's intermediate value into a definite
// structured value, decoding deferred JSON text along the way.
package canonical

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/hejijunhao/qrsheet/internal/model"
)

// maxDepth bounds nesting of decoded JSON. Deeper documents are treated as
// undecodable and fall back to the plain-text wrapping.
const maxDepth = 512

// ToRecord returns the canonical value for n.
//
// Deferred text that parses as strict JSON yields the decoded value: objects
// become *model.Record with keys in document order, arrays []any, numbers
// json.Number with their literal text. A record passes through unchanged.
// Anything else, including text that fails to parse or decodes to null, is
// wrapped as {value: <text>}.
func ToRecord(n model.Normalized) any {
	if text, ok := n.AsText(); ok {
		if v, ok := DecodeJSON(text); ok {
			return v
		}
		return model.RecordOf("value", text)
	}
	if rec, ok := n.AsRecord(); ok {
		return rec
	}
	return model.RecordOf("value", "")
}

// DecodeJSON strictly parses text. ok is false for invalid JSON, trailing
// data, a top-level null, or nesting beyond maxDepth.
func DecodeJSON(text string) (v any, ok bool) {
	if !gjson.Valid(text) {
		return nil, false
	}
	res := gjson.Parse(text)
	if res.Type == gjson.Null {
		return nil, false
	}
	return convert(res, 0)
}

func convert(res gjson.Result, depth int) (any, bool) {
	if depth > maxDepth {
		return nil, false
	}
	switch {
	case res.IsObject():
		rec := model.NewRecord()
		ok := true
		res.ForEach(func(key, value gjson.Result) bool {
			v, good := convert(value, depth+1)
			if !good {
				ok = false
				return false
			}
			rec.Set(key.Str, v)
			return true
		})
		return rec, ok
	case res.IsArray():
		items := []any{}
		ok := true
		res.ForEach(func(_, value gjson.Result) bool {
			v, good := convert(value, depth+1)
			if !good {
				ok = false
				return false
			}
			items = append(items, v)
			return true
		})
		return items, ok
	}

	switch res.Type {
	case gjson.String:
		return res.Str, true
	case gjson.Number:
		return json.Number(res.Raw), true
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	default:
		return nil, true
	}
}
