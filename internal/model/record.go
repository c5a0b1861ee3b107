package model

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is an insertion-ordered mapping from key to value, the canonical
// structured form of a decoded payload. Key order is the CSV column order
// and the JSON object key order.
//
// Values are strings for records built from text payloads. Records decoded
// from JSON text may also hold json.Number, bool, nil, []any and nested
// *Record values.
type Record struct {
	m *orderedmap.OrderedMap[string, any]
}

// Field is a single key/value entry of a Record.
type Field struct {
	Key   string
	Value any
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return &Record{m: orderedmap.New[string, any]()}
}

// RecordOf builds a Record from alternating key/value pairs. A trailing key
// without a value is stored with a nil value.
func RecordOf(kv ...any) *Record {
	r := NewRecord()
	for i := 0; i < len(kv); i += 2 {
		key, _ := kv[i].(string)
		var value any
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		r.Set(key, value)
	}
	return r
}

// Set stores value under key. Setting a key that is already present replaces
// its value and keeps the key at its original position.
func (r *Record) Set(key string, value any) {
	if r.m == nil {
		r.m = orderedmap.New[string, any]()
	}
	r.m.Set(key, value)
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil || r.m == nil {
		return nil, false
	}
	return r.m.Get(key)
}

// Len returns the number of entries.
func (r *Record) Len() int {
	if r == nil || r.m == nil {
		return 0
	}
	return r.m.Len()
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, r.Len())
	for _, f := range r.Fields() {
		keys = append(keys, f.Key)
	}
	return keys
}

// Fields returns the entries in insertion order, or nil for an empty record.
func (r *Record) Fields() []Field {
	if r.Len() == 0 {
		return nil
	}
	fields := make([]Field, 0, r.m.Len())
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		fields = append(fields, Field{Key: pair.Key, Value: pair.Value})
	}
	return fields
}

// MarshalJSON encodes the record as a JSON object with keys in insertion
// order. HTML characters are left unescaped so URLs survive intact.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := marshalNoEscape(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String returns the compact JSON form of the record.
func (r *Record) String() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(b)
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
