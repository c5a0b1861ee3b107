package qrsheet

import "github.com/hejijunhao/qrsheet/internal/model"

// Record is a string-keyed map that remembers insertion order. Setting an
// existing key replaces its value in place.
type Record = model.Record

// Field is one key/value pair of a Record.
type Field = model.Field

// Normalized is the intermediate result of NormalizeContent: either JSON
// text whose decoding is deferred to ToRecord, or a Record.
type Normalized = model.Normalized

// NewRecord returns an empty Record.
func NewRecord() *Record { return model.NewRecord() }

// RecordOf builds a Record from alternating keys and values.
func RecordOf(kv ...any) *Record { return model.RecordOf(kv...) }

// Text wraps s as deferred JSON text.
func Text(s string) Normalized { return model.NormalizedText(s) }

// FromRecord wraps r as an already-structured Normalized value.
func FromRecord(r *Record) Normalized { return model.NormalizedRecord(r) }
