package model

// Normalized is the intermediate value handed from the normalizer to the
// canonicalizer: either JSON-looking text whose parsing is deferred, or an
// already built Record. The zero value carries neither and stands for a
// missing payload.
type Normalized struct {
	text   string
	record *Record
	isText bool
}

// NormalizedText wraps JSON-looking text.
func NormalizedText(s string) Normalized {
	return Normalized{text: s, isText: true}
}

// NormalizedRecord wraps a Record.
func NormalizedRecord(r *Record) Normalized {
	return Normalized{record: r}
}

// AsText returns the deferred JSON text, if that is what n holds.
func (n Normalized) AsText() (string, bool) {
	return n.text, n.isText
}

// AsRecord returns the Record, if that is what n holds.
func (n Normalized) AsRecord() (*Record, bool) {
	return n.record, !n.isText && n.record != nil
}

// IsZero reports whether n holds neither text nor a record.
func (n Normalized) IsZero() bool {
	return !n.isText && n.record == nil
}
