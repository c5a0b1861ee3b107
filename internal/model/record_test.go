package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRecordKeepsInsertionOrder(t *testing.T) {
	r := NewRecord()
	r.Set("zeta", "1")
	r.Set("alpha", "2")
	r.Set("mid", "3")

	want := []string{"zeta", "alpha", "mid"}
	if got := r.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
}

func TestRecordOverwriteKeepsPosition(t *testing.T) {
	r := RecordOf("a", "1", "b", "2")
	r.Set("a", "3")

	if got := r.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Keys() = %v, want [a b]", got)
	}
	if v, _ := r.Get("a"); v != "3" {
		t.Fatalf("Get(a) = %v, want 3", v)
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
}

func TestRecordZeroValueUsable(t *testing.T) {
	var r Record
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len())
	}
	r.Set("k", "v")
	if v, ok := r.Get("k"); !ok || v != "v" {
		t.Fatalf("Get(k) = %v, %v", v, ok)
	}
}

func TestRecordMarshalJSONOrdered(t *testing.T) {
	inner := RecordOf("y", json.Number("2"), "x", true)
	r := RecordOf("b", "xy", "a", inner, "c", nil, "d", []any{"1", json.Number("2")})

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{"b":"xy","a":{"y":2,"x":true},"c":null,"d":["1",2]}`
	if string(data) != want {
		t.Fatalf("Marshal = %s, want %s", data, want)
	}
}

func TestRecordMarshalJSONLeavesHTMLUnescaped(t *testing.T) {
	r := RecordOf("url", "https://x.test/?a=1&b=<2>")
	raw, err := r.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON error: %v", err)
	}
	if string(raw) != `{"url":"https://x.test/?a=1&b=<2>"}` {
		t.Fatalf("MarshalJSON = %s", raw)
	}
}

func TestRecordMarshalEmpty(t *testing.T) {
	data, err := json.Marshal(NewRecord())
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != "{}" {
		t.Fatalf("Marshal = %s, want {}", data)
	}
}

func TestNormalizedVariants(t *testing.T) {
	text := NormalizedText(`{"a":1}`)
	if s, ok := text.AsText(); !ok || s != `{"a":1}` {
		t.Fatalf("AsText() = %q, %v", s, ok)
	}
	if _, ok := text.AsRecord(); ok {
		t.Fatal("text variant should not report a record")
	}

	rec := NormalizedRecord(RecordOf("a", "1"))
	if _, ok := rec.AsText(); ok {
		t.Fatal("record variant should not report text")
	}
	if r, ok := rec.AsRecord(); !ok || r.Len() != 1 {
		t.Fatalf("AsRecord() = %v, %v", r, ok)
	}

	if !(Normalized{}).IsZero() {
		t.Fatal("zero Normalized should report IsZero")
	}
	if NormalizedText("").IsZero() {
		t.Fatal("empty text is still a text variant")
	}
}
