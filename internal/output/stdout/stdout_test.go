package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hejijunhao/qrsheet/internal/model"
	"github.com/hejijunhao/qrsheet/internal/output"
)

func testScan() model.Scan {
	return model.Scan{
		ID:        "scan-1",
		Timestamp: time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC),
		Shape:     model.ShapeQuery,
		Raw:       "a=1&b=2",
		Data:      model.RecordOf("a", "1", "b", "2"),
		CSV:       "\"a\",\"b\"\n\"1\",\"2\"",
	}
}

// captureStdout redirects os.Stdout to capture output.
func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestOutputCompactJSON(t *testing.T) {
	var buf bytes.Buffer
	out := New(&buf, output.FormatJSON, false)
	if err := out.Write(context.Background(), testScan()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["a"] != "1" {
		t.Fatalf("expected a=1, got %v", m["a"])
	}
}

func TestOutputPrettyJSON(t *testing.T) {
	var buf bytes.Buffer
	out := New(&buf, output.FormatJSON, true)
	out.Write(context.Background(), testScan())

	if !strings.Contains(buf.String(), "  ") {
		t.Fatal("expected indented output for pretty mode")
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected multi-line pretty output, got %d lines", len(lines))
	}
}

func TestOutputCSV(t *testing.T) {
	var buf bytes.Buffer
	out := New(&buf, output.FormatCSV, false)
	out.Write(context.Background(), testScan())

	if got := buf.String(); got != "\"a\",\"b\"\n\"1\",\"2\"\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestOutputUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	out := New(&buf, output.Format("xml"), false)
	err := out.Write(context.Background(), testScan())
	if !errors.Is(err, output.ErrUnknownFormat) {
		t.Fatalf("error = %v, want ErrUnknownFormat", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written on error, got %q", buf.String())
	}
}

func TestOutputDefaultsToStdout(t *testing.T) {
	result := captureStdout(func() {
		out := New(nil, output.FormatCSV, false)
		out.Write(context.Background(), testScan())
	})
	if !strings.HasPrefix(result, "\"a\",\"b\"") {
		t.Fatalf("stdout = %q", result)
	}
}
