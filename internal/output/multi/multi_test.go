package multi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hejijunhao/qrsheet/internal/model"
)

// mockOutput records calls for test assertions.
type mockOutput struct {
	scans  []model.Scan
	closed bool
	err    error // if set, Write returns this error
}

func (m *mockOutput) Write(_ context.Context, scan model.Scan) error {
	m.scans = append(m.scans, scan)
	return m.err
}

func (m *mockOutput) Close() error {
	m.closed = true
	return m.err
}

func testScan(raw string) model.Scan {
	return model.Scan{
		ID:        "scan-" + raw,
		Timestamp: time.Now(),
		Raw:       raw,
		Data:      model.RecordOf("value", raw),
	}
}

func TestFanOutDeliversToAll(t *testing.T) {
	a := &mockOutput{}
	b := &mockOutput{}
	c := &mockOutput{}
	m := New(a, b, c)

	if err := m.Write(context.Background(), testScan("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, out := range []*mockOutput{a, b, c} {
		if len(out.scans) != 1 {
			t.Errorf("output %d: got %d scans, want 1", i, len(out.scans))
			continue
		}
		if out.scans[0].Raw != "hello" {
			t.Errorf("output %d: got raw %q, want hello", i, out.scans[0].Raw)
		}
	}
}

func TestErrorDoesNotPreventDelivery(t *testing.T) {
	sentinel := errors.New("endpoint down")
	failing := &mockOutput{err: sentinel}
	healthy := &mockOutput{}
	m := New(failing, healthy)

	err := m.Write(context.Background(), testScan("x"))
	if !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, want wrapped sentinel", err)
	}
	if len(healthy.scans) != 1 {
		t.Fatalf("healthy output got %d scans, want 1", len(healthy.scans))
	}
	if len(failing.scans) != 1 {
		t.Fatalf("failing output got %d scans, want 1", len(failing.scans))
	}
}

func TestCloseCallsAllOutputs(t *testing.T) {
	a := &mockOutput{}
	b := &mockOutput{}
	m := New(a, b)

	if err := m.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.closed || !b.closed {
		t.Errorf("Close not called on all outputs: a=%v b=%v", a.closed, b.closed)
	}
}

func TestCloseCollectsErrors(t *testing.T) {
	a := &mockOutput{err: errors.New("err-a")}
	b := &mockOutput{err: errors.New("err-b")}
	m := New(a, b)

	if err := m.Close(); err == nil {
		t.Fatal("expected error, got nil")
	}
	if !a.closed || !b.closed {
		t.Error("Close should be called on all outputs even when errors occur")
	}
}

func TestEmptyMulti(t *testing.T) {
	m := New()
	if err := m.Write(context.Background(), testScan("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
