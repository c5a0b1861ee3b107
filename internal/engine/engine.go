package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hejijunhao/qrsheet/internal/canonical"
	"github.com/hejijunhao/qrsheet/internal/csvline"
	"github.com/hejijunhao/qrsheet/internal/model"
	"github.com/hejijunhao/qrsheet/internal/normalize"
)

// Engine orchestrates the normalize → canonicalize → serialize chain.
// It holds no per-payload state and is safe for concurrent use.
type Engine struct {
	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used when Process is given a zero timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDFunc sets the scan ID generator. Default: random UUIDs.
func WithIDFunc(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process converts one raw payload into a Scan. A zero ts is replaced with
// the current time. Process never fails: every payload yields some record
// and some CSV text.
func (e *Engine) Process(raw string, ts time.Time) model.Scan {
	if ts.IsZero() {
		ts = e.now()
	}
	n, shape := normalize.Classify(raw)
	data := canonical.ToRecord(n)

	slog.Debug("payload normalized", "shape", shape, "bytes", len(raw))

	return model.Scan{
		ID:        e.newID(),
		Timestamp: ts,
		Shape:     shape,
		Raw:       normalize.Trim(raw),
		Data:      data,
		CSV:       csvline.Format(data),
	}
}
