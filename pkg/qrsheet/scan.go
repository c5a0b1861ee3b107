package qrsheet

import (
	"time"

	"github.com/hejijunhao/qrsheet/internal/engine"
	"github.com/hejijunhao/qrsheet/internal/model"
)

// Scan is one fully processed payload.
// This is the stable public type; the internal representation may change.
type Scan struct {
	ID        string    `json:"id"`        // random UUID
	Timestamp time.Time `json:"timestamp"` // when the payload was scanned
	Shape     string    `json:"shape"`     // empty, json, url, query, pairs or text
	Raw       string    `json:"raw"`       // trimmed input
	Data      any       `json:"data"`      // ToRecord result
	CSV       string    `json:"csv"`       // ToCSVLine result
}

type options struct {
	now   func() time.Time
	newID func() string
}

// Option configures a Processor.
type Option func(*options)

// WithClock sets the time source for scans without an explicit timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDFunc sets the scan ID generator. Default: random UUIDs.
func WithIDFunc(f func() string) Option {
	return func(o *options) { o.newID = f }
}

// Processor runs the full normalize, resolve and render chain and stamps
// each result. Safe for concurrent use.
type Processor struct {
	engine *engine.Engine
}

// New creates a Processor.
func New(opts ...Option) *Processor {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var eopts []engine.Option
	if o.now != nil {
		eopts = append(eopts, engine.WithClock(o.now))
	}
	if o.newID != nil {
		eopts = append(eopts, engine.WithIDFunc(o.newID))
	}
	return &Processor{engine: engine.New(eopts...)}
}

// Process converts raw into a Scan stamped with the current time.
func (p *Processor) Process(raw string) Scan {
	return scanFromModel(p.engine.Process(raw, time.Time{}))
}

// ProcessAt is Process with an explicit scan time. A zero ts means now.
func (p *Processor) ProcessAt(raw string, ts time.Time) Scan {
	return scanFromModel(p.engine.Process(raw, ts))
}

var defaultProcessor = New()

// Process converts raw into a Scan using default settings.
func Process(raw string) Scan {
	return defaultProcessor.Process(raw)
}

func scanFromModel(s model.Scan) Scan {
	return Scan{
		ID:        s.ID,
		Timestamp: s.Timestamp,
		Shape:     string(s.Shape),
		Raw:       s.Raw,
		Data:      s.Data,
		CSV:       s.CSV,
	}
}
