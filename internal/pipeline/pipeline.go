package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/hejijunhao/qrsheet/internal/model"
	"github.com/hejijunhao/qrsheet/internal/output"
)

// Processor turns one raw payload into a Scan. *engine.Engine satisfies it.
type Processor interface {
	Process(raw string, ts time.Time) model.Scan
}

// Pipeline connects a processor and an output.
type Pipeline struct {
	proc   Processor
	output output.Output
}

// New creates a Pipeline from the given components. out may be nil, in which
// case scans are processed but not delivered anywhere.
func New(proc Processor, out output.Output) *Pipeline {
	return &Pipeline{
		proc:   proc,
		output: out,
	}
}

// Handle processes raw and writes the result to the output. The scan is
// returned even when delivery fails.
func (p *Pipeline) Handle(ctx context.Context, raw string) (model.Scan, error) {
	scan := p.proc.Process(raw, time.Time{})
	if p.output == nil {
		return scan, nil
	}
	if err := p.output.Write(ctx, scan); err != nil {
		return scan, fmt.Errorf("pipeline output: %w", err)
	}
	return scan, nil
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	if p.output == nil {
		return nil
	}
	return p.output.Close()
}
