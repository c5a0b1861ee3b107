package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hejijunhao/qrsheet/internal/model"
	"github.com/hejijunhao/qrsheet/internal/output"
)

// Output writes rendered scans to a writer, one block per scan.
type Output struct {
	mu     sync.Mutex
	w      io.Writer
	format output.Format
	pretty bool
}

// New creates an Output writing to w in the given format. A nil w writes to
// os.Stdout.
func New(w io.Writer, format output.Format, pretty bool) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{w: w, format: format, pretty: pretty}
}

func (o *Output) Write(_ context.Context, scan model.Scan) error {
	data, err := output.Render(scan, o.format, o.pretty)
	if err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	data = append(data, '\n')

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := o.w.Write(data); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
