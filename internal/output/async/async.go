package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hejijunhao/qrsheet/internal/model"
	"github.com/hejijunhao/qrsheet/internal/output"
)

const (
	defaultBufferSize   = 256
	defaultDrainTimeout = 5 * time.Second
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("async output closed")

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 256.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner output's Write fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Write return immediately (dropping the scan) when the
// buffer is full, instead of blocking.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// WithDrainTimeout bounds how long Close waits for queued scans. Default: 5s.
func WithDrainTimeout(d time.Duration) Option {
	return func(a *Async) { a.drainTimeout = d }
}

// Async decouples scan production from delivery via a buffered channel.
// A background goroutine drains the channel to the wrapped output. Errors
// from the inner output go to errFunc rather than to the caller.
type Async struct {
	inner        output.Output
	ch           chan model.Scan
	done         chan struct{}
	errFunc      func(error)
	bufSize      int
	dropOnFull   bool
	drainTimeout time.Duration

	mu     sync.RWMutex // guards closed and sends on ch
	closed bool
}

// New wraps an output.Output in an async channel-based writer.
// The background drain goroutine starts immediately.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:        inner,
		bufSize:      defaultBufferSize,
		drainTimeout: defaultDrainTimeout,
		errFunc:      func(err error) { slog.Warn("async output write error", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan model.Scan, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write queues the scan. By default it blocks while the buffer is full.
// With WithDropOnFull it returns nil immediately and the scan is lost.
func (a *Async) Write(_ context.Context, scan model.Scan) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	if a.dropOnFull {
		select {
		case a.ch <- scan:
		default:
			slog.Warn("async output buffer full, dropping scan", "id", scan.ID)
		}
		return nil
	}
	a.ch <- scan
	return nil
}

// Close stops accepting scans, waits for queued ones to drain (bounded by
// the drain timeout), then closes the inner output.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.ch)
	a.mu.Unlock()

	select {
	case <-a.done:
	case <-time.After(a.drainTimeout):
		slog.Warn("async output drain timed out")
	}
	return a.inner.Close()
}

// drain reads scans from the channel and writes them to the inner output.
func (a *Async) drain() {
	defer close(a.done)
	for scan := range a.ch {
		if err := a.inner.Write(context.Background(), scan); err != nil {
			a.errFunc(err)
		}
	}
}
