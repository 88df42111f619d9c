package persist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/spindle/pkg/logger"
	"github.com/okian/spindle/pkg/metrics"
)

// Default writer configuration constants.
const (
	defaultRequestBuffer = 64
	flushTimeout         = 5 * time.Second
)

// Source builds the current snapshot at write time. Building lazily
// inside the writer loop means a coalesced request always persists
// the latest state, not the state at enqueue time.
type Source interface {
	BuildSnapshot(ctx context.Context) *Snapshot
}

// saveRequest is one unit of work for the writer loop. A nil reply
// marks a fire-and-forget request.
type saveRequest struct {
	reply chan error
}

// Writer serializes all snapshot saves through a single goroutine,
// removing the lost-update race between interleaved writers.
type Writer struct {
	gateway Gateway
	source  Source
	reqs    chan saveRequest

	mu       sync.Mutex
	started  bool
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// WriterOption applies a configuration option to the Writer.
type WriterOption func(*Writer)

// WithRequestBuffer sets the save request queue depth.
func WithRequestBuffer(n int) WriterOption {
	return func(w *Writer) {
		if n > 0 {
			w.reqs = make(chan saveRequest, n)
		}
	}
}

// WithWriterLogger sets a custom logger for the writer.
func WithWriterLogger(l logger.Logger) WriterOption {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWriter creates a writer draining saves to gateway from source.
func NewWriter(gateway Gateway, source Source, opts ...WriterOption) *Writer {
	w := &Writer{
		gateway:  gateway,
		source:   source,
		reqs:     make(chan saveRequest, defaultRequestBuffer),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the writer loop. Idempotent.
func (w *Writer) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("persist")
	}
	w.started = true
	go w.run(ctx)
}

func (w *Writer) run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case req := <-w.reqs:
			err := w.save(ctx)
			if req.reply != nil {
				req.reply <- err
			}
		}
	}
}

// save builds the current snapshot and persists it.
func (w *Writer) save(ctx context.Context) error {
	snap := w.source.BuildSnapshot(ctx)
	if err := w.gateway.Save(ctx, snap); err != nil {
		metrics.RecordSnapshotSaveError()
		metrics.RecordErrorByComponent("persist", "save_failed")
		w.logger.Error(ctx, "snapshot save failed", logger.Error(err))
		return err
	}
	return nil
}

// Request nudges the writer to persist soon. Non-blocking: when the
// queue is full a pending request will capture the same state, so the
// nudge can be dropped.
func (w *Writer) Request() {
	select {
	case w.reqs <- saveRequest{}:
	case <-w.shutdown:
	default:
	}
}

// SaveNow persists synchronously through the serialized loop and
// reports the outcome, so request handlers can surface persistence
// failure to their caller.
func (w *Writer) SaveNow(ctx context.Context) error {
	reply := make(chan error, 1)

	select {
	case w.reqs <- saveRequest{reply: reply}:
	case <-w.shutdown:
		return ErrWriterClosed
	case <-ctx.Done():
		return fmt.Errorf("save request not accepted: %w", ctx.Err())
	}

	select {
	case err := <-reply:
		return err
	case <-w.done:
		return ErrWriterClosed
	case <-ctx.Done():
		return fmt.Errorf("save outcome not observed: %w", ctx.Err())
	}
}

// Shutdown stops the loop and writes one final snapshot so the last
// in-memory state survives a restart.
func (w *Writer) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	// Closing under the mutex keeps a second concurrent Shutdown from
	// reaching close twice.
	select {
	case <-w.shutdown:
		w.mu.Unlock()
		return nil
	default:
		close(w.shutdown)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
	case <-ctx.Done():
		w.logger.Warn(ctx, "writer shutdown timed out")
		return fmt.Errorf("writer shutdown: %w", ctx.Err())
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	return w.save(flushCtx)
}
