package repository

import (
	"context"
	"sync"

	"github.com/okian/spindle/internal/domain/dedupe"
	"github.com/okian/spindle/internal/domain/model"
	"github.com/okian/spindle/pkg/metrics"
)

// SpinLedger implements Ledger with an in-memory newest-first slice
// and a dedupe index that always mirrors the live contents.
type SpinLedger struct {
	mu       sync.RWMutex
	spins    []model.Spin
	capacity int
	deduper  dedupe.Deduper
}

// NewSpinLedger creates an empty ledger bound to a dedupe index.
func NewSpinLedger(deduper dedupe.Deduper, opts ...LedgerOption) *SpinLedger {
	l := &SpinLedger{
		capacity: defaultLedgerCapacity,
		deduper:  deduper,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Insert adds s at the front unless the deduper has seen it.
func (l *SpinLedger) Insert(ctx context.Context, s model.Spin) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.insertLocked(ctx, s)
}

// InsertBatch inserts each spin under one lock acquisition and
// reports how many survived the duplicate check.
func (l *SpinLedger) InsertBatch(ctx context.Context, spins []model.Spin) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	inserted := 0
	for _, s := range spins {
		if l.insertLocked(ctx, s) {
			inserted++
		}
	}
	return inserted
}

// insertLocked holds the core insert path. Must be called with l.mu held.
func (l *SpinLedger) insertLocked(ctx context.Context, s model.Spin) bool {
	if l.deduper.SeenAndRecord(ctx, s) {
		return false
	}

	l.spins = append([]model.Spin{s}, l.spins...)
	l.truncateLocked(ctx)
	metrics.UpdateLedgerSize(len(l.spins))
	return true
}

// truncateLocked enforces the capacity bound, unrecording evicted
// spins so they may be ingested again later.
func (l *SpinLedger) truncateLocked(ctx context.Context) {
	if len(l.spins) <= l.capacity {
		return
	}
	for _, evicted := range l.spins[l.capacity:] {
		l.deduper.Unrecord(ctx, evicted)
	}
	l.spins = l.spins[:l.capacity:l.capacity]
}

// Latest returns the most recent spin, if any.
func (l *SpinLedger) Latest(_ context.Context) (model.Spin, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.spins) == 0 {
		return model.Spin{}, false
	}
	return l.spins[0], true
}

// List returns up to limit spins, newest-first.
func (l *SpinLedger) List(_ context.Context, limit int) []model.Spin {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.spins) {
		limit = len(l.spins)
	}
	out := make([]model.Spin, limit)
	copy(out, l.spins[:limit])
	return out
}

// Clear removes all spins and resets the dedupe index.
func (l *SpinLedger) Clear(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range l.spins {
		l.deduper.Unrecord(ctx, s)
	}
	l.spins = nil
	metrics.UpdateLedgerSize(0)
}

// Count returns the number of stored spins.
func (l *SpinLedger) Count(_ context.Context) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.spins)
}

// Snapshot returns a copy of the full contents, newest-first.
func (l *SpinLedger) Snapshot(_ context.Context) []model.Spin {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Spin, len(l.spins))
	copy(out, l.spins)
	return out
}

// Seed replaces the contents from a loaded snapshot, rebuilding the
// dedupe index. Duplicate snapshot rows collapse to the newest one.
func (l *SpinLedger) Seed(ctx context.Context, spins []model.Spin) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range l.spins {
		l.deduper.Unrecord(ctx, s)
	}
	l.spins = nil

	for _, s := range spins {
		if l.deduper.SeenAndRecord(ctx, s) {
			continue
		}
		l.spins = append(l.spins, s)
		if len(l.spins) >= l.capacity {
			break
		}
	}
	metrics.UpdateLedgerSize(len(l.spins))
}
