package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/spindle/internal/domain/model"
	"github.com/okian/spindle/pkg/metrics"
)

// PatternTable implements PatternStore with an in-memory newest-first
// slice. Matching scans in order: identifier first, then structural
// key. Capacities sit in the low thousands, so linear scans stay cheap.
type PatternTable struct {
	mu       sync.RWMutex
	patterns []model.Pattern
	capacity int
	now      func() time.Time
}

// NewPatternTable creates an empty pattern store.
func NewPatternTable(opts ...PatternOption) *PatternTable {
	t := &PatternTable{
		capacity: defaultPatternCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Upsert inserts p or merges it into the first matching entry.
func (t *PatternTable) Upsert(ctx context.Context, p model.Pattern) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.upsertLocked(ctx, p)
}

// UpsertBatch upserts each pattern under one lock acquisition.
func (t *PatternTable) UpsertBatch(ctx context.Context, ps []model.Pattern) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	inserted := 0
	for _, p := range ps {
		if t.upsertLocked(ctx, p) {
			inserted++
		}
	}
	return inserted
}

func (t *PatternTable) upsertLocked(_ context.Context, p model.Pattern) bool {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.FoundAt.IsZero() {
		p.FoundAt = t.now().UTC()
	}

	if i := t.matchLocked(p); i >= 0 {
		t.patterns[i].MergeFrom(p)
		metrics.RecordPatternMerged()
		return false
	}

	t.patterns = append([]model.Pattern{p}, t.patterns...)
	if len(t.patterns) > t.capacity {
		t.patterns = t.patterns[:t.capacity:t.capacity]
	}
	metrics.RecordPatternInserted()
	metrics.UpdatePatternStoreSize(len(t.patterns))
	return true
}

// matchLocked evaluates the fixed-order matching rule and returns the
// index of the first match, or -1.
func (t *PatternTable) matchLocked(p model.Pattern) int {
	for i := range t.patterns {
		if t.patterns[i].ID == p.ID {
			return i
		}
	}
	key := p.StructuralKey()
	for i := range t.patterns {
		if t.patterns[i].StructuralKey() == key {
			return i
		}
	}
	return -1
}

// List returns up to limit patterns, newest-first.
func (t *PatternTable) List(_ context.Context, limit int) []model.Pattern {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if limit <= 0 || limit > len(t.patterns) {
		limit = len(t.patterns)
	}
	out := make([]model.Pattern, limit)
	copy(out, t.patterns[:limit])
	return out
}

// Clear removes all patterns.
func (t *PatternTable) Clear(_ context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.patterns = nil
	metrics.UpdatePatternStoreSize(0)
}

// Count returns the number of stored patterns.
func (t *PatternTable) Count(_ context.Context) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.patterns)
}

// Capacity returns the configured bound, used by stats reporting.
func (t *PatternTable) Capacity() int {
	return t.capacity
}

// Snapshot returns a copy of the full contents, newest-first.
func (t *PatternTable) Snapshot(_ context.Context) []model.Pattern {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.Pattern, len(t.patterns))
	copy(out, t.patterns)
	return out
}

// Seed replaces the contents from a loaded snapshot.
func (t *PatternTable) Seed(_ context.Context, ps []model.Pattern) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(ps) > t.capacity {
		ps = ps[:t.capacity]
	}
	t.patterns = make([]model.Pattern, len(ps))
	copy(t.patterns, ps)
	metrics.UpdatePatternStoreSize(len(t.patterns))
}
