// Package dedupe defines the interface for idempotent spin ingestion.
package dedupe

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/okian/spindle/internal/domain/model"
)

// Deduper records seen spins so redelivered feed items are ingested
// at most once. A spin is a duplicate when its identifier matches a
// recorded one, or when its (source timestamp, number) pair does —
// the pair check defends against identifier derivation changes.
type Deduper interface {
	// SeenAndRecord atomically checks whether s was seen and records it
	// if not. Returns true if s was already seen, false if it was newly
	// recorded. This is the ONLY method for deduplication.
	SeenAndRecord(ctx context.Context, s model.Spin) bool

	// Unrecord removes a spin from the seen index. Called by the ledger
	// when it evicts or clears entries so the index tracks live
	// contents only.
	Unrecord(ctx context.Context, s model.Spin)

	Size() int64
}

// resultKey builds the defensive secondary key.
func resultKey(s model.Spin) string {
	return s.Timestamp + "\x00" + strconv.Itoa(s.Number)
}

// inMemoryDeduper implements Deduper with two map indexes guarded by
// one mutex. Size is bounded by the ledger capacity because the
// ledger unrecords everything it drops.
type inMemoryDeduper struct {
	mu       sync.Mutex
	byID     map[string]struct{}
	byResult map[string]struct{}
	size     atomic.Int64
}

// NewInMemoryDeduper creates an empty in-memory deduper.
func NewInMemoryDeduper() Deduper {
	return &inMemoryDeduper{
		byID:     make(map[string]struct{}),
		byResult: make(map[string]struct{}),
	}
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, s model.Spin) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byID[s.ID]; ok {
		return true
	}
	if _, ok := d.byResult[resultKey(s)]; ok {
		return true
	}

	d.byID[s.ID] = struct{}{}
	d.byResult[resultKey(s)] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, s model.Spin) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byID[s.ID]; !ok {
		return
	}
	delete(d.byID, s.ID)
	delete(d.byResult, resultKey(s))
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
