// Package repository defines the bounded stores for spins and patterns.
package repository

import (
	"context"

	"github.com/okian/spindle/internal/domain/model"
)

// Ledger provides access to the bounded, ordered, deduplicated spin
// store. Entries are kept newest-first and the store never exceeds its
// configured capacity; the oldest entries are evicted first.
type Ledger interface {
	// Insert adds a spin at the front unless it is a duplicate.
	// Returns true if the spin was inserted.
	Insert(ctx context.Context, s model.Spin) bool

	// InsertBatch applies the per-spin duplicate check to each element
	// and returns how many were actually inserted.
	InsertBatch(ctx context.Context, spins []model.Spin) int

	// Latest returns the most recent spin, if any.
	Latest(ctx context.Context) (model.Spin, bool)

	// List returns up to limit spins, newest-first. A non-positive or
	// oversized limit returns everything.
	List(ctx context.Context, limit int) []model.Spin

	// Clear removes all spins.
	Clear(ctx context.Context)

	// Count returns the number of stored spins.
	Count(ctx context.Context) int

	// Snapshot returns a copy of the full contents for persistence.
	Snapshot(ctx context.Context) []model.Spin

	// Seed replaces the contents from a loaded snapshot.
	Seed(ctx context.Context, spins []model.Spin)
}

// PatternStore provides access to the bounded, merge-on-conflict
// pattern store. Entries are kept newest-first with oldest-first
// eviction beyond capacity.
type PatternStore interface {
	// Upsert inserts p or merges it into an existing entry. Matching is
	// a fixed-order total rule: by identifier first, then by structural
	// key (signature, expected-next). Returns true when a new entry was
	// inserted, false when an existing one absorbed the submission.
	Upsert(ctx context.Context, p model.Pattern) bool

	// UpsertBatch upserts each element and returns how many inserted.
	UpsertBatch(ctx context.Context, ps []model.Pattern) int

	List(ctx context.Context, limit int) []model.Pattern
	Clear(ctx context.Context)
	Count(ctx context.Context) int
	Snapshot(ctx context.Context) []model.Pattern
	Seed(ctx context.Context, ps []model.Pattern)
}
