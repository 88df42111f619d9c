// Package persist owns the durable snapshot document: one JSON file
// holding the ledger, the pattern store, and collection metadata.
//
// All writes flow through a single Writer goroutine so interleaved
// read-modify-write cycles cannot lose updates.
package persist

import (
	"time"

	"github.com/okian/spindle/internal/domain/model"
)

// SchemaVersion tags the snapshot document layout.
const SchemaVersion = "1.0"

// Metadata carries document-level bookkeeping.
type Metadata struct {
	Version       string    `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdate    time.Time `json:"lastUpdate"`
	TotalSpins    int       `json:"totalSpins"`
	TotalPatterns int       `json:"totalPatterns"`
}

// Snapshot is the whole persisted document.
type Snapshot struct {
	Spins    []model.Spin    `json:"spins"`
	Patterns []model.Pattern `json:"patterns"`
	Metadata Metadata        `json:"metadata"`
}

// NewSnapshot returns an empty document with fresh metadata.
func NewSnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		Spins:    []model.Spin{},
		Patterns: []model.Pattern{},
		Metadata: Metadata{
			Version:    SchemaVersion,
			CreatedAt:  now.UTC(),
			LastUpdate: now.UTC(),
		},
	}
}
