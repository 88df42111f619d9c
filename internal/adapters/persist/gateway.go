package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/spindle/pkg/logger"
	"github.com/okian/spindle/pkg/metrics"
)

// Gateway reads and writes the whole snapshot document.
type Gateway interface {
	// Load returns the persisted document. A missing or corrupt store
	// initializes and persists a default empty schema instead of
	// failing the caller.
	Load(ctx context.Context) (*Snapshot, error)

	// Save stamps lastUpdate and the totals, then writes the document.
	Save(ctx context.Context, snap *Snapshot) error
}

const snapshotFileMode = 0o644

// FileGateway implements Gateway over a single JSON file with an
// atomic temp-file + rename write.
type FileGateway struct {
	path string
	now  func() time.Time
}

// NewFileGateway creates a gateway persisting to path.
func NewFileGateway(path string) *FileGateway {
	return &FileGateway{
		path: path,
		now:  time.Now,
	}
}

// Load reads the snapshot from disk, falling back to a freshly
// initialized empty schema when the file is missing or unreadable.
func (g *FileGateway) Load(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Get().Warn(ctx, "snapshot unreadable; initializing empty schema",
				logger.String("path", g.path),
				logger.Error(err),
			)
		}
		return g.initEmpty(ctx)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Get().Warn(ctx, "snapshot corrupt; initializing empty schema",
			logger.String("path", g.path),
			logger.Error(err),
		)
		return g.initEmpty(ctx)
	}
	return &snap, nil
}

// initEmpty builds a default document and best-effort persists it so
// the next load succeeds cleanly.
func (g *FileGateway) initEmpty(ctx context.Context) (*Snapshot, error) {
	snap := NewSnapshot(g.now())
	if err := g.Save(ctx, snap); err != nil {
		logger.Get().Error(ctx, "failed to persist initial snapshot",
			logger.String("path", g.path),
			logger.Error(err),
		)
	}
	return snap, nil
}

// Save writes the document atomically: marshal, write a sibling temp
// file, then rename over the target.
func (g *FileGateway) Save(_ context.Context, snap *Snapshot) error {
	start := time.Now()
	defer func() {
		metrics.RecordSnapshotSaveLatency(float64(time.Since(start).Milliseconds()))
	}()

	now := g.now().UTC()
	if snap.Metadata.Version == "" {
		snap.Metadata.Version = SchemaVersion
	}
	if snap.Metadata.CreatedAt.IsZero() {
		snap.Metadata.CreatedAt = now
	}
	snap.Metadata.LastUpdate = now
	snap.Metadata.TotalSpins = len(snap.Spins)
	snap.Metadata.TotalPatterns = len(snap.Patterns)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrSave, err)
	}

	if dir := filepath.Dir(g.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: mkdir %s: %w", ErrSave, dir, err)
		}
	}

	tmp := g.path + ".tmp"
	if err := os.WriteFile(tmp, data, snapshotFileMode); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrSave, tmp, err)
	}
	if err := os.Rename(tmp, g.path); err != nil {
		return fmt.Errorf("%w: rename %s: %w", ErrSave, g.path, err)
	}

	metrics.RecordSnapshotSave()
	return nil
}
