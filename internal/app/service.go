// Package service provides the core business service that implements
// the dependencies required by the HTTP API, the feed poller, and the
// websocket hub.
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/spindle/internal/adapters/feed"
	"github.com/okian/spindle/internal/adapters/persist"
	repository "github.com/okian/spindle/internal/adapters/repository"
	"github.com/okian/spindle/internal/adapters/ws"
	"github.com/okian/spindle/internal/domain/dedupe"
	"github.com/okian/spindle/internal/domain/model"
	"github.com/okian/spindle/internal/domain/stats"
	"github.com/okian/spindle/pkg/logger"
	"github.com/okian/spindle/pkg/metrics"
)

// Service owns the ingestion pipeline: poller -> ledger -> hub and the
// serialized snapshot writer behind both stores.
type Service struct {
	mu sync.RWMutex

	// Core components
	ledger     *repository.SpinLedger
	patterns   *repository.PatternTable
	deduper    dedupe.Deduper
	gateway    persist.Gateway
	writer     *persist.Writer
	hub        *ws.Hub
	feedClient feed.Client
	poller     *feed.Poller

	// Configuration
	feedURL       string
	pollInterval  time.Duration
	fetchTimeout  time.Duration
	maxSpins      int
	maxPatterns   int
	dbPath        string
	saveQueueSize int

	// Collection counters. Reset only at process start.
	totalCollected atomic.Int64
	collectErrors  atomic.Int64
	lastCollection atomic.Pointer[time.Time]

	// Snapshot metadata carried across save cycles so created_at
	// survives restarts.
	snapCreatedAt time.Time

	// State
	started   bool
	startedAt time.Time
	cancel    context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFeedURL sets the external feed endpoint.
func WithFeedURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.feedURL = url
		}
	}
}

// WithPollInterval sets the collection tick interval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithFetchTimeout bounds one feed round trip.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithMaxSpins caps the spin ledger.
func WithMaxSpins(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSpins = n
		}
	}
}

// WithMaxPatterns caps the pattern store.
func WithMaxPatterns(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPatterns = n
		}
	}
}

// WithDBPath locates the snapshot document.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithSaveQueueSize bounds the snapshot writer request queue.
func WithSaveQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.saveQueueSize = n
		}
	}
}

// WithFeedClient injects a custom feed client, mainly for tests.
func WithFeedClient(c feed.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.feedClient = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		feedURL:       "https://blaze.bet.br/api/singleplayer-originals/originals/roulette_games/recent/1",
		pollInterval:  2 * time.Second,
		fetchTimeout:  10 * time.Second,
		maxSpins:      2000,
		maxPatterns:   5000,
		dbPath:        "database.json",
		saveQueueSize: 64,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the stores from the persisted snapshot, then
// launches the writer, the hub, and the poller.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting collector service...")

	s.deduper = dedupe.NewInMemoryDeduper()
	s.ledger = repository.NewSpinLedger(s.deduper,
		repository.WithLedgerCapacity(s.maxSpins),
	)
	s.patterns = repository.NewPatternTable(
		repository.WithPatternCapacity(s.maxPatterns),
	)
	s.gateway = persist.NewFileGateway(s.dbPath)

	snap, err := s.gateway.Load(ctx)
	if err != nil {
		return err
	}
	s.snapCreatedAt = snap.Metadata.CreatedAt
	s.ledger.Seed(ctx, snap.Spins)
	s.patterns.Seed(ctx, snap.Patterns)
	s.logger.Info(ctx, "restored snapshot",
		logger.Int("spins", s.ledger.Count(ctx)),
		logger.Int("patterns", s.patterns.Count(ctx)),
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.writer = persist.NewWriter(s.gateway, s,
		persist.WithRequestBuffer(s.saveQueueSize),
	)
	s.writer.Start(runCtx)

	s.hub = ws.NewHub()
	go s.hub.Run(runCtx)

	if s.feedClient == nil {
		s.feedClient = feed.NewHTTPClient(s.feedURL,
			feed.WithFetchTimeout(s.fetchTimeout),
		)
	}
	s.poller = feed.NewPoller(s.feedClient, s,
		feed.WithInterval(s.pollInterval),
	)
	s.poller.Start(runCtx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "collector service started",
		logger.String("feedURL", s.feedURL),
		logger.Any("pollInterval", s.pollInterval),
		logger.Int("maxSpins", s.maxSpins),
		logger.Int("maxPatterns", s.maxPatterns),
	)

	return nil
}

// Stop gracefully shuts down the service: collection halts first, then
// the writer flushes a final snapshot, then the hub closes subscribers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping collector service...")

	s.poller.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.writer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error(ctx, "final snapshot flush failed", logger.Error(err))
	}

	if s.cancel != nil {
		s.cancel()
	}

	s.started = false
	s.logger.Info(ctx, "collector service stopped")
}

// HandleResult ingests one raw feed item. Implements feed.Sink.
func (s *Service) HandleResult(ctx context.Context, raw model.FeedResult) {
	now := time.Now()
	s.lastCollection.Store(&now)

	spin := model.SpinFromFeed(raw, now)
	if !s.ledger.Insert(ctx, spin) {
		metrics.RecordSpinDuplicate()
		return
	}

	s.totalCollected.Add(1)
	metrics.RecordSpinIngested()
	s.hub.BroadcastNewSpin(spin)
	s.writer.Request()

	s.logger.Info(ctx, "new spin collected",
		logger.Int("number", spin.Number),
		logger.String("color", string(spin.Color)),
		logger.Int64("totalCollected", s.totalCollected.Load()),
	)
}

// HandleError records a failed collection tick. Implements feed.Sink.
func (s *Service) HandleError(ctx context.Context, err error) {
	now := time.Now()
	s.lastCollection.Store(&now)
	s.collectErrors.Add(1)

	if errors.Is(err, feed.ErrParse) {
		metrics.RecordParseError()
		metrics.RecordErrorByComponent("feed", "parse_failed")
	} else {
		metrics.RecordFetchError()
		metrics.RecordErrorByComponent("feed", "fetch_failed")
	}
	s.logger.Error(ctx, "feed collection failed", logger.Error(err))
}

// BuildSnapshot assembles the current persistable state. Implements
// persist.Source; called only from the writer goroutine.
func (s *Service) BuildSnapshot(ctx context.Context) *persist.Snapshot {
	snap := persist.NewSnapshot(time.Now())
	snap.Spins = s.ledger.Snapshot(ctx)
	snap.Patterns = s.patterns.Snapshot(ctx)
	snap.Metadata.CreatedAt = s.snapCreatedAt
	return snap
}

// ListSpins returns up to limit spins, newest-first.
func (s *Service) ListSpins(ctx context.Context, limit int) []model.Spin {
	return s.ledger.List(ctx, limit)
}

// LatestSpin returns the most recent spin, if any. Also serves the
// websocket handler's initial payload.
func (s *Service) LatestSpin(ctx context.Context) (model.Spin, bool) {
	return s.ledger.Latest(ctx)
}

// SpinCount returns the number of stored spins.
func (s *Service) SpinCount(ctx context.Context) int {
	return s.ledger.Count(ctx)
}

// IngestSpins canonicalizes and inserts externally submitted spins,
// broadcasting each accepted one, then persists synchronously so the
// caller learns about write failure.
func (s *Service) IngestSpins(ctx context.Context, spins []model.Spin) (inserted, total int, err error) {
	now := time.Now()
	for i := range spins {
		spins[i].Canonicalize(now)
		if s.ledger.Insert(ctx, spins[i]) {
			inserted++
			metrics.RecordSpinIngested()
			s.hub.BroadcastNewSpin(spins[i])
		} else {
			metrics.RecordSpinDuplicate()
		}
	}

	if err := s.writer.SaveNow(ctx); err != nil {
		return inserted, s.ledger.Count(ctx), err
	}
	return inserted, s.ledger.Count(ctx), nil
}

// ClearSpins empties the ledger and persists the empty state.
func (s *Service) ClearSpins(ctx context.Context) error {
	s.ledger.Clear(ctx)
	return s.writer.SaveNow(ctx)
}

// ListPatterns returns up to limit patterns, newest-first.
func (s *Service) ListPatterns(ctx context.Context, limit int) []model.Pattern {
	return s.patterns.List(ctx, limit)
}

// UpsertPatterns merges or inserts the given patterns, then persists
// synchronously.
func (s *Service) UpsertPatterns(ctx context.Context, ps []model.Pattern) (inserted, total int, err error) {
	inserted = s.patterns.UpsertBatch(ctx, ps)
	if err := s.writer.SaveNow(ctx); err != nil {
		return inserted, s.patterns.Count(ctx), err
	}
	return inserted, s.patterns.Count(ctx), nil
}

// PatternStats aggregates the pattern store by type and confidence.
func (s *Service) PatternStats(ctx context.Context) stats.PatternStats {
	return stats.AggregatePatterns(s.patterns.Snapshot(ctx), s.patterns.Capacity())
}

// ClearPatterns empties the pattern store and persists the empty state.
func (s *Service) ClearPatterns(ctx context.Context) error {
	s.patterns.Clear(ctx)
	return s.writer.SaveNow(ctx)
}

// Status reports collection state for the status endpoint.
func (s *Service) Status(ctx context.Context) model.CollectionStatus {
	s.mu.RLock()
	started := s.started
	startedAt := s.startedAt
	poller := s.poller
	s.mu.RUnlock()

	st := model.CollectionStatus{
		Running:        started && poller != nil && poller.Running(),
		TotalCollected: s.totalCollected.Load(),
		Errors:         s.collectErrors.Load(),
	}
	if last := s.lastCollection.Load(); last != nil {
		st.LastCollection = last.UTC().Format(time.RFC3339)
	}
	if started {
		st.ConnectedClients = s.hub.ClientCount()
		st.TotalSpins = s.ledger.Count(ctx)
		st.TotalPatterns = s.patterns.Count(ctx)
		st.UptimeSeconds = time.Since(startedAt).Seconds()
	}
	return st
}

// Hub exposes the websocket hub for the connection handler.
func (s *Service) Hub() *ws.Hub {
	return s.hub
}

// GetStats returns the collector's stats document for monitoring.
func (s *Service) GetStats() model.ServiceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	out := model.ServiceStats{
		Started:     s.started,
		MaxSpins:    s.maxSpins,
		MaxPatterns: s.maxPatterns,
	}

	if s.started {
		out.TotalSpins = s.ledger.Count(ctx)
		out.TotalPatterns = s.patterns.Count(ctx)
		out.DedupeSize = int(s.deduper.Size())
		out.ConnectedClients = s.hub.ClientCount()
		out.TotalCollected = s.totalCollected.Load()
		out.CollectErrors = s.collectErrors.Load()
		out.ColorDistribution = stats.ColorDistribution(s.ledger.Snapshot(ctx))
	}

	return out
}
