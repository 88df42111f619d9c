// Package feedsim serves a fake result feed with the same wire shape
// as the upstream endpoint, for local development and load testing.
package feedsim

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/okian/spindle/internal/domain/model"
	"github.com/okian/spindle/pkg/logger"
)

// Server rotates a simulated outcome on a fixed interval and serves it
// as a one-element JSON array, mirroring the upstream recent-results
// endpoint.
type Server struct {
	cfg *Config

	mu      sync.RWMutex
	current model.FeedResult

	logger logger.Logger
}

// NewServer creates a simulator from cfg.
func NewServer(cfg *Config) *Server {
	if cfg == nil {
		cfg = NewConfig()
	}
	s := &Server{cfg: cfg}
	s.current = newResult(time.Now())
	return s
}

// Handler returns the simulator's HTTP routes. Any GET path answers
// with the current outcome, so the collector's configured feed URL
// path does not matter.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		s.mu.RLock()
		current := s.current
		s.mu.RUnlock()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode([]model.FeedResult{current})
	})
	return mux
}

// Run rotates outcomes and serves HTTP until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	if s.logger == nil {
		s.logger = logger.Get().Named("feedsim")
	}

	go s.rotate(ctx)

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "simulated feed listening",
		logger.String("addr", s.cfg.Addr),
		logger.Any("interval", s.cfg.Interval),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// rotate replaces the current outcome every interval.
func (s *Server) rotate(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			next := newResult(now)
			s.mu.Lock()
			s.current = next
			s.mu.Unlock()

			s.logger.Debug(ctx, "rotated outcome",
				logger.Int("roll", next.Roll),
				logger.String("createdAt", next.CreatedAt),
			)
		}
	}
}
