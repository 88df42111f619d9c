// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/spindle/internal/domain/model"
	"github.com/okian/spindle/internal/domain/stats"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Spin ledger operations.
	ListSpins(ctx context.Context, limit int) []model.Spin
	LatestSpin(ctx context.Context) (model.Spin, bool)
	IngestSpins(ctx context.Context, spins []model.Spin) (inserted, total int, err error)
	ClearSpins(ctx context.Context) error

	// Pattern store operations.
	ListPatterns(ctx context.Context, limit int) []model.Pattern
	UpsertPatterns(ctx context.Context, ps []model.Pattern) (inserted, total int, err error)
	PatternStats(ctx context.Context) stats.PatternStats
	ClearPatterns(ctx context.Context) error

	// Monitoring.
	Status(ctx context.Context) model.CollectionStatus
	GetStats() model.ServiceStats
}

// Server wires HTTP routes for the business API.
type Server struct {
	spinsHandler     *SpinsHandler
	patternsHandler  *PatternsHandler
	statusHandler    *StatusHandler
	rootHandler      *RootHandler
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		spinsHandler:     NewSpinsHandler(deps),
		patternsHandler:  NewPatternsHandler(deps),
		statusHandler:    NewStatusHandler(deps),
		rootHandler:      NewRootHandler(),
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		dashboardHandler: newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
	mux.HandleFunc("/spins/latest", MetricsMiddleware(s.spinsHandler.HandleLatest, "spins_latest"))
	mux.HandleFunc("/spins", MetricsMiddleware(s.spinsHandler.HandleSpins, "spins"))
	mux.HandleFunc("/patterns/stats", MetricsMiddleware(s.patternsHandler.HandleStats, "patterns_stats"))
	mux.HandleFunc("/patterns", MetricsMiddleware(s.patternsHandler.HandlePatterns, "patterns"))
	mux.HandleFunc("/", s.rootHandler.HandleRoot)
}

// listResponse wraps a page of either store in the common list
// envelope.
type listResponse struct {
	Success bool `json:"success"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Data    any  `json:"data"`
}

// latestSpinResponse carries the newest spin; data is null when the
// ledger is empty.
type latestSpinResponse struct {
	Success bool        `json:"success"`
	Data    *model.Spin `json:"data"`
}

// spinMutationResponse acknowledges a write against the spin ledger.
type spinMutationResponse struct {
	Success    bool `json:"success"`
	Inserted   int  `json:"inserted"`
	TotalSpins int  `json:"totalSpins"`
}

// patternMutationResponse acknowledges a write against the pattern
// store.
type patternMutationResponse struct {
	Success       bool `json:"success"`
	Inserted      int  `json:"inserted"`
	TotalPatterns int  `json:"totalPatterns"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
