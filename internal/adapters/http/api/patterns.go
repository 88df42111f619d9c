// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/okian/spindle/internal/domain/model"
	"github.com/okian/spindle/internal/domain/stats"
)

// PatternDependencies defines the interface for pattern store operations.
type PatternDependencies interface {
	ListPatterns(ctx context.Context, limit int) []model.Pattern
	UpsertPatterns(ctx context.Context, ps []model.Pattern) (inserted, total int, err error)
	PatternStats(ctx context.Context) stats.PatternStats
	ClearPatterns(ctx context.Context) error
}

// PatternsHandler handles pattern store requests.
type PatternsHandler struct {
	deps PatternDependencies
}

// NewPatternsHandler creates a new patterns handler.
func NewPatternsHandler(deps PatternDependencies) *PatternsHandler {
	return &PatternsHandler{deps: deps}
}

// HandlePatterns dispatches /patterns by method: GET lists, POST
// upserts, DELETE clears.
func (h *PatternsHandler) HandlePatterns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleList handles GET /patterns?limit=N requests.
func (h *PatternsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_patterns"

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	patterns := h.deps.ListPatterns(r.Context(), limit)
	if patterns == nil {
		patterns = []model.Pattern{}
	}
	if limit == 0 {
		limit = len(patterns)
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Total: len(patterns), Limit: limit, Data: patterns})
}

// handlePost handles POST /patterns requests. The body may be a single
// pattern object or an array of them. Matching entries merge instead
// of duplicating, so re-submitting a batch is safe.
func (h *PatternsHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_patterns"

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	patterns, err := decodePatterns(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	for _, p := range patterns {
		if len(p.Pattern) == 0 {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, errors.New("missing pattern body")))
			return
		}
	}

	inserted, total, err := h.deps.UpsertPatterns(r.Context(), patterns)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "persist_failed", WrapKind(op, ErrPersist, err))
		return
	}
	writeJSON(w, http.StatusOK, patternMutationResponse{Success: true, Inserted: inserted, TotalPatterns: total})
}

// handleDelete handles DELETE /patterns requests.
func (h *PatternsHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_patterns"

	if err := h.deps.ClearPatterns(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "persist_failed", WrapKind(op, ErrPersist, err))
		return
	}
	writeJSON(w, http.StatusOK, patternMutationResponse{Success: true})
}

// HandleStats handles GET /patterns/stats requests.
func (h *PatternsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.PatternStats(r.Context()))
}

// decodePatterns accepts either a JSON array of patterns or a single
// object, mirroring the spin ingestion body.
func decodePatterns(body []byte) ([]model.Pattern, error) {
	var patterns []model.Pattern
	if err := json.Unmarshal(body, &patterns); err == nil {
		return patterns, nil
	}

	var one model.Pattern
	if err := json.Unmarshal(body, &one); err != nil {
		return nil, errors.New("body must be a pattern object or an array of patterns")
	}
	return []model.Pattern{one}, nil
}
