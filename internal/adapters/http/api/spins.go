// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/spindle/internal/domain/model"
)

// SpinDependencies defines the interface for spin ledger operations.
type SpinDependencies interface {
	ListSpins(ctx context.Context, limit int) []model.Spin
	LatestSpin(ctx context.Context) (model.Spin, bool)
	IngestSpins(ctx context.Context, spins []model.Spin) (inserted, total int, err error)
	ClearSpins(ctx context.Context) error
}

// SpinsHandler handles spin ledger requests.
type SpinsHandler struct {
	deps SpinDependencies
}

// NewSpinsHandler creates a new spins handler.
func NewSpinsHandler(deps SpinDependencies) *SpinsHandler {
	return &SpinsHandler{deps: deps}
}

// HandleSpins dispatches /spins by method: GET lists, POST ingests,
// DELETE clears.
func (h *SpinsHandler) HandleSpins(w http.ResponseWriter, r *http.Request) {
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

// handleList handles GET /spins?limit=N requests. Without a limit the
// whole ledger is returned, newest-first.
func (h *SpinsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_spins"

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	spins := h.deps.ListSpins(r.Context(), limit)
	if spins == nil {
		spins = []model.Spin{}
	}
	if limit == 0 {
		limit = len(spins)
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Total: len(spins), Limit: limit, Data: spins})
}

// HandleLatest handles GET /spins/latest requests. An empty ledger is
// not an error: the reply carries a null spin.
func (h *SpinsHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	var data *model.Spin
	if spin, ok := h.deps.LatestSpin(r.Context()); ok {
		data = &spin
	}
	writeJSON(w, http.StatusOK, latestSpinResponse{Success: true, Data: data})
}

// handlePost handles POST /spins requests. The body may be a single
// spin object or an array of them.
func (h *SpinsHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_spins"

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	spins, err := decodeSpins(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	for _, s := range spins {
		if err := validateSpin(s); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
	}

	inserted, total, err := h.deps.IngestSpins(r.Context(), spins)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "persist_failed", WrapKind(op, ErrPersist, err))
		return
	}
	writeJSON(w, http.StatusOK, spinMutationResponse{Success: true, Inserted: inserted, TotalSpins: total})
}

// handleDelete handles DELETE /spins requests.
func (h *SpinsHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_spins"

	if err := h.deps.ClearSpins(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "persist_failed", WrapKind(op, ErrPersist, err))
		return
	}
	writeJSON(w, http.StatusOK, spinMutationResponse{Success: true})
}

// decodeSpins accepts either a JSON array of spins or a single object.
func decodeSpins(body []byte) ([]model.Spin, error) {
	var spins []model.Spin
	if err := json.Unmarshal(body, &spins); err == nil {
		return spins, nil
	}

	var one model.Spin
	if err := json.Unmarshal(body, &one); err != nil {
		return nil, errors.New("body must be a spin object or an array of spins")
	}
	return []model.Spin{one}, nil
}

// validateSpin checks the fields the server cannot derive. The color is
// never validated here because ingestion always recomputes it.
func validateSpin(s model.Spin) error {
	if strings.TrimSpace(s.Timestamp) == "" && strings.TrimSpace(s.ID) == "" {
		return errors.New("missing timestamp")
	}
	return nil
}
