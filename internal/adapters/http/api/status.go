// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/spindle/internal/domain/model"
)

// StatusDependencies defines the interface for collection monitoring.
type StatusDependencies interface {
	Status(ctx context.Context) model.CollectionStatus
}

// StatusHandler handles collection status requests.
type StatusHandler struct {
	deps StatusDependencies
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps StatusDependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

// HandleStatus handles GET /status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Status(r.Context()))
}

// serviceInfo is the discovery document served at the root path.
type serviceInfo struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// RootHandler serves the service discovery document.
type RootHandler struct{}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / requests. Any other path under / is a 404,
// keeping the catch-all route honest.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, serviceInfo{
		Service: "spindle",
		Version: "1.0",
		Endpoints: map[string]string{
			"spins":         "GET/POST/DELETE /spins",
			"latest":        "GET /spins/latest",
			"patterns":      "GET/POST/DELETE /patterns",
			"patternStats":  "GET /patterns/stats",
			"status":        "GET /status",
			"stats":         "GET /stats",
			"metrics":       "GET /healthz",
			"dashboard":     "GET /dashboard",
			"documentation": "GET /api-docs",
			"websocket":     "GET /ws",
		},
	})
}
