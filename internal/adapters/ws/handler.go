package ws

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/okian/spindle/internal/domain/model"
	"github.com/okian/spindle/pkg/logger"
	"github.com/okian/spindle/pkg/metrics"
)

// SnapshotProvider supplies the one-time snapshot sent on subscribe.
type SnapshotProvider interface {
	LatestSpin(ctx context.Context) (model.Spin, bool)
	SpinCount(ctx context.Context) int
}

// Handler upgrades HTTP requests into hub subscribers.
type Handler struct {
	hub      *Hub
	provider SnapshotProvider
	upgrader websocket.Upgrader
}

// NewHandler creates the /ws upgrade handler.
func NewHandler(hub *Hub, provider SnapshotProvider) *Handler {
	return &Handler{
		hub:      hub,
		provider: provider,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API is served without origin restrictions, matching
			// the open CORS policy of the HTTP surface.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP completes the handshake: upgrade, register, then queue the
// connect ack and the initial snapshot before any broadcast reaches
// this subscriber.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.RecordErrorByComponent("ws", "upgrade_failed")
		logger.Get().Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	client := newClient(h.hub, conn)

	client.send <- NewMessage(MessageTypeConnected, nil)
	client.send <- NewMessage(MessageTypeInitialData, h.initialData(r.Context()))

	if !h.enroll(client) {
		_ = conn.Close()
		return
	}
	client.start()
}

// enroll hands the subscriber to the hub's run loop. Reports false
// when the hub has already stopped and the registration would block
// forever.
func (h *Handler) enroll(client *Client) bool {
	select {
	case h.hub.register <- client:
		return true
	case <-h.hub.done:
		return false
	}
}

func (h *Handler) initialData(ctx context.Context) InitialData {
	data := InitialData{
		TotalSpins: h.provider.SpinCount(ctx),
	}
	if latest, ok := h.provider.LatestSpin(ctx); ok {
		data.LastSpin = &latest
	}
	return data
}
