package ws

import (
	"context"
	"sync"

	"github.com/okian/spindle/internal/domain/model"
	"github.com/okian/spindle/pkg/logger"
	"github.com/okian/spindle/pkg/metrics"
)

// broadcastBuffer bounds pending fan-out work before messages drop.
const broadcastBuffer = 256

// Hub owns the set of live subscribers and fans events out to them.
// A subscriber never outlives its connection: the hub creates it on
// register and destroys it on disconnect, send failure, or shutdown.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu     sync.RWMutex
	logger logger.Logger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes lifecycle and broadcast events until ctx is canceled,
// then closes every subscriber channel gracefully. The done channel
// closes when the loop exits, so late registrations cannot block on a
// loop that is no longer draining them.
func (h *Hub) Run(ctx context.Context) {
	if h.logger == nil {
		h.logger = logger.Get().Named("hub")
	}
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll(ctx)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			metrics.UpdateWSClients(total)
			h.logger.Info(ctx, "subscriber connected", logger.Int("total", total))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			metrics.UpdateWSClients(total)
			h.logger.Info(ctx, "subscriber disconnected", logger.Int("total", total))

		case msg := <-h.broadcast:
			h.fanOut(ctx, msg)
		}
	}
}

// fanOut attempts delivery to every open subscriber. A failed send
// removes only that subscriber; delivery to the rest is unaffected.
func (h *Hub) fanOut(ctx context.Context, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var failed []*Client
	for client := range h.clients {
		select {
		case client.send <- msg:
			metrics.RecordWSMessageSent()
		default:
			failed = append(failed, client)
		}
	}

	for _, client := range failed {
		close(client.send)
		delete(h.clients, client)
		metrics.RecordWSSendFailure()
		h.logger.Warn(ctx, "dropping slow subscriber",
			logger.String("messageType", msg.Type),
		)
	}
	if len(failed) > 0 {
		metrics.UpdateWSClients(len(h.clients))
	}
}

// closeAll shuts every subscriber channel during hub teardown.
func (h *Hub) closeAll(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.UpdateWSClients(0)
	h.logger.Info(ctx, "closed all subscribers")
}

// Broadcast queues a message for fan-out. Non-blocking: when the
// broadcast buffer is full the message is dropped rather than stalling
// the ingestion path.
func (h *Hub) Broadcast(msgType string, data any) {
	msg := NewMessage(msgType, data)
	select {
	case h.broadcast <- msg:
	default:
		logger.Get().Warn(context.Background(), "broadcast buffer full, dropping message",
			logger.String("messageType", msgType),
		)
	}
}

// BroadcastNewSpin pushes a freshly ingested spin to all subscribers.
func (h *Hub) BroadcastNewSpin(s model.Spin) {
	h.Broadcast(MessageTypeNewSpin, s)
}

// ClientCount returns the number of open subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
