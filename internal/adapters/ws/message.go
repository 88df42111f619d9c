// Package ws implements the live push channel: a hub fanning spin
// events out to WebSocket subscribers with per-subscriber isolation.
package ws

import (
	"time"

	"github.com/okian/spindle/internal/domain/model"
)

// Message types pushed to subscribers.
const (
	MessageTypeConnected   = "connected"
	MessageTypeInitialData = "initial_data"
	MessageTypeNewSpin     = "new_spin"
	MessageTypePing        = "ping"
)

// Message is one frame on the push channel. Every message carries a
// delivery timestamp.
type Message struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NewMessage stamps a message with the current delivery time.
func NewMessage(msgType string, data any) Message {
	return Message{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// InitialData is the one-time snapshot sent after the connect ack.
type InitialData struct {
	LastSpin   *model.Spin `json:"lastSpin"`
	TotalSpins int         `json:"totalSpins"`
}
