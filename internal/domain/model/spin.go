// Package model contains domain records passed between layers.
package model

import "time"

// Color classifies a roulette outcome. It is always derived from the
// numeric result and never settable independently.
type Color string

// Known colors.
const (
	ColorWhite   Color = "white"
	ColorRed     Color = "red"
	ColorBlack   Color = "black"
	ColorUnknown Color = "unknown"
)

// Wheel domain boundaries for the upstream game.
const (
	redMin   = 1
	redMax   = 7
	blackMin = 8
	blackMax = 14
)

// Origin tags recorded on ingested spins.
const (
	SourceServer = "server" // collected by the poller
	SourceClient = "client" // submitted through POST /spins
)

// Spin is one discrete outcome event from the feed.
// The JSON shape doubles as the persisted and API wire shape.
type Spin struct {
	ID          string    `json:"id"`
	Number      int       `json:"number"`
	Color       Color     `json:"color"`
	Timestamp   string    `json:"timestamp"` // source-side creation time, kept verbatim
	CollectedAt time.Time `json:"collected_at"`
	CollectedBy string    `json:"collected_by"`
}

// ColorFromNumber maps a numeric result to its color. Total over all
// ints; out-of-domain values classify as unknown and are still ingested.
func ColorFromNumber(n int) Color {
	switch {
	case n == 0:
		return ColorWhite
	case n >= redMin && n <= redMax:
		return ColorRed
	case n >= blackMin && n <= blackMax:
		return ColorBlack
	default:
		return ColorUnknown
	}
}

// SpinID derives the record identifier from the source timestamp so
// that re-fetching the same upstream event is idempotent.
func SpinID(sourceTS string) string {
	return "spin_" + sourceTS
}

// FeedResult is the raw item shape returned by the external feed.
type FeedResult struct {
	Roll      int    `json:"roll"`
	CreatedAt string `json:"created_at"`
}

// SpinFromFeed normalizes a raw feed item into a canonical spin.
func SpinFromFeed(raw FeedResult, now time.Time) Spin {
	return Spin{
		ID:          SpinID(raw.CreatedAt),
		Number:      raw.Roll,
		Color:       ColorFromNumber(raw.Roll),
		Timestamp:   raw.CreatedAt,
		CollectedAt: now.UTC(),
		CollectedBy: SourceServer,
	}
}

// Canonicalize fills derived fields on an externally submitted spin:
// the identifier comes from the source timestamp when absent and the
// color is always recomputed from the number.
func (s *Spin) Canonicalize(now time.Time) {
	if s.ID == "" {
		s.ID = SpinID(s.Timestamp)
	}
	s.Color = ColorFromNumber(s.Number)
	if s.CollectedAt.IsZero() {
		s.CollectedAt = now.UTC()
	}
	if s.CollectedBy == "" {
		s.CollectedBy = SourceClient
	}
}
