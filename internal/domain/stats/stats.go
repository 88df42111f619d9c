// Package stats computes read-only aggregations over store snapshots.
// Everything here is a pure function; callers pass copies obtained
// from the repositories.
package stats

import (
	"strconv"

	"github.com/okian/spindle/internal/domain/model"
)

// Confidence band thresholds.
const (
	highConfidence   = 80
	mediumConfidence = 60
)

const unknownType = "unknown"

// ConfidenceBands groups pattern counts by confidence score.
type ConfidenceBands struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// PatternStats summarizes the pattern store.
type PatternStats struct {
	Total        int             `json:"total"`
	Limit        int             `json:"limit"`
	Percentage   string          `json:"percentage"`
	ByType       map[string]int  `json:"byType"`
	ByConfidence ConfidenceBands `json:"byConfidence"`
}

// AggregatePatterns counts patterns by type and by confidence band:
// >= 80 high, >= 60 medium, else low.
func AggregatePatterns(patterns []model.Pattern, capacity int) PatternStats {
	s := PatternStats{
		Total:  len(patterns),
		Limit:  capacity,
		ByType: make(map[string]int),
	}

	for _, p := range patterns {
		t := p.Type
		if t == "" {
			t = unknownType
		}
		s.ByType[t]++

		switch {
		case p.Confidence >= highConfidence:
			s.ByConfidence.High++
		case p.Confidence >= mediumConfidence:
			s.ByConfidence.Medium++
		default:
			s.ByConfidence.Low++
		}
	}

	pct := 0.0
	if capacity > 0 {
		pct = float64(len(patterns)) / float64(capacity) * 100
	}
	s.Percentage = strconv.FormatFloat(pct, 'f', 1, 64)
	return s
}

// ColorDistribution counts spins per color.
func ColorDistribution(spins []model.Spin) map[model.Color]int {
	dist := make(map[model.Color]int, 4)
	for _, s := range spins {
		dist[s.Color]++
	}
	return dist
}
