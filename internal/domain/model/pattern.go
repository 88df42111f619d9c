package model

import (
	"encoding/json"
	"time"
)

// Pattern is a derived predictive signature with cumulative
// performance counters, distinct from raw spins.
type Pattern struct {
	ID           string          `json:"id"`
	Pattern      json.RawMessage `json:"pattern"` // opaque structural signature
	ExpectedNext string          `json:"expected_next"`
	Type         string          `json:"type,omitempty"`
	Confidence   float64         `json:"confidence"`
	Occurrences  int             `json:"occurrences"`
	TotalWins    int             `json:"total_wins"`
	TotalLosses  int             `json:"total_losses"`
	FoundAt      time.Time       `json:"found_at"`
}

// StructuralKey identifies a pattern by shape. Two patterns with the
// same signature bytes and expected-next merge even under different IDs.
func (p Pattern) StructuralKey() string {
	return string(p.Pattern) + "\x00" + p.ExpectedNext
}

// MergeFrom folds an incoming resubmission into p.
// Counters are monotonic: wins and losses add, occurrences take the
// max of the two operands. FoundAt never changes after first insert.
// All other fields are overwritten by the incoming value.
func (p *Pattern) MergeFrom(in Pattern) {
	foundAt := p.FoundAt
	wins := p.TotalWins + in.TotalWins
	losses := p.TotalLosses + in.TotalLosses
	occurrences := max(p.Occurrences, in.Occurrences)

	keep := p.ID
	*p = in
	if p.ID == "" {
		p.ID = keep
	}
	p.FoundAt = foundAt
	p.TotalWins = wins
	p.TotalLosses = losses
	p.Occurrences = occurrences
}
