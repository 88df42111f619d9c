package feedsim

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/okian/spindle/internal/domain/model"
)

// Wheel layout: one white slot, seven red, seven black.
const wheelSlots = 15

// randomRoll returns a uniform wheel outcome using crypto/rand.
func randomRoll() int {
	n, _ := rand.Int(rand.Reader, big.NewInt(wheelSlots))
	return int(n.Int64())
}

// newResult produces one simulated feed item stamped with now. The
// timestamp uses millisecond precision so consecutive outcomes within
// the same second stay distinct.
func newResult(now time.Time) model.FeedResult {
	return model.FeedResult{
		Roll:      randomRoll(),
		CreatedAt: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
