package feedsim

import "time"

// Default configuration constants.
const (
	defaultAddr     = ":9091"
	defaultInterval = 2 * time.Second
)

// Config controls the simulated feed.
type Config struct {
	// Addr is the listen address for the fake feed endpoint.
	Addr string

	// Interval is how often a new outcome replaces the current one.
	Interval time.Duration
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Addr:     defaultAddr,
		Interval: defaultInterval,
	}
}
