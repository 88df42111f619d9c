// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// FeedURL is the external result feed endpoint polled for spins.
	FeedURL string `koanf:"feed_url"`

	// PollIntervalMS is the collection tick interval in milliseconds.
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// FetchTimeoutMS bounds one feed round trip in milliseconds.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// MaxSpins caps the spin ledger.
	MaxSpins int `koanf:"max_spins"`

	// MaxPatterns caps the pattern store.
	MaxPatterns int `koanf:"max_patterns"`

	// DBPath locates the snapshot document on disk.
	DBPath string `koanf:"db_path"`

	// SaveQueueSize bounds the snapshot writer request queue.
	SaveQueueSize int `koanf:"save_queue_size"`
}

// New creates a Config with defaults matching the upstream deployment.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":3000",
		FeedURL:        "https://blaze.bet.br/api/singleplayer-originals/originals/roulette_games/recent/1",
		PollIntervalMS: 2000,
		FetchTimeoutMS: 10_000,
		MaxSpins:       2000,
		MaxPatterns:    5000,
		DBPath:         "database.json",
		SaveQueueSize:  64,
	}
}
