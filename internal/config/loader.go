package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SPINDLE_CONFIG is set
//  3. env (prefix SPINDLE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SPINDLE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: SPINDLE_ADDR, SPINDLE_MAX_SPINS, ...
	// Map env keys like SPINDLE_MAX_SPINS -> max_spins (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SPINDLE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "spindle_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.FeedURL == "" {
		return nil, errors.New("feed_url must not be empty")
	}
	if cfg.MaxSpins <= 0 || cfg.MaxPatterns <= 0 {
		return nil, errors.New("store capacities must be positive")
	}
	return &cfg, nil
}
