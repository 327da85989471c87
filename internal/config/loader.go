package config

import (
	"context"
	"fmt"
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
//  2. file (YAML) if SPEECHWELL_CONFIG is set
//  3. env (prefix SPEECHWELL_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SPEECHWELL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SPEECHWELL_ADDR, SPEECHWELL_QUEUE_SIZE, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("SPEECHWELL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "speechwell_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// The SPEECHWELL_CONFIG path itself is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the engine cannot run with.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PauseGapSeconds <= 0:
		return fmt.Errorf("%w: pause_gap_seconds must be positive", ErrInvalidConfig)
	case c.SlowSpeechWPM <= 0:
		return fmt.Errorf("%w: slow_speech_wpm must be positive", ErrInvalidConfig)
	case c.DensityFloor <= 0:
		return fmt.Errorf("%w: density_floor must be positive", ErrInvalidConfig)
	case c.MinWordCount < 1:
		return fmt.Errorf("%w: min_word_count must be at least 1", ErrInvalidConfig)
	case c.PauseRatio < 0 || c.SessionPauseRate < 0:
		return fmt.Errorf("%w: pause ratios must not be negative", ErrInvalidConfig)
	case c.SignatureToleranceMinutes < 1:
		return fmt.Errorf("%w: signature_tolerance_minutes must be at least 1", ErrInvalidConfig)
	}
	return nil
}
