// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file/env on top.
// - External errors must be wrapped via this package's sentinel kinds.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// WebhookSecret is the shared HMAC secret for webhook signature
	// verification. Empty disables verification (local testing only).
	WebhookSecret string `koanf:"webhook_secret"`

	// SignatureToleranceMinutes rejects deliveries whose signature
	// timestamp is older than this.
	SignatureToleranceMinutes int `koanf:"signature_tolerance_minutes"`

	// QueueSize bounds the in-memory analysis queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the delivery deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// StoreSize bounds the in-memory assessment store.
	StoreSize int `koanf:"store_size"`

	// MaxAssessmentLimit caps GET /assessments?limit.
	MaxAssessmentLimit int `koanf:"max_assessment_limit"`

	// Clinical thresholds for the analysis engine.
	PauseGapSeconds  float64 `koanf:"pause_gap_seconds"`
	SlowSpeechWPM    float64 `koanf:"slow_speech_wpm"`
	MinPauses        int     `koanf:"min_pauses"`
	PauseRatio       float64 `koanf:"pause_ratio"`
	DensityFloor     float64 `koanf:"density_floor"`
	MinWordCount     int     `koanf:"min_word_count"`
	SessionPauseRate float64 `koanf:"session_pause_rate"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                  "info",
		Addr:                      ":8000",
		WebhookSecret:             "",
		SignatureToleranceMinutes: 30,
		QueueSize:                 10_000,
		WorkerCount:               runtime.NumCPU() * 2,
		DedupeSize:                50_000,
		StoreSize:                 10_000,
		MaxAssessmentLimit:        100,
		PauseGapSeconds:           0.5,
		SlowSpeechWPM:             100,
		MinPauses:                 2,
		PauseRatio:                0.2,
		DensityFloor:              1.5,
		MinWordCount:              3,
		SessionPauseRate:          0.1,
	}
}
