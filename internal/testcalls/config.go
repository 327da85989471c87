// Package testcalls generates synthetic post-call transcription deliveries
// and drives them through a running service for end-to-end verification.
package testcalls

import "time"

// Config controls a test-call run.
type Config struct {
	// BaseURL of the running service, e.g. "http://localhost:8000".
	BaseURL string

	// NumCalls is how many synthetic conversations to deliver.
	NumCalls int

	// Concurrency bounds the number of in-flight webhook posts.
	Concurrency int

	// WebhookSecret signs deliveries; empty sends unsigned requests.
	WebhookSecret string

	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration

	// VerifyWait is how long to wait for async analysis before fetching
	// assessments back.
	VerifyWait time.Duration
}

// DefaultConfig returns a runnable local-testing configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "http://localhost:8000",
		NumCalls:       20,
		Concurrency:    4,
		RequestTimeout: 10 * time.Second,
		VerifyWait:     2 * time.Second,
	}
}
