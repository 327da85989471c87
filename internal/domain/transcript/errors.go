package transcript

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrMalformedTranscript covers every shape of invalid timing data:
	// empty turns, missing or unknown speaker roles, and timestamps that
	// run backwards within a turn.
	ErrMalformedTranscript = errors.New("malformed transcript")
)
