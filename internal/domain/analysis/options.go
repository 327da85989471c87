// Package analysis computes speech timing metrics and dysarthria
// indicators from normalized utterances.
package analysis

// Default clinical thresholds. Chosen for coarse screening, not diagnosis;
// all of them are overridable through options so the classifier can be
// re-tuned against other clinical threshold sets.
const (
	defaultPauseGapSeconds  = 0.5
	defaultSlowSpeechWPM    = 100.0
	defaultMinPauses        = 2
	defaultPauseRatio       = 0.2
	defaultDensityFloor     = 1.5
	defaultMinWordCount     = 3
	defaultSessionPauseRate = 0.1
)

// Thresholds holds every clinical cutoff the engine classifies against.
type Thresholds struct {
	// PauseGapSeconds is the minimum inter-word gap counted as a pause.
	PauseGapSeconds float64

	// SlowSpeechWPM is the speech rate floor; rates below it flag slow_speech.
	SlowSpeechWPM float64

	// MinPauses and PauseRatio together gate many_pauses: at least MinPauses
	// pauses and a pause-per-word ratio above PauseRatio.
	MinPauses  int
	PauseRatio float64

	// DensityFloor is the words-per-second-of-speech floor for low_density.
	DensityFloor float64

	// MinWordCount flags short_utterance below it.
	MinWordCount int

	// SessionPauseRate is the session-level pauses-per-word cutoff for the
	// high-pause-frequency assessment message.
	SessionPauseRate float64
}

// DefaultThresholds returns the default clinical threshold set.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PauseGapSeconds:  defaultPauseGapSeconds,
		SlowSpeechWPM:    defaultSlowSpeechWPM,
		MinPauses:        defaultMinPauses,
		PauseRatio:       defaultPauseRatio,
		DensityFloor:     defaultDensityFloor,
		MinWordCount:     defaultMinWordCount,
		SessionPauseRate: defaultSessionPauseRate,
	}
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithThresholds replaces the whole clinical threshold set.
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = t
	}
}

// WithPauseGap sets the pause detection gap in seconds.
func WithPauseGap(seconds float64) Option {
	return func(a *Analyzer) {
		if seconds > 0 {
			a.thresholds.PauseGapSeconds = seconds
		}
	}
}
