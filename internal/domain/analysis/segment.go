package analysis

import (
	"fmt"

	"github.com/speechwell/speechwell/internal/domain/model"
)

const secondsPerMinute = 60.0

// SegmentMetrics is the timing profile of one user utterance.
type SegmentMetrics struct {
	Text            string    `json:"text"`
	DurationSeconds float64   `json:"duration_seconds"`
	WordCount       int       `json:"word_count"`
	SpeechRateWPM   Metric    `json:"speech_rate_wpm"`
	PauseCount      int       `json:"pause_count"`
	PauseDurations  []float64 `json:"pause_durations"`
	SpeechDensity   Metric    `json:"speech_density"`
}

// Analyzer runs the metric, classification and aggregation pipeline over
// normalized utterances. It holds only the threshold configuration and is
// safe for concurrent use.
type Analyzer struct {
	thresholds Thresholds
}

// New creates an Analyzer with the default clinical thresholds.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Thresholds returns the analyzer's active threshold set.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// Segment computes the timing metrics for one user utterance. The utterance
// must come from the normalizer; a negative duration at this point is a
// programmer error and panics rather than being masked.
func (a *Analyzer) Segment(u model.Utterance) SegmentMetrics {
	duration := u.Duration()
	if duration < 0 {
		panic(fmt.Sprintf("analysis: negative segment duration %.3f after normalization", duration))
	}

	m := SegmentMetrics{
		Text:            u.Text(),
		DurationSeconds: duration,
		WordCount:       len(u.Words),
		PauseDurations:  []float64{},
		SpeechRateWPM:   NotApplicable(),
		SpeechDensity:   NotApplicable(),
	}

	if duration > 0 {
		m.SpeechRateWPM = Applicable(float64(m.WordCount) / duration * secondsPerMinute)
	}

	pausedTotal := 0.0
	for i := 1; i < len(u.Words); i++ {
		gap := u.Words[i].Start - u.Words[i-1].End
		if gap > a.thresholds.PauseGapSeconds {
			m.PauseCount++
			m.PauseDurations = append(m.PauseDurations, gap)
			pausedTotal += gap
		}
	}

	// Words per second of actively-spoken time. Guard the denominator: a
	// single word with zero duration, or pauses consuming the whole
	// segment, leave no spoken time to divide by.
	if spoken := duration - pausedTotal; spoken > 0 {
		m.SpeechDensity = Applicable(float64(m.WordCount) / spoken)
	}

	return m
}
