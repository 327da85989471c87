package analysis

import (
	"github.com/speechwell/speechwell/internal/domain/model"
)

// Clinical assessment messages emitted at session level.
const (
	AssessmentSlowSpeechRate = "speech rate below normal range"
	AssessmentHighPauseRate  = "high pause frequency detected"
)

// SegmentResult pairs one segment's metrics with its indicator set.
type SegmentResult struct {
	Metrics    SegmentMetrics `json:"metrics"`
	Indicators []Indicator    `json:"indicators"`
}

// SessionSummary is the session-level assessment for one analyzed call.
// It is constructed once per call and never mutated afterwards.
type SessionSummary struct {
	ConversationID string `json:"conversation_id"`
	AgentID        string `json:"agent_id"`
	Status         string `json:"status"`
	UserID         string `json:"user_id,omitempty"`

	TotalSpeakingTimeSeconds float64 `json:"total_speaking_time_seconds"`
	TotalWords               int     `json:"total_words"`
	OverallSpeechRateWPM     Metric  `json:"overall_speech_rate_wpm"`
	TotalPauses              int     `json:"total_pauses"`
	PauseRate                Metric  `json:"pause_rate"`

	Segments    []SegmentResult `json:"segments"`
	Assessments []string        `json:"assessments"`
}

// Session runs the full metric, classification and aggregation pipeline
// over the user utterances of one call. Zero user utterances yields a
// summary with zero totals, not-applicable rates and empty lists.
func (a *Analyzer) Session(info model.CallInfo, user []model.Utterance) SessionSummary {
	s := SessionSummary{
		ConversationID:       info.ConversationID,
		AgentID:              info.AgentID,
		Status:               info.Status,
		UserID:               info.UserID,
		OverallSpeechRateWPM: NotApplicable(),
		PauseRate:            NotApplicable(),
		Segments:             []SegmentResult{},
		Assessments:          []string{},
	}

	for _, u := range user {
		m := a.Segment(u)
		s.Segments = append(s.Segments, SegmentResult{
			Metrics:    m,
			Indicators: a.Classify(m),
		})
		s.TotalSpeakingTimeSeconds += m.DurationSeconds
		s.TotalWords += m.WordCount
		s.TotalPauses += m.PauseCount
	}

	if s.TotalSpeakingTimeSeconds > 0 {
		s.OverallSpeechRateWPM = Applicable(float64(s.TotalWords) / s.TotalSpeakingTimeSeconds * secondsPerMinute)
	}
	if s.TotalWords > 0 {
		s.PauseRate = Applicable(float64(s.TotalPauses) / float64(s.TotalWords))
	}

	// Session-level analogues of the per-segment rules, sharing the same
	// threshold primitive. Only abnormal findings go in the list.
	if s.OverallSpeechRateWPM.Below(a.thresholds.SlowSpeechWPM) {
		s.Assessments = append(s.Assessments, AssessmentSlowSpeechRate)
	}
	if s.PauseRate.Above(a.thresholds.SessionPauseRate) {
		s.Assessments = append(s.Assessments, AssessmentHighPauseRate)
	}

	return s
}
