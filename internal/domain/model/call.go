// Package model contains domain models passed between layers.
package model

import "strings"

// Speaker roles recognized in a transcript turn.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// Word is a single timed token produced by the transcription source.
// Start and End are offsets in seconds from the beginning of the call.
type Word struct {
	Text  string
	Start float64
	End   float64
}

// Turn is one raw transcript turn as delivered by the webhook: a speaker
// role and its ordered word timings, not yet validated.
type Turn struct {
	Role  string
	Words []Word
}

// Utterance is one continuous speaker turn after normalization. The word
// list is non-empty and its timestamps are monotonically non-decreasing.
type Utterance struct {
	Role  string
	Words []Word
}

// Text joins the utterance tokens with single spaces.
func (u Utterance) Text() string {
	parts := make([]string, len(u.Words))
	for i, w := range u.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Duration returns last word end minus first word start, in seconds.
// Normalization guarantees this is non-negative.
func (u Utterance) Duration() float64 {
	if len(u.Words) == 0 {
		return 0
	}
	return u.Words[len(u.Words)-1].End - u.Words[0].Start
}

// CallInfo carries the conversation identifiers passed through untouched
// from the webhook payload to the session summary.
type CallInfo struct {
	ConversationID string
	AgentID        string
	Status         string
	UserID         string
}

// Call is one post-call transcription delivery queued for analysis.
type Call struct {
	Info       CallInfo
	Transcript []Turn
}
