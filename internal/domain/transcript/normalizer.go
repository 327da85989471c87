// Package transcript validates raw webhook transcript turns and reshapes
// them into speaker-attributed utterances. It performs no analysis.
package transcript

import (
	"fmt"

	"github.com/speechwell/speechwell/internal/domain/model"
)

// Normalize validates the ordered turn list and returns the utterances for
// every recognized role, preserving turn order. It fails with
// ErrMalformedTranscript when a turn has no word timestamps, a timestamp
// sequence runs backwards, or the speaker role is missing or unrecognized.
func Normalize(turns []model.Turn) ([]model.Utterance, error) {
	utts := make([]model.Utterance, 0, len(turns))
	for i, t := range turns {
		if err := validateTurn(i, t); err != nil {
			return nil, err
		}
		words := make([]model.Word, len(t.Words))
		copy(words, t.Words)
		utts = append(utts, model.Utterance{Role: t.Role, Words: words})
	}
	return utts, nil
}

// UserUtterances filters a normalized utterance sequence down to the
// user's turns, preserving order.
func UserUtterances(utts []model.Utterance) []model.Utterance {
	user := make([]model.Utterance, 0, len(utts))
	for _, u := range utts {
		if u.Role == model.RoleUser {
			user = append(user, u)
		}
	}
	return user
}

// validateTurn checks one turn's role and word timing invariants. Within a
// turn the sequence start0 <= end0 <= start1 <= end1 ... must be
// non-decreasing, which makes every inter-word gap and the turn duration
// non-negative.
func validateTurn(index int, t model.Turn) error {
	switch t.Role {
	case model.RoleUser, model.RoleAgent:
	case "":
		return fmt.Errorf("%w: turn %d has no speaker role", ErrMalformedTranscript, index)
	default:
		return fmt.Errorf("%w: turn %d has unrecognized role %q", ErrMalformedTranscript, index, t.Role)
	}

	if len(t.Words) == 0 {
		return fmt.Errorf("%w: turn %d has no word timestamps", ErrMalformedTranscript, index)
	}

	prevEnd := 0.0
	for j, w := range t.Words {
		if w.Start < 0 {
			return fmt.Errorf("%w: turn %d word %d has negative start %.3f", ErrMalformedTranscript, index, j, w.Start)
		}
		if w.End < w.Start {
			return fmt.Errorf("%w: turn %d word %d ends at %.3f before it starts at %.3f", ErrMalformedTranscript, index, j, w.End, w.Start)
		}
		if j > 0 && w.Start < prevEnd {
			return fmt.Errorf("%w: turn %d word %d starts at %.3f before the previous word ends at %.3f", ErrMalformedTranscript, index, j, w.Start, prevEnd)
		}
		prevEnd = w.End
	}
	return nil
}
