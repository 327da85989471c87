// Package repository defines the assessment store interface and errors.
package repository

import (
	"context"

	"github.com/speechwell/speechwell/internal/domain/analysis"
)

// Store provides read/write access to completed session assessments.
type Store interface {
	// Put records the summary for its conversation id, replacing any
	// earlier summary for the same conversation.
	Put(ctx context.Context, summary analysis.SessionSummary) error

	// Get returns the summary for a conversation.
	// Returns ErrNotFound if the conversation is unknown.
	Get(ctx context.Context, conversationID string) (analysis.SessionSummary, error)

	// Recent returns up to n summaries, most recently recorded first.
	Recent(ctx context.Context, n int) ([]analysis.SessionSummary, error)

	// Count returns the number of summaries currently held.
	Count(ctx context.Context) int
}
