package repository

import (
	"context"
	"sync"

	"github.com/speechwell/speechwell/internal/domain/analysis"
	"github.com/speechwell/speechwell/pkg/metrics"
)

const defaultMaxEntries = 10_000

// MemStore is a bounded in-memory Store. Summaries are held per
// conversation id in arrival order; when full, the oldest conversation is
// evicted. It is host-side reporting state, not durable storage.
type MemStore struct {
	mu         sync.RWMutex
	byID       map[string]analysis.SessionSummary
	order      []string // conversation ids, oldest first
	maxEntries int
}

// NewMemStore creates a new in-memory assessment store with configuration options.
func NewMemStore(opts ...StoreOption) *MemStore {
	s := &MemStore{
		maxEntries: defaultMaxEntries,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.byID = make(map[string]analysis.SessionSummary)
	return s
}

// Put records the summary, replacing any earlier one for the conversation.
func (s *MemStore) Put(_ context.Context, summary analysis.SessionSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := summary.ConversationID
	if _, exists := s.byID[id]; exists {
		// Re-analysis of the same conversation: refresh recency.
		s.removeFromOrder(id)
	} else if s.maxEntries > 0 && len(s.byID) >= s.maxEntries {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.byID, oldest)
	}

	s.byID[id] = summary
	s.order = append(s.order, id)
	metrics.UpdateStoredSummaries(len(s.byID))
	return nil
}

// Get returns the summary for a conversation id.
func (s *MemStore) Get(_ context.Context, conversationID string) (analysis.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.byID[conversationID]
	if !ok {
		return analysis.SessionSummary{}, ErrNotFound
	}
	return summary, nil
}

// Recent returns up to n summaries, most recently recorded first.
func (s *MemStore) Recent(_ context.Context, n int) ([]analysis.SessionSummary, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.order) {
		n = len(s.order)
	}
	out := make([]analysis.SessionSummary, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.byID[s.order[i]])
	}
	return out, nil
}

// Count returns the number of summaries currently held.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// removeFromOrder drops one conversation id from the recency slice.
func (s *MemStore) removeFromOrder(id string) {
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
