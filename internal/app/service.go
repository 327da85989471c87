// Package app provides the core business service that implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"runtime"
	"sync"

	callqueue "github.com/speechwell/speechwell/internal/adapters/mq/queue"
	workerpool "github.com/speechwell/speechwell/internal/adapters/mq/worker"
	"github.com/speechwell/speechwell/internal/adapters/repository"
	"github.com/speechwell/speechwell/internal/domain/analysis"
	"github.com/speechwell/speechwell/internal/domain/dedupe"
	"github.com/speechwell/speechwell/internal/domain/model"
	"github.com/speechwell/speechwell/internal/domain/transcript"
	"github.com/speechwell/speechwell/pkg/logger"
	"github.com/speechwell/speechwell/pkg/metrics"
)

// engine adapts the pure domain pipeline to the worker.Engine contract:
// normalize, keep the user's turns, aggregate the session.
type engine struct {
	analyzer *analysis.Analyzer
}

func (e *engine) Analyze(call model.Call) (analysis.SessionSummary, error) {
	utts, err := transcript.Normalize(call.Transcript)
	if err != nil {
		return analysis.SessionSummary{}, err
	}
	user := transcript.UserUtterances(utts)
	return e.analyzer.Session(call.Info, user), nil
}

// Service implements the API dependencies for the analysis webhook system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	callQueue  callqueue.Queue
	analyzer   *analysis.Analyzer
	workerPool *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	storeSize   int
	thresholds  analysis.Thresholds

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the analysis queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the delivery deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStoreSize bounds the in-memory assessment store.
func WithStoreSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.storeSize = size
		}
	}
}

// WithThresholds sets the clinical threshold configuration for the engine.
func WithThresholds(t analysis.Thresholds) Option {
	return func(s *Service) {
		s.thresholds = t
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10_000,
		dedupeSize:  50_000,
		storeSize:   10_000,
		thresholds:  analysis.DefaultThresholds(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting analysis service...")

	s.store = repository.NewMemStore(repository.WithMaxEntries(s.storeSize))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.callQueue = callqueue.NewInMemoryQueue(callqueue.WithCapacity(s.queueSize))
	s.analyzer = analysis.New(analysis.WithThresholds(s.thresholds))

	s.workerPool = workerpool.NewPool(s.workerCount, s.callQueue, &engine{analyzer: s.analyzer}, s.store)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Float64("pauseGapSeconds", s.thresholds.PauseGapSeconds),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping analysis service...")

	if q, ok := s.callQueue.(*callqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
}

// SeenAndRecord atomically checks if a conversation id was seen and records
// it if not. Returns true if the delivery was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a conversation id from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a call for asynchronous analysis.
func (s *Service) Enqueue(ctx context.Context, c model.Call) bool {
	s.logger.Debug(ctx, "queueing call for analysis",
		logger.String("conversationID", c.Info.ConversationID),
		logger.Int("turns", len(c.Transcript)),
	)
	ok := s.callQueue.Enqueue(ctx, c)
	if ok {
		metrics.UpdateQueueSize(s.callQueue.Len(ctx))
	}
	return ok
}

// Assessment returns the completed summary for one conversation.
func (s *Service) Assessment(ctx context.Context, conversationID string) (analysis.SessionSummary, error) {
	return s.store.Get(ctx, conversationID)
}

// RecentAssessments returns up to n summaries, most recent first.
func (s *Service) RecentAssessments(ctx context.Context, n int) ([]analysis.SessionSummary, error) {
	return s.store.Recent(ctx, n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.callQueue.Len(ctx)
		stored := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["storedAssessments"] = stored
		stats["seenDeliveries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoredSummaries(stored)
	}

	return stats
}
