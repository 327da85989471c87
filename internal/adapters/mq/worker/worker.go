// Package worker defines worker contracts for asynchronous call analysis.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/speechwell/speechwell/internal/adapters/mq/queue"
	"github.com/speechwell/speechwell/internal/domain/analysis"
	"github.com/speechwell/speechwell/internal/domain/transcript"
	"github.com/speechwell/speechwell/pkg/logger"
	"github.com/speechwell/speechwell/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Call aliases what workers read off the queue.
type Call = queue.Call

// Engine runs the analysis pipeline over one call.
type Engine interface {
	Analyze(call Call) (analysis.SessionSummary, error)
}

// Recorder accepts completed session summaries.
type Recorder interface {
	Put(ctx context.Context, summary analysis.SessionSummary) error
}

// Queue defines how workers receive calls.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Call
}

// Worker processes queued calls through the engine and records summaries.
type Worker struct {
	queue    Queue
	engine   Engine
	recorder Recorder
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a new worker with configuration options.
func NewWorker(q Queue, engine Engine, recorder Recorder, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		engine:   engine,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop until ctx is canceled or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	calls := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case call, ok := <-calls:
			if !ok {
				return
			}
			if err := w.processCall(ctx, call); err != nil {
				w.logger.Error(ctx, "call analysis failed", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processCall runs the engine over one call and records the summary.
func (w *Worker) processCall(ctx context.Context, call Call) error {
	start := time.Now()

	summary, err := w.engine.Analyze(call)
	metrics.RecordAnalysisLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if errors.Is(err, transcript.ErrMalformedTranscript) {
			metrics.RecordCallMalformed()
		}
		metrics.RecordAnalysisError()
		metrics.RecordErrorByComponent("worker", "analysis_error")
		return fmt.Errorf("failed to analyze conversation %s: %w", call.Info.ConversationID, err)
	}

	metrics.RecordSegmentsAnalyzed(len(summary.Segments))
	for _, seg := range summary.Segments {
		for _, ind := range seg.Indicators {
			metrics.RecordIndicatorFlagged(string(ind))
		}
	}

	if err := w.recorder.Put(ctx, summary); err != nil {
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("failed to record assessment for conversation %s: %w", call.Info.ConversationID, err)
	}

	w.logger.Info(ctx, "call analyzed",
		logger.String("conversationID", summary.ConversationID),
		logger.Int("userSegments", len(summary.Segments)),
		logger.Int("totalWords", summary.TotalWords),
		logger.Any("assessments", summary.Assessments),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates a worker pool of workerCount workers over the shared queue.
func NewPool(workerCount int, q Queue, engine Engine, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(q, engine, recorder, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully shuts down all workers.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker did not stop cleanly", logger.Error(err))
		}
	}
	metrics.UpdateWorkerCount(0)
}
