package testcalls

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/speechwell/speechwell/pkg/logger"
)

// Stats accumulates the outcome of one run.
type Stats struct {
	Posted   int64
	Accepted int64
	Rejected int64
	Verified int64
	Missing  int64
}

// Run generates cfg.NumCalls synthetic conversations, posts them to the
// webhook with bounded concurrency, waits for the async analysis, and
// verifies each assessment can be fetched back.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("testcalls")
	c := newClient(cfg)
	stats := &Stats{}

	calls := make([]callPayload, cfg.NumCalls)
	for i := range calls {
		calls[i] = generateCall(time.Now().Unix())
	}
	log.Info(ctx, "generated synthetic calls", logger.Int("numCalls", cfg.NumCalls))

	sem := make(chan struct{}, cfg.Concurrency)
	var wg sync.WaitGroup
	for _, call := range calls {
		wg.Add(1)
		sem <- struct{}{}
		go func(p callPayload) {
			defer wg.Done()
			defer func() { <-sem }()

			atomic.AddInt64(&stats.Posted, 1)
			status, err := c.postCall(p)
			if err != nil {
				log.Error(ctx, "delivery failed", logger.Error(err))
				atomic.AddInt64(&stats.Rejected, 1)
				return
			}
			if status == http.StatusAccepted {
				atomic.AddInt64(&stats.Accepted, 1)
			} else {
				log.Warn(ctx, "delivery not accepted",
					logger.String("conversationID", p.Data.ConversationID),
					logger.Int("status", status),
				)
				atomic.AddInt64(&stats.Rejected, 1)
			}
		}(call)
	}
	wg.Wait()

	// Give the worker pool time to drain the queue.
	select {
	case <-ctx.Done():
		return stats, ctx.Err()
	case <-time.After(cfg.VerifyWait):
	}

	for _, call := range calls {
		status, err := c.fetchAssessment(call.Data.ConversationID)
		if err == nil && status == http.StatusOK {
			atomic.AddInt64(&stats.Verified, 1)
		} else {
			atomic.AddInt64(&stats.Missing, 1)
		}
	}

	log.Info(ctx, "test-call run finished",
		logger.Int("posted", int(stats.Posted)),
		logger.Int("accepted", int(stats.Accepted)),
		logger.Int("rejected", int(stats.Rejected)),
		logger.Int("verified", int(stats.Verified)),
		logger.Int("missing", int(stats.Missing)),
	)
	return stats, nil
}
