package worker_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/speechwell/speechwell/internal/adapters/mq/worker"
	"github.com/speechwell/speechwell/internal/domain/analysis"
	"github.com/speechwell/speechwell/internal/domain/model"
	"github.com/speechwell/speechwell/internal/domain/transcript"
	"github.com/speechwell/speechwell/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

// chanQueue feeds workers from a plain channel.
type chanQueue struct {
	calls chan worker.Call
}

func (q *chanQueue) Dequeue(_ context.Context) <-chan worker.Call {
	return q.calls
}

// realEngine runs the actual pipeline, as the service wires it.
type realEngine struct{}

func (realEngine) Analyze(call worker.Call) (analysis.SessionSummary, error) {
	utts, err := transcript.Normalize(call.Transcript)
	if err != nil {
		return analysis.SessionSummary{}, err
	}
	return analysis.New().Session(call.Info, transcript.UserUtterances(utts)), nil
}

// captureRecorder collects recorded summaries.
type captureRecorder struct {
	mu        sync.Mutex
	summaries []analysis.SessionSummary
	err       error
}

func (r *captureRecorder) Put(_ context.Context, s analysis.SessionSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.summaries = append(r.summaries, s)
	return nil
}

func (r *captureRecorder) recorded() []analysis.SessionSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]analysis.SessionSummary, len(r.summaries))
	copy(out, r.summaries)
	return out
}

func callWithUserTurn(id string) worker.Call {
	return worker.Call{
		Info: model.CallInfo{ConversationID: id, AgentID: "agent_1", Status: "done"},
		Transcript: []model.Turn{
			{Role: model.RoleAgent, Words: []model.Word{{Text: "hello", Start: 0, End: 0.4}}},
			{Role: model.RoleUser, Words: []model.Word{
				{Text: "good", Start: 1.0, End: 2.0},
				{Text: "morning", Start: 2.6, End: 3.6},
			}},
		},
	}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWorker(t *testing.T) {
	Convey("Given a worker over a channel queue", t, func() {
		q := &chanQueue{calls: make(chan worker.Call, 8)}
		rec := &captureRecorder{}
		w := worker.NewWorker(q, realEngine{}, rec, worker.WithName("worker-test"))

		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)

		Convey("When a well-formed call arrives", func() {
			q.calls <- callWithUserTurn("conv_ok")

			Convey("Then its summary is recorded", func() {
				So(waitFor(func() bool { return len(rec.recorded()) == 1 }), ShouldBeTrue)
				got := rec.recorded()[0]
				So(got.ConversationID, ShouldEqual, "conv_ok")
				So(got.Segments, ShouldHaveLength, 1)
				So(got.TotalWords, ShouldEqual, 2)
			})
		})

		Convey("When a malformed call arrives among good ones", func() {
			bad := callWithUserTurn("conv_bad")
			bad.Transcript[1].Words = nil
			q.calls <- bad
			q.calls <- callWithUserTurn("conv_good")

			Convey("Then the bad call is dropped and the good one recorded", func() {
				So(waitFor(func() bool { return len(rec.recorded()) == 1 }), ShouldBeTrue)
				So(rec.recorded()[0].ConversationID, ShouldEqual, "conv_good")
			})
		})

		Convey("When the worker is shut down", func() {
			err := w.Shutdown(context.Background())

			Convey("Then it stops cleanly", func() {
				So(err, ShouldBeNil)
			})
		})

		cancel()
	})

	Convey("Given a worker pool", t, func() {
		q := &chanQueue{calls: make(chan worker.Call, 32)}
		rec := &captureRecorder{}
		pool := worker.NewPool(4, q, realEngine{}, rec)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		Convey("When many calls are queued", func() {
			for i := 0; i < 20; i++ {
				q.calls <- callWithUserTurn(fmt.Sprintf("conv_%d", i))
			}

			Convey("Then every call is eventually recorded", func() {
				So(waitFor(func() bool { return len(rec.recorded()) == 20 }), ShouldBeTrue)
				pool.Stop()
			})
		})
	})
}
