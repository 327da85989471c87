package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/speechwell/speechwell/internal/adapters/http/api"
	"github.com/speechwell/speechwell/internal/adapters/repository"
	"github.com/speechwell/speechwell/internal/domain/analysis"
	"github.com/speechwell/speechwell/internal/domain/model"
	"github.com/speechwell/speechwell/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// mockDeps implements api.Dependencies in memory for handler tests.
type mockDeps struct {
	mu        sync.Mutex
	seen      map[string]struct{}
	enqueued  []model.Call
	rejectAll bool

	summaries map[string]analysis.SessionSummary
	order     []string
}

func newMockDeps() *mockDeps {
	return &mockDeps{
		seen:      make(map[string]struct{}),
		summaries: make(map[string]analysis.SessionSummary),
	}
}

func (m *mockDeps) SeenAndRecord(_ context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[id]; ok {
		return true
	}
	m.seen[id] = struct{}{}
	return false
}

func (m *mockDeps) Unrecord(_ context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, id)
}

func (m *mockDeps) Size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.seen))
}

func (m *mockDeps) Enqueue(_ context.Context, c model.Call) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rejectAll {
		return false
	}
	m.enqueued = append(m.enqueued, c)
	return true
}

func (m *mockDeps) Assessment(_ context.Context, conversationID string) (analysis.SessionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[conversationID]
	if !ok {
		return analysis.SessionSummary{}, repository.ErrNotFound
	}
	return s, nil
}

func (m *mockDeps) RecentAssessments(_ context.Context, n int) ([]analysis.SessionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]analysis.SessionSummary, 0, n)
	for i := len(m.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.summaries[m.order[i]])
	}
	return out, nil
}

func (m *mockDeps) putSummary(s analysis.SessionSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[s.ConversationID] = s
	m.order = append(m.order, s.ConversationID)
}

func (m *mockDeps) enqueuedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enqueued)
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"queue_size": 0, "worker_count": 4}
}

func newTestMux(deps *mockDeps, verifier *api.SignatureVerifier) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}, verifier, 100).Register(context.Background(), mux)
	return mux
}

const transcriptionBody = `{
	"type": "post_call_transcription",
	"event_timestamp": 1756500000,
	"data": {
		"agent_id": "agent_1",
		"conversation_id": "conv_1",
		"status": "done",
		"user_id": "user_1",
		"transcript": [
			{"role": "agent", "words": [{"text": "hello", "start": 0.0, "end": 0.4}]},
			{"role": "user", "words": [
				{"text": "I", "start": 1.0, "end": 1.2},
				{"text": "feel", "start": 1.3, "end": 1.6},
				{"text": "fine", "start": 2.4, "end": 2.9}
			]}
		]
	}
}`

func postWebhook(mux *http.ServeMux, body string, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/elevenlabs", strings.NewReader(body))
	if header != "" {
		req.Header.Set("ElevenLabs-Signature", header)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestWebhookHandler(t *testing.T) {
	Convey("Given a server with signature verification disabled", t, func() {
		deps := newMockDeps()
		mux := newTestMux(deps, api.NewSignatureVerifier("", time.Minute))

		Convey("When a well-formed transcription delivery arrives", func() {
			rec := postWebhook(mux, transcriptionBody, "")

			Convey("Then it is accepted and queued", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(deps.enqueuedCount(), ShouldEqual, 1)
				So(deps.enqueued[0].Info.ConversationID, ShouldEqual, "conv_1")
			})
		})

		Convey("When the same conversation is redelivered", func() {
			first := postWebhook(mux, transcriptionBody, "")
			second := postWebhook(mux, transcriptionBody, "")

			Convey("Then the retry is acknowledged without queuing twice", func() {
				So(first.Code, ShouldEqual, http.StatusAccepted)
				So(second.Code, ShouldEqual, http.StatusOK)

				var ack struct {
					Status    string `json:"status"`
					Duplicate bool   `json:"duplicate"`
				}
				So(json.Unmarshal(second.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.Status, ShouldEqual, "duplicate")
				So(ack.Duplicate, ShouldBeTrue)
				So(deps.enqueuedCount(), ShouldEqual, 1)
			})
		})

		Convey("When the transcript timing is malformed", func() {
			body := strings.Replace(transcriptionBody, `"start": 2.4, "end": 2.9`, `"start": 2.4, "end": 2.0`, 1)
			rec := postWebhook(mux, body, "")

			Convey("Then the delivery is rejected with 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, "malformed_transcript")
				So(deps.enqueuedCount(), ShouldEqual, 0)
			})
		})

		Convey("When the body is not valid JSON", func() {
			rec := postWebhook(mux, "{not json", "")

			Convey("Then the delivery is rejected with 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the conversation id is missing", func() {
			rec := postWebhook(mux, `{"type":"post_call_transcription","data":{}}`, "")

			Convey("Then the delivery is rejected with 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When an audio delivery arrives", func() {
			rec := postWebhook(mux, `{"type":"post_call_audio","data":{"conversation_id":"conv_1"}}`, "")

			Convey("Then it is acknowledged without analysis", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.enqueuedCount(), ShouldEqual, 0)
			})
		})

		Convey("When the queue is saturated", func() {
			deps.rejectAll = true
			rec := postWebhook(mux, transcriptionBody, "")

			Convey("Then the caller gets 429 and the retry can succeed", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)

				deps.rejectAll = false
				retry := postWebhook(mux, transcriptionBody, "")
				So(retry.Code, ShouldEqual, http.StatusAccepted)
				So(deps.enqueuedCount(), ShouldEqual, 1)
			})
		})

		Convey("When the method is not POST", func() {
			req := httptest.NewRequest(http.MethodGet, "/webhook/elevenlabs", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the route does not exist", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})

	Convey("Given a server with signature verification enabled", t, func() {
		const secret = "wsec_handler_secret"
		deps := newMockDeps()
		mux := newTestMux(deps, api.NewSignatureVerifier(secret, 30*time.Minute))

		Convey("When the delivery carries a valid signature", func() {
			header := signedHeader(secret, []byte(transcriptionBody), time.Now())
			rec := postWebhook(mux, transcriptionBody, header)

			Convey("Then it is accepted", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
			})
		})

		Convey("When the delivery is unsigned", func() {
			rec := postWebhook(mux, transcriptionBody, "")

			Convey("Then it is rejected with 401", func() {
				So(rec.Code, ShouldEqual, http.StatusUnauthorized)
				So(deps.enqueuedCount(), ShouldEqual, 0)
			})
		})
	})
}

func TestAssessmentsHandler(t *testing.T) {
	Convey("Given a server with stored assessments", t, func() {
		deps := newMockDeps()
		deps.putSummary(analysis.SessionSummary{ConversationID: "conv_a", TotalWords: 3})
		deps.putSummary(analysis.SessionSummary{ConversationID: "conv_b", TotalWords: 5})
		mux := newTestMux(deps, api.NewSignatureVerifier("", time.Minute))

		get := func(path string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			return rec
		}

		Convey("When one assessment is fetched by conversation id", func() {
			rec := get("/assessments/conv_a")

			Convey("Then the stored summary is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var s analysis.SessionSummary
				So(json.Unmarshal(rec.Body.Bytes(), &s), ShouldBeNil)
				So(s.ConversationID, ShouldEqual, "conv_a")
				So(s.TotalWords, ShouldEqual, 3)
			})
		})

		Convey("When an unknown conversation id is fetched", func() {
			rec := get("/assessments/conv_missing")

			Convey("Then the handler returns 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When recent assessments are listed", func() {
			rec := get("/assessments?limit=10")

			Convey("Then they come back most recent first", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var out []analysis.SessionSummary
				So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
				So(len(out), ShouldEqual, 2)
				So(out[0].ConversationID, ShouldEqual, "conv_b")
				So(out[1].ConversationID, ShouldEqual, "conv_a")
			})
		})

		Convey("When the limit is missing or invalid", func() {
			for _, path := range []string{"/assessments", "/assessments?limit=0", "/assessments?limit=abc"} {
				So(get(path).Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the limit exceeds the configured maximum", func() {
			rec := get("/assessments?limit=101")

			Convey("Then the handler refuses the request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, "limit_exceeded")
			})
		})
	})
}

func TestStatsAndHealth(t *testing.T) {
	Convey("Given a registered server", t, func() {
		mux := newTestMux(newMockDeps(), api.NewSignatureVerifier("", time.Minute))

		Convey("When /stats is fetched", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the provider snapshot is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var stats map[string]interface{}
				So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
				So(stats["worker_count"], ShouldEqual, 4)
			})
		})

		Convey("When /healthz is fetched", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the endpoint responds", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}
