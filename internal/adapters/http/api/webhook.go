package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/speechwell/speechwell/internal/domain/model"
	"github.com/speechwell/speechwell/internal/domain/transcript"
	"github.com/speechwell/speechwell/pkg/logger"
	"github.com/speechwell/speechwell/pkg/metrics"
)

// Webhook payload types.
const (
	payloadTypeTranscription = "post_call_transcription"
	payloadTypeAudio         = "post_call_audio"
)

const signatureHeader = "ElevenLabs-Signature"

// wordPayload mirrors one timed token in the webhook transcript.
type wordPayload struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// turnPayload mirrors one transcript turn in the webhook payload.
type turnPayload struct {
	Role  string        `json:"role"`
	Words []wordPayload `json:"words"`
}

// webhookRequest mirrors the post-call webhook schema.
type webhookRequest struct {
	Type           string `json:"type"`
	EventTimestamp int64  `json:"event_timestamp"`
	Data           struct {
		AgentID        string        `json:"agent_id"`
		ConversationID string        `json:"conversation_id"`
		Status         string        `json:"status"`
		UserID         string        `json:"user_id"`
		Transcript     []turnPayload `json:"transcript"`
	} `json:"data"`
}

func (r webhookRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Type) == "":
		return errors.New("missing type")
	case strings.TrimSpace(r.Data.ConversationID) == "":
		return errors.New("missing conversation_id")
	}
	return nil
}

// toCall reshapes the wire payload into the domain call value.
func (r webhookRequest) toCall() model.Call {
	turns := make([]model.Turn, len(r.Data.Transcript))
	for i, t := range r.Data.Transcript {
		words := make([]model.Word, len(t.Words))
		for j, w := range t.Words {
			words[j] = model.Word{Text: w.Text, Start: w.Start, End: w.End}
		}
		turns[i] = model.Turn{Role: t.Role, Words: words}
	}
	return model.Call{
		Info: model.CallInfo{
			ConversationID: r.Data.ConversationID,
			AgentID:        r.Data.AgentID,
			Status:         r.Data.Status,
			UserID:         r.Data.UserID,
		},
		Transcript: turns,
	}
}

// WebhookHandler handles post-call webhook deliveries.
type WebhookHandler struct {
	deps     Dependencies
	verifier *SignatureVerifier
	logger   logger.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(deps Dependencies, verifier *SignatureVerifier) *WebhookHandler {
	return &WebhookHandler{
		deps:     deps,
		verifier: verifier,
		logger:   logger.Get().Named("webhook"),
	}
}

// HandlePostCall handles POST /webhook/elevenlabs requests.
//
// Transcript validation runs synchronously so malformed timing data is
// surfaced to the caller as 400; the metric computation itself happens on
// the worker pool after the delivery is acknowledged with 202.
func (h *WebhookHandler) HandlePostCall(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_call"
	ctx := r.Context()

	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}

	if err := h.verifier.Verify(body, r.Header.Get(signatureHeader)); err != nil {
		metrics.RecordSignatureRejection()
		h.logger.Warn(ctx, "rejected webhook delivery", logger.Error(err))
		writeError(w, http.StatusUnauthorized, "invalid_signature", err)
		return
	}

	var req webhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}

	switch req.Type {
	case payloadTypeTranscription:
		h.acceptTranscription(w, r, req)
	case payloadTypeAudio:
		h.logger.Info(ctx, "audio delivery acknowledged, analysis not supported",
			logger.String("conversationID", req.Data.ConversationID),
		)
		writeJSON(w, http.StatusOK, ackResponse{Status: "received"})
	default:
		h.logger.Warn(ctx, "unknown webhook payload type", logger.String("type", req.Type))
		writeJSON(w, http.StatusOK, ackResponse{Status: "received"})
	}
}

// acceptTranscription validates, de-duplicates and queues one transcription delivery.
func (h *WebhookHandler) acceptTranscription(w http.ResponseWriter, r *http.Request, req webhookRequest) {
	const op = "api.post_call_transcription"
	ctx := r.Context()

	call := req.toCall()

	// Surface malformed timing data to the caller before acknowledging.
	if _, err := transcript.Normalize(call.Transcript); err != nil {
		metrics.RecordCallMalformed()
		writeError(w, http.StatusBadRequest, "malformed_transcript", fmt.Errorf("%s: %w", op, err))
		return
	}

	// Idempotency across provider redeliveries, keyed by conversation id.
	if h.deps.SeenAndRecord(ctx, call.Info.ConversationID) {
		metrics.RecordCallDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(ctx, call); !ok {
		// Roll back the "seen" mark so the provider's retry can succeed.
		h.deps.Unrecord(ctx, call.Info.ConversationID)
		writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%s: %w", op, ErrBackpressure))
		return
	}

	metrics.RecordCallReceived()
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
