package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// AssessmentsHandler serves completed session assessments.
type AssessmentsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewAssessmentsHandler creates a new assessments handler.
func NewAssessmentsHandler(deps Dependencies, maxLimit int) *AssessmentsHandler {
	return &AssessmentsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleList handles GET /assessments?limit=N requests, most recent first.
func (h *AssessmentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_assessments"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}
	summaries, err := h.deps.RecentAssessments(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// HandleGet handles GET /assessments/{conversation_id} requests.
func (h *AssessmentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_assessment"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/assessments/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}
	summary, err := h.deps.Assessment(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
