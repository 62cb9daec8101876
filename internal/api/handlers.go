// internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"insertion-workers/internal/candidates"
	"insertion-workers/internal/eligibility"
)

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Time   string            `json:"time"`
}

type evaluationResponse struct {
	eligibility.Assessment
	CandidateID string `json:"candidatId,omitempty"`
	EvaluatedAt string `json:"evaluatedAt"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := readiness{Status: "ready", Checks: make(map[string]string, len(names))}
	code := http.StatusOK
	for _, name := range names {
		if err := s.checks[name](r.Context()); err != nil {
			s.logger.Warn("readiness check failed", map[string]interface{}{
				"check": name,
				"error": err,
			})
			out.Checks[name] = err.Error()
			out.Status = "not_ready"
			code = http.StatusServiceUnavailable
			continue
		}
		out.Checks[name] = "ok"
	}
	out.Time = s.now().UTC().Format(time.RFC3339)
	writeJSON(w, code, out)
}

// handleEvaluate rejects only bodies that do not decode. Unreadable dates of
// birth and unknown genders are left to the evaluator.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var fields candidates.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	subject := fields.EligibilityInput()
	if g, ok := candidates.NormalizeGender(subject.Gender); ok {
		subject.Gender = g
	}

	assessment := s.evaluator.Assess(r.Context(), subject)
	writeJSON(w, http.StatusOK, evaluationResponse{
		Assessment:  assessment,
		EvaluatedAt: s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCandidateEligibility(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "candidate store unavailable")
		return
	}

	candidate, err := s.store.Get(r.Context(), id)
	if errors.Is(err, candidates.ErrCandidateNotFound) {
		writeError(w, http.StatusNotFound, "candidate not found")
		return
	}
	if err != nil {
		s.logger.Error("candidate lookup failed", map[string]interface{}{
			"candidatId": id,
			"error":      err,
		})
		writeError(w, http.StatusInternalServerError, "candidate lookup failed")
		return
	}

	assessment := s.evaluator.Assess(r.Context(), candidate.EligibilityInput())
	writeJSON(w, http.StatusOK, evaluationResponse{
		Assessment:  assessment,
		CandidateID: candidate.ID,
		EvaluatedAt: s.now().UTC().Format(time.RFC3339),
	})
}
