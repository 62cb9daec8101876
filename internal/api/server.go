// internal/api/server.go
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"insertion-workers/internal/candidates"
	"insertion-workers/internal/common/logger"
	"insertion-workers/internal/eligibility"
)

const apiKeyHeader = "X-API-Key"

// CheckFunc probes one dependency for /ready.
type CheckFunc func(ctx context.Context) error

// CandidateStore loads stored candidates for re-evaluation.
type CandidateStore interface {
	Get(ctx context.Context, id string) (*candidates.Candidate, error)
}

type Options struct {
	Evaluator      *eligibility.Evaluator
	Store          CandidateStore
	Checks         map[string]CheckFunc
	APIKey         string
	TestBypass     bool
	RequestTimeout time.Duration
	Logger         logger.Logger
	Now            func() time.Time
}

type Server struct {
	evaluator  *eligibility.Evaluator
	store      CandidateStore
	checks     map[string]CheckFunc
	apiKey     string
	testBypass bool
	timeout    time.Duration
	logger     logger.Logger
	now        func() time.Time
}

func NewServer(opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	return &Server{
		evaluator:  opts.Evaluator,
		store:      opts.Store,
		checks:     opts.Checks,
		apiKey:     opts.APIKey,
		testBypass: opts.TestBypass,
		timeout:    opts.RequestTimeout,
		logger:     opts.Logger.WithFields(map[string]interface{}{"component": "api"}),
		now:        opts.Now,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Post("/eligibility/evaluate", s.handleEvaluate)
		r.Get("/candidates/{id}/eligibility", s.handleCandidateEligibility)
	})

	return r
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.testBypass {
			next.ServeHTTP(w, r)
			return
		}
		got := strings.TrimSpace(r.Header.Get(apiKeyHeader))
		if got == "" {
			writeError(w, http.StatusUnauthorized, "missing API key")
			return
		}
		if s.apiKey == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.apiKey)) != 1 {
			writeError(w, http.StatusForbidden, "invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]interface{}{
		"error":   http.StatusText(code),
		"message": msg,
	})
}
