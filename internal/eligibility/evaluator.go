// internal/eligibility/evaluator.go
package eligibility

import (
	"context"
	"errors"
	"fmt"
	"time"

	"insertion-workers/internal/common/logger"
)

// Recorder receives evaluation outcomes. metrics.EligibilityRecorder implements it.
type Recorder interface {
	ObserveEvaluation(status string, duration time.Duration)
	ObserveLookupFailure(link string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveEvaluation(string, time.Duration) {}
func (noopRecorder) ObserveLookupFailure(string) {}

type Config struct {
	BaselineMinAge int
	BaselineMaxAge int
}

func DefaultConfig() Config {
	return Config{BaselineMinAge: 18, BaselineMaxAge: 35}
}

// Evaluator classifies candidates. It holds no mutable state and is safe for
// concurrent use.
type Evaluator struct {
	provider ReferenceProvider
	config   Config
	now      func() time.Time
	recorder Recorder
	logger   logger.Logger
}

type Option func(*Evaluator)

func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(e *Evaluator) {
		if r != nil {
			e.recorder = r
		}
	}
}

// NewEvaluator builds an evaluator. A nil provider restricts every evaluation
// to the baseline; a nil logger discards.
func NewEvaluator(provider ReferenceProvider, cfg Config, log logger.Logger, opts ...Option) *Evaluator {
	if cfg.BaselineMinAge == 0 && cfg.BaselineMaxAge == 0 {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	e := &Evaluator{
		provider: provider,
		config:   cfg,
		now:      time.Now,
		recorder: noopRecorder{},
		logger:   log.WithFields(map[string]interface{}{"component": "eligibility"}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns the candidate's eligibility status. It never fails.
func (e *Evaluator) Evaluate(ctx context.Context, c Candidate) Status {
	return e.Assess(ctx, c).Status
}

// Assess runs the baseline, the lookup chain and the policy rules and reports
// how the status was reached.
func (e *Evaluator) Assess(ctx context.Context, c Candidate) Assessment {
	start := time.Now()

	age := ageOf(c.DateOfBirth, e.now())
	base := baseline(age, e.config.BaselineMinAge, e.config.BaselineMaxAge)

	result := Assessment{
		Status:   base,
		Baseline: base,
		Age:      age,
		Reasons:  []Reason{},
	}

	if policy, ok := e.resolvePolicy(ctx, trim(c.CallID)); ok {
		result.Reasons = applyPolicy(c, age, *policy)
		result.Status = resolveStatus(result.Reasons, age)
		result.PolicyApplied = true
		result.ProgrammeID = policy.ProgrammeID
	}

	e.recorder.ObserveEvaluation(string(result.Status), time.Since(start))
	e.logger.Debug("candidate evaluated", map[string]interface{}{
		"candidateId":   c.ID,
		"callId":        c.CallID,
		"status":        result.Status,
		"policyApplied": result.PolicyApplied,
		"reasons":       result.Reasons,
	})

	return result
}

// resolvePolicy walks call -> project -> programme policy and stops at the
// first missing link. Lookup errors are absorbed here and never reach Assess.
func (e *Evaluator) resolvePolicy(ctx context.Context, callID string) (*Policy, bool) {
	if callID == "" || e.provider == nil {
		return nil, false
	}

	call, ok := lookup(ctx, e, "call", callID, e.provider.FindCallByID)
	if !ok || trim(call.ProjectID) == "" {
		return nil, false
	}

	project, ok := lookup(ctx, e, "project", trim(call.ProjectID), e.provider.FindProjectByID)
	if !ok || trim(project.ProgrammeID) == "" {
		return nil, false
	}

	programmeID := trim(project.ProgrammeID)
	policy, ok := lookup(ctx, e, "policy", programmeID, e.provider.FindPolicyByProgrammeID)
	if !ok {
		return nil, false
	}
	resolved := *policy
	if resolved.ProgrammeID == "" {
		resolved.ProgrammeID = programmeID
	}
	return &resolved, true
}

func lookup[T any](ctx context.Context, e *Evaluator, link, id string, find func(context.Context, string) (*T, error)) (v *T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("reference lookup panicked", map[string]interface{}{
				"link":  link,
				"id":    id,
				"panic": fmt.Sprint(r),
			})
			e.recorder.ObserveLookupFailure(link)
			v, ok = nil, false
		}
	}()

	v, err := find(ctx, id)
	if err != nil || v == nil {
		fields := map[string]interface{}{"link": link, "id": id}
		if err != nil && !errors.Is(err, ErrNotFound) {
			fields["error"] = err
			e.logger.Warn("reference lookup failed, using baseline", fields)
		} else {
			e.logger.Debug("reference not found, using baseline", fields)
		}
		e.recorder.ObserveLookupFailure(link)
		return nil, false
	}
	return v, true
}
