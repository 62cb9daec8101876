// internal/workers/eligibility/evaluate-eligibility/handler.go
package evaluateeligibility

import (
	"context"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"insertion-workers/internal/candidates"
	"insertion-workers/internal/common/camunda"
	apperrors "insertion-workers/internal/common/errors"
	"insertion-workers/internal/common/logger"
	"insertion-workers/internal/eligibility"
)

const (
	TaskType = "evaluate-eligibility"
)

// Store persists an evaluation result. *candidates.Repository implements it.
type Store interface {
	UpdateEligibility(ctx context.Context, id string, status eligibility.Status) error
}

type Handler struct {
	evaluator *eligibility.Evaluator
	store     Store
	runner    *camunda.Runner
	logger    logger.Logger
}

func NewHandler(config *Config, evaluator *eligibility.Evaluator, store Store, log logger.Logger, opts ...camunda.RunnerOption) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		evaluator: evaluator,
		store:     store,
		runner:    camunda.NewRunner(TaskType, config.Timeout, log, opts...),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.execute)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	subject := input.Fields.EligibilityInput()
	subject.ID = input.CandidateID
	if g, ok := candidates.NormalizeGender(subject.Gender); ok {
		subject.Gender = g
	}

	assessment := h.evaluator.Assess(ctx, subject)

	output := &Output{
		CandidateID:       input.CandidateID,
		StatutEligibilite: assessment.Status,
		Reasons:           assessment.Reasons,
		Age:               assessment.Age,
		PolicyApplied:     assessment.PolicyApplied,
		ProgrammeID:       assessment.ProgrammeID,
		EvaluatedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	if input.Persist && input.CandidateID != "" && h.store != nil {
		err := h.store.UpdateEligibility(ctx, input.CandidateID, assessment.Status)
		if errors.Is(err, candidates.ErrCandidateNotFound) {
			return nil, apperrors.NewCandidateNotFoundError(input.CandidateID)
		}
		if err != nil {
			return nil, apperrors.NewDatabaseUpdateFailedError(err)
		}
		output.Persisted = true
	}

	h.logger.Info("eligibility evaluated", map[string]interface{}{
		"candidatId":        input.CandidateID,
		"appelId":           input.CallID,
		"statutEligibilite": assessment.Status,
		"persisted":         output.Persisted,
	})
	return output, nil
}

// Execute runs the evaluation without a job, for tests and the ops API.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
