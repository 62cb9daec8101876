// internal/workers/candidates/update-candidate-record/handler.go
package updatecandidaterecord

import (
	"context"
	"errors"
	"strings"
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
	TaskType = "update-candidate-record"
)

type Repository interface {
	Get(ctx context.Context, id string) (*candidates.Candidate, error)
	Update(ctx context.Context, c *candidates.Candidate) error
	InsertAudit(ctx context.Context, e candidates.AuditEntry) error
}

type Indexer interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) error
}

type Handler struct {
	config    *Config
	repo      Repository
	evaluator *eligibility.Evaluator
	indexer   Indexer
	runner    *camunda.Runner
	now       func() time.Time
	logger    logger.Logger
}

func NewHandler(config *Config, repo Repository, evaluator *eligibility.Evaluator, indexer Indexer, log logger.Logger, opts ...camunda.RunnerOption) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		repo:      repo,
		evaluator: evaluator,
		indexer:   indexer,
		runner:    camunda.NewRunner(TaskType, config.Timeout, log, opts...),
		now:       time.Now,
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.execute)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.CandidateID) == "" {
		return nil, apperrors.NewCandidateValidationFailedError("candidatId: candidatId is required")
	}

	if input.CandidateData == nil {
		input.CandidateData = map[string]interface{}{}
	}
	fields, result := candidates.ValidateFields(input.CandidateData, false, h.now())
	if !result.Valid {
		return nil, apperrors.NewCandidateValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
	}

	candidate, err := h.repo.Get(ctx, input.CandidateID)
	if errors.Is(err, candidates.ErrCandidateNotFound) {
		return nil, apperrors.NewCandidateNotFoundError(input.CandidateID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}

	previous := candidate.EligibilityStatus
	fields.MergeInto(candidate)

	assessment := h.evaluator.Assess(ctx, candidate.EligibilityInput())
	candidate.EligibilityStatus = assessment.Status

	err = h.repo.Update(ctx, candidate)
	if errors.Is(err, candidates.ErrCandidateNotFound) {
		return nil, apperrors.NewCandidateNotFoundError(input.CandidateID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseUpdateFailedError(err)
	}

	if err := h.repo.InsertAudit(ctx, candidates.AuditEntry{
		EventType:    "candidate_updated",
		ResourceType: "candidat",
		ResourceID:   candidate.ID,
		Details: map[string]interface{}{
			"previousStatutEligibilite": previous,
			"statutEligibilite":         candidate.EligibilityStatus,
			"reasons":                   assessment.Reasons,
		},
	}); err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"candidatId": candidate.ID,
			"error":      err,
		})
	}

	if h.indexer != nil && h.config.CandidateIndex != "" {
		if err := h.indexer.IndexDocument(ctx, h.config.CandidateIndex, candidate.ID, candidate); err != nil {
			h.logger.Warn("candidate reindexing failed", map[string]interface{}{
				"candidatId": candidate.ID,
				"error":      err,
			})
		}
	}

	return &Output{
		CandidateID:               candidate.ID,
		StatutEligibilite:         candidate.EligibilityStatus,
		PreviousStatutEligibilite: previous,
		EligibilityChanged:        previous != candidate.EligibilityStatus,
		Reasons:                   assessment.Reasons,
		UpdatedAt:                 candidate.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
