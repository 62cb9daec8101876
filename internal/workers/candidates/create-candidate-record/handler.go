// internal/workers/candidates/create-candidate-record/handler.go
package createcandidaterecord

import (
	"context"
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
	TaskType = "create-candidate-record"
)

// Repository is the subset of *candidates.Repository used on creation.
type Repository interface {
	ExistsByEmailAndCall(ctx context.Context, email, callID string) (bool, error)
	Insert(ctx context.Context, c *candidates.Candidate) error
	InsertAudit(ctx context.Context, e candidates.AuditEntry) error
}

// Indexer writes the candidate into the search index. Nil disables indexing.
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
	fields, result := candidates.ValidateFields(input.CandidateData, true, h.now())
	if !result.Valid {
		return nil, apperrors.NewCandidateValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
	}

	if fields.Email != "" {
		exists, err := h.repo.ExistsByEmailAndCall(ctx, fields.Email, fields.CallID)
		if err != nil {
			return nil, apperrors.NewDatabaseInsertFailedError(err)
		}
		if exists {
			return nil, apperrors.NewDuplicateCandidateError(fields.Email, fields.CallID)
		}
	}

	candidate := fields.NewCandidate()
	assessment := h.evaluator.Assess(ctx, candidate.EligibilityInput())
	candidate.EligibilityStatus = assessment.Status

	if err := h.repo.Insert(ctx, candidate); err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}

	// Audit and indexing are non-critical: the row is already committed.
	if err := h.repo.InsertAudit(ctx, candidates.AuditEntry{
		EventType:    "candidate_created",
		ResourceType: "candidat",
		ResourceID:   candidate.ID,
		Details: map[string]interface{}{
			"appelId":           candidate.CallID,
			"statutEligibilite": candidate.EligibilityStatus,
			"reasons":           assessment.Reasons,
		},
	}); err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"candidatId": candidate.ID,
			"error":      err,
		})
	}

	indexed := h.index(ctx, candidate)

	h.logger.Info("candidate created", map[string]interface{}{
		"candidatId":        candidate.ID,
		"appelId":           candidate.CallID,
		"statutEligibilite": candidate.EligibilityStatus,
	})

	return &Output{
		CandidateID:       candidate.ID,
		Statut:            string(candidate.Status),
		StatutEligibilite: candidate.EligibilityStatus,
		Reasons:           assessment.Reasons,
		Indexed:           indexed,
		CreatedAt:         candidate.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) index(ctx context.Context, c *candidates.Candidate) bool {
	if h.indexer == nil || h.config.CandidateIndex == "" {
		return false
	}
	if err := h.indexer.IndexDocument(ctx, h.config.CandidateIndex, c.ID, c); err != nil {
		h.logger.Warn("candidate indexing failed", map[string]interface{}{
			"candidatId": c.ID,
			"error":      err,
		})
		return false
	}
	return true
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
