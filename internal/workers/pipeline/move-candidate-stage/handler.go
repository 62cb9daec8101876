// internal/workers/pipeline/move-candidate-stage/handler.go
package movecandidatestage

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
	"insertion-workers/internal/common/metrics"
)

const (
	TaskType = "move-candidate-stage"
)

// Repository moves a candidate between stages. The eligibility status is
// never written here.
type Repository interface {
	UpdateStatus(ctx context.Context, id string, to candidates.PipelineStatus) (candidates.PipelineStatus, error)
	InsertAudit(ctx context.Context, e candidates.AuditEntry) error
}

type Handler struct {
	repo   Repository
	runner *camunda.Runner
	now    func() time.Time
	logger logger.Logger
}

func NewHandler(config *Config, repo Repository, log logger.Logger, opts ...camunda.RunnerOption) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		repo:   repo,
		runner: camunda.NewRunner(TaskType, config.Timeout, log, opts...),
		now:    time.Now,
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.execute)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.CandidateID) == "" {
		return nil, apperrors.NewCandidateValidationFailedError("candidatId: candidatId is required")
	}
	to, ok := candidates.ParsePipelineStatus(input.Statut)
	if !ok {
		return nil, apperrors.NewInvalidPipelineStatusError(input.Statut)
	}

	from, err := h.repo.UpdateStatus(ctx, input.CandidateID, to)
	if errors.Is(err, candidates.ErrCandidateNotFound) {
		return nil, apperrors.NewCandidateNotFoundError(input.CandidateID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseUpdateFailedError(err)
	}

	changed := from != to
	if changed {
		metrics.PipelineMoves.WithLabelValues(string(from), string(to)).Inc()
	}

	if err := h.repo.InsertAudit(ctx, candidates.AuditEntry{
		EventType:    "candidate_stage_moved",
		ResourceType: "candidat",
		ResourceID:   input.CandidateID,
		Details: map[string]interface{}{
			"from":    from,
			"to":      to,
			"motif":   input.Motif,
			"movedBy": input.MovedBy,
		},
	}); err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"candidatId": input.CandidateID,
			"error":      err,
		})
	}

	h.logger.Info("candidate moved", map[string]interface{}{
		"candidatId": input.CandidateID,
		"from":       from,
		"to":         to,
	})

	return &Output{
		CandidateID:    input.CandidateID,
		PreviousStatut: string(from),
		Statut:         string(to),
		Changed:        changed,
		MovedAt:        h.now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
