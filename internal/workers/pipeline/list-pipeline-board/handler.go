// internal/workers/pipeline/list-pipeline-board/handler.go
package listpipelineboard

import (
	"context"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"insertion-workers/internal/candidates"
	"insertion-workers/internal/common/camunda"
	apperrors "insertion-workers/internal/common/errors"
	"insertion-workers/internal/common/logger"
	"insertion-workers/internal/eligibility"
)

const (
	TaskType = "list-pipeline-board"
)

type Repository interface {
	ListByCall(ctx context.Context, callID string) ([]*candidates.Candidate, error)
	UpdateEligibility(ctx context.Context, id string, status eligibility.Status) error
}

type Handler struct {
	config    *Config
	repo      Repository
	evaluator *eligibility.Evaluator
	runner    *camunda.Runner
	logger    logger.Logger
}

func NewHandler(config *Config, repo Repository, evaluator *eligibility.Evaluator, log logger.Logger, opts ...camunda.RunnerOption) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		repo:      repo,
		evaluator: evaluator,
		runner:    camunda.NewRunner(TaskType, config.Timeout, log, opts...),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.execute)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	callID := strings.TrimSpace(input.AppelID)
	if callID == "" {
		return nil, apperrors.NewCandidateValidationFailedError("appelId: appelId is required")
	}

	rows, err := h.repo.ListByCall(ctx, callID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(TaskType, err)
	}

	recomputed := 0
	if input.Recompute && len(rows) > 0 {
		if recomputed, err = h.recompute(ctx, rows); err != nil {
			return nil, err
		}
	}

	output := &Output{
		AppelID:    callID,
		Columns:    h.group(rows),
		Recomputed: recomputed,
	}
	for _, col := range output.Columns {
		output.Total += col.Count
	}

	h.logger.Info("pipeline board built", map[string]interface{}{
		"appelId":    callID,
		"total":      output.Total,
		"recomputed": recomputed,
	})
	return output, nil
}

// recompute re-evaluates every row and persists the badges that changed.
func (h *Handler) recompute(ctx context.Context, rows []*candidates.Candidate) (int, error) {
	subjects := make([]eligibility.Candidate, len(rows))
	for i, c := range rows {
		subjects[i] = c.EligibilityInput()
	}

	assessments := h.evaluator.EvaluateBatch(ctx, subjects, h.config.Concurrency)

	changed := 0
	for i, c := range rows {
		status := assessments[i].Status
		if status == c.EligibilityStatus {
			continue
		}
		if err := h.repo.UpdateEligibility(ctx, c.ID, status); err != nil {
			return changed, apperrors.NewDatabaseUpdateFailedError(err)
		}
		c.EligibilityStatus = status
		changed++
	}
	return changed, nil
}

// group places rows into the four stage columns, always in board order.
func (h *Handler) group(rows []*candidates.Candidate) []Column {
	index := make(map[candidates.PipelineStatus]int, len(candidates.PipelineStatuses))
	columns := make([]Column, len(candidates.PipelineStatuses))
	for i, s := range candidates.PipelineStatuses {
		index[s] = i
		columns[i] = Column{Statut: string(s), Cards: []Card{}}
	}

	for _, c := range rows {
		i, ok := index[c.Status]
		if !ok {
			h.logger.Warn("candidate with unknown pipeline status left off the board", map[string]interface{}{
				"candidatId": c.ID,
				"statut":     c.Status,
			})
			continue
		}
		columns[i].Cards = append(columns[i].Cards, Card{
			CandidateID:       c.ID,
			Nom:               c.LastName,
			Prenom:            c.FirstName,
			Email:             c.Email,
			Telephone:         c.Phone,
			StatutEligibilite: c.EligibilityStatus,
		})
		columns[i].Count++
	}
	return columns
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
