// internal/workers/candidates/validate-candidate-data/handler.go
package validatecandidatedata

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
)

const (
	TaskType = "validate-candidate-data"
)

type Handler struct {
	runner *camunda.Runner
	now    func() time.Time
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger, opts ...camunda.RunnerOption) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		runner: camunda.NewRunner(TaskType, config.Timeout, log, opts...),
		now:    time.Now,
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.execute)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.CandidateData == nil {
		return nil, apperrors.NewCandidateValidationFailedError("candidateData: candidateData is required")
	}

	fields, result := candidates.ValidateFields(input.CandidateData, input.Mode != ModeUpdate, h.now())

	h.logger.Info("validation completed", map[string]interface{}{
		"isValid":    result.Valid,
		"errorCount": len(result.Errors),
		"mode":       input.Mode,
	})

	if !result.Valid {
		return nil, apperrors.NewCandidateValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
	}

	return &Output{
		IsValid:          true,
		ValidatedData:    fields,
		ValidationErrors: result.Errors,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
