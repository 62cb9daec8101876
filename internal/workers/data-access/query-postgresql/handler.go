// internal/workers/data-access/query-postgresql/handler.go
package querypostgresql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"insertion-workers/internal/common/camunda"
	apperrors "insertion-workers/internal/common/errors"
	"insertion-workers/internal/common/logger"
	"insertion-workers/internal/models"
	"insertion-workers/internal/workers/data-access/query-postgresql/queries"
)

const (
	TaskType = "query-postgresql"
)

type Handler struct {
	config *Config
	db     *sql.DB
	runner *camunda.Runner
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger, opts ...camunda.RunnerOption) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		runner: camunda.NewRunner(TaskType, config.Timeout, log, opts...),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.execute)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	queryType := models.QueryType(input.QueryType)
	if _, exists := queries.Registry[queryType]; !exists {
		return nil, apperrors.NewInvalidQueryTypeError(input.QueryType)
	}

	params := make(map[string]interface{})
	if input.ProgrammeID != "" {
		params["programmeId"] = input.ProgrammeID
	}
	if input.ProjetID != "" {
		params["projetId"] = input.ProjetID
	}
	if input.AppelID != "" {
		params["appelId"] = input.AppelID
	}
	if input.Filters != nil {
		params["filters"] = input.Filters
	}

	data, rowCount, execTime, err := queries.Execute(ctx, h.db, queryType, params)
	if err != nil {
		var missing *queries.MissingParamError
		switch {
		case errors.As(err, &missing):
			return nil, apperrors.NewMissingParameterError(input.QueryType, missing.Param)
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, apperrors.NewQueryTimeoutError(input.QueryType)
		default:
			return nil, apperrors.NewQueryExecutionFailedError(input.QueryType, err)
		}
	}

	h.logger.Debug("query executed", map[string]interface{}{
		"queryType":  input.QueryType,
		"rowCount":   rowCount,
		"durationMs": execTime,
	})

	return &Output{
		Data:               data,
		RowCount:           rowCount,
		QueryExecutionTime: execTime,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
