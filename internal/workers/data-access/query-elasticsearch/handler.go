// internal/workers/data-access/query-elasticsearch/handler.go
package queryelasticsearch

import (
	"context"
	"errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"insertion-workers/internal/common/camunda"
	"insertion-workers/internal/common/database"
	apperrors "insertion-workers/internal/common/errors"
	"insertion-workers/internal/common/logger"
	"insertion-workers/internal/models"
	"insertion-workers/internal/workers/data-access/query-elasticsearch/queries"
)

const (
	TaskType = "query-elasticsearch"
)

type Handler struct {
	config   *Config
	searcher queries.Searcher
	runner   *camunda.Runner
	logger   logger.Logger
}

func NewHandler(config *Config, searcher queries.Searcher, log logger.Logger, opts ...camunda.RunnerOption) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		searcher: searcher,
		runner:   camunda.NewRunner(TaskType, config.Timeout, log, opts...),
		logger:   log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.execute)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	index := input.IndexName
	if index == "" {
		index = h.config.DefaultIndex
	}

	cq := queries.CandidateQuery{
		Index:     index,
		QueryType: models.QueryType(input.QueryType),
		Filters:   input.Filters,
		AppelID:   input.AppelID,
	}
	cq.Pagination.From = input.Pagination.From
	cq.Pagination.Size = input.Pagination.Size

	result, err := queries.Execute(ctx, h.searcher, cq)
	if err != nil {
		return nil, h.mapError(ctx, input.QueryType, index, err)
	}

	h.logger.Debug("search executed", map[string]interface{}{
		"queryType": input.QueryType,
		"index":     index,
		"totalHits": result.TotalHits,
	})

	return &Output{
		Data:      result.Data,
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
	}, nil
}

func (h *Handler) mapError(ctx context.Context, queryType, index string, err error) error {
	switch {
	case errors.Is(err, queries.ErrUnknownQueryType):
		return apperrors.NewInvalidQueryTypeError(queryType)
	case errors.Is(err, queries.ErrMissingZone):
		return apperrors.NewMissingParameterError(queryType, "filters.zone")
	case errors.Is(err, queries.ErrMissingIndex), errors.Is(err, database.ErrIndexNotFound):
		return apperrors.NewIndexNotFoundError(index)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.NewSearchTimeoutError(queryType)
	case errors.Is(err, database.ErrClusterUnavailable):
		return apperrors.NewElasticsearchConnectionFailedError(err)
	default:
		return apperrors.NewSearchQueryFailedError(queryType, err)
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
