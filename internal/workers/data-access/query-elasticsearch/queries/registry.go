// internal/workers/data-access/query-elasticsearch/queries/registry.go
package queries

import (
	"context"

	"insertion-workers/internal/common/database"
)

// Searcher runs a query body. *database.ElasticsearchClient implements it.
type Searcher interface {
	Search(ctx context.Context, index string, query map[string]interface{}, from, size int) (*database.SearchResult, error)
}

type QueryResult struct {
	Data      []map[string]interface{}
	TotalHits int64
	MaxScore  float64
	Took      int64
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Execute clamps the pagination, builds the body and runs it.
func Execute(ctx context.Context, searcher Searcher, cq CandidateQuery) (*QueryResult, error) {
	if cq.Pagination.From < 0 {
		cq.Pagination.From = 0
	}
	if cq.Pagination.Size < 1 {
		cq.Pagination.Size = defaultPageSize
	}
	if cq.Pagination.Size > maxPageSize {
		cq.Pagination.Size = maxPageSize
	}

	body, err := BuildQuery(cq)
	if err != nil {
		return nil, err
	}

	res, err := searcher.Search(ctx, cq.Index, body, cq.Pagination.From, cq.Pagination.Size)
	if err != nil {
		return nil, err
	}

	return &QueryResult{
		Data:      res.Hits,
		TotalHits: res.TotalHits,
		MaxScore:  res.MaxScore,
		Took:      res.Took,
	}, nil
}
