package queryelasticsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insertion-workers/internal/common/config"
	"insertion-workers/internal/common/database"
	apperrors "insertion-workers/internal/common/errors"
	"insertion-workers/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

type searchRequest struct {
	path  string
	query map[string]interface{}
	from  string
	size  string
}

// createTestHandler points the handler at an httptest server speaking the
// Elasticsearch protocol.
func createTestHandler(t *testing.T, status int, response string) (*Handler, *searchRequest) {
	got := &searchRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.from = r.URL.Query().Get("from")
		got.size = r.URL.Query().Get("size")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got.query)

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	es, err := database.NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)

	h := NewHandler(&Config{Timeout: 5 * time.Second, DefaultIndex: "candidats"}, es, logger.NewTestLogger(t))
	return h, got
}

const twoHits = `{
	"took": 3,
	"hits": {
		"total": {"value": 2},
		"max_score": 2.1,
		"hits": [
			{"_id": "c-1", "_score": 2.1, "_source": {"nom": "Diop", "commune": "Pikine", "statutEligibilite": "ELIGIBLE"}},
			{"_id": "c-2", "_score": 1.2, "_source": {"nom": "Faye", "commune": "Pikine Est", "statutEligibilite": "HORS_ZONE"}}
		]
	}
}`

// ==========================
// Tests
// ==========================

func TestHandler_Execute_CandidateSearch(t *testing.T) {
	h, got := createTestHandler(t, http.StatusOK, twoHits)

	out, err := h.Execute(context.Background(), &Input{
		QueryType:  "candidate_search",
		AppelID:    "appel-1",
		Filters:    map[string]interface{}{"keywords": "diop", "statutEligibilite": "eligible"},
		Pagination: Pagination{From: 20, Size: 500},
	})

	require.NoError(t, err)
	assert.Equal(t, "/candidats/_search", got.path)
	assert.Equal(t, "20", got.from)
	assert.Equal(t, "100", got.size)
	assert.Contains(t, got.query, "query")
	assert.Equal(t, int64(2), out.TotalHits)
	assert.Equal(t, 2.1, out.MaxScore)
	require.Len(t, out.Data, 2)
	assert.Equal(t, "c-1", out.Data[0]["_id"])
	assert.Equal(t, "Diop", out.Data[0]["nom"])
}

func TestHandler_Execute_CandidatesByZone(t *testing.T) {
	h, got := createTestHandler(t, http.StatusOK, twoHits)

	out, err := h.Execute(context.Background(), &Input{
		IndexName: "candidats-2026",
		QueryType: "candidates_by_zone",
		Filters:   map[string]interface{}{"zone": "Pikine"},
	})

	require.NoError(t, err)
	assert.Equal(t, "/candidats-2026/_search", got.path)
	assert.Equal(t, "20", got.size)
	boolQuery := got.query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolQuery["should"], 4)
	assert.Equal(t, float64(1), boolQuery["minimum_should_match"])
	assert.Len(t, out.Data, 2)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		input    *Input
		code     apperrors.ErrorCode
	}{
		{
			name:   "unknown query type",
			status: http.StatusOK, response: twoHits,
			input: &Input{QueryType: "call_statistics"},
			code:  apperrors.ErrCodeInvalidQueryType,
		},
		{
			name:   "zone missing",
			status: http.StatusOK, response: twoHits,
			input: &Input{QueryType: "candidates_by_zone", Filters: map[string]interface{}{}},
			code:  apperrors.ErrCodeMissingParameter,
		},
		{
			name:     "index missing on cluster",
			status:   http.StatusNotFound,
			response: `{"error":{"type":"index_not_found_exception"},"status":404}`,
			input:    &Input{QueryType: "candidate_search"},
			code:     apperrors.ErrCodeIndexNotFound,
		},
		{
			name:     "cluster error",
			status:   http.StatusBadRequest,
			response: `{"error":{"type":"parsing_exception"},"status":400}`,
			input:    &Input{QueryType: "candidate_search"},
			code:     apperrors.ErrCodeSearchQueryFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := createTestHandler(t, tt.status, tt.response)

			out, err := h.Execute(context.Background(), tt.input)

			assert.Nil(t, out)
			var stdErr *apperrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, tt.code, stdErr.Code)
		})
	}
}

func TestHandler_Execute_NoDefaultIndex(t *testing.T) {
	h, _ := createTestHandler(t, http.StatusOK, twoHits)
	h.config.DefaultIndex = ""

	_, err := h.Execute(context.Background(), &Input{QueryType: "candidate_search"})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeIndexNotFound, stdErr.Code)
}

func TestHandler_Execute_ClusterDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	es, err := database.NewElasticsearch(config.ElasticsearchConfig{URL: url})
	require.NoError(t, err)
	h := NewHandler(&Config{Timeout: 5 * time.Second, DefaultIndex: "candidats"}, es, logger.NewTestLogger(t))

	_, err = h.Execute(context.Background(), &Input{QueryType: "candidate_search"})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeElasticsearchConnectionFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
