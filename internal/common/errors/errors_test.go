package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMockJob(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                42,
		Type:               "create-candidate-record",
		ProcessInstanceKey: 420,
		Retries:            retries,
		Variables:          "{}",
	}}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		jobRetries  int32
		wantAction  Action
		wantRetries int32
		wantCode    string
	}{
		{
			name:        "technical error consumes a retry",
			err:         NewDatabaseInsertFailedError(stderrors.New("conn reset")),
			jobRetries:  3,
			wantAction:  ActionFail,
			wantRetries: 2,
			wantCode:    "DATABASE_INSERT_FAILED",
		},
		{
			name:        "retries capped by code budget",
			err:         NewSearchTimeoutError("candidate_search"),
			jobRetries:  10,
			wantAction:  ActionFail,
			wantRetries: 2,
			wantCode:    "SEARCH_TIMEOUT",
		},
		{
			name:       "last attempt throws",
			err:        NewDatabaseUpdateFailedError(stderrors.New("deadlock")),
			jobRetries: 1,
			wantAction: ActionThrow,
			wantCode:   "DATABASE_UPDATE_FAILED",
		},
		{
			name:       "business error throws immediately",
			err:        NewDuplicateCandidateError("awa@example.sn", "call-1"),
			jobRetries: 3,
			wantAction: ActionThrow,
			wantCode:   "DUPLICATE_CANDIDATE",
		},
		{
			name:       "wrapped standard error is unwrapped",
			err:        fmt.Errorf("create: %w", NewCandidateNotFoundError("cand-9")),
			jobRetries: 3,
			wantAction: ActionThrow,
			wantCode:   "CANDIDATE_NOT_FOUND",
		},
		{
			name:       "plain error becomes internal",
			err:        stderrors.New("nil pointer"),
			jobRetries: 3,
			wantAction: ActionThrow,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(createMockJob(tt.jobRetries), tt.err)
			assert.Equal(t, tt.wantAction, d.Action)
			assert.Equal(t, tt.wantRetries, d.Retries)
			assert.Equal(t, tt.wantCode, d.BPMN.Code)
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewInvalidPipelineStatusError("ARCHIVE")

	bpmnErr := ConvertToBPMNError(stdErr)
	require.NotNil(t, bpmnErr)
	assert.Equal(t, "INVALID_PIPELINE_STATUS", bpmnErr.Code)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.False(t, bpmnErr.Retryable)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "INVALID_PIPELINE_STATUS", vars["errorCode"])
	assert.Equal(t, "INVALID_PIPELINE_STATUS", vars["originalErrorCode"])
	assert.Contains(t, vars["errorDetails"], "ARCHIVE")
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CANDIDATE", GetErrorCategory(ErrCodeDuplicateCandidate))
	assert.Equal(t, "CANDIDATE", GetErrorCategory(ErrCodeInvalidPipelineStatus))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeTemplateNotFound))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeParseError))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternalError))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeNotificationSendFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeQueryTimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeCandidateValidationFailed))
}
