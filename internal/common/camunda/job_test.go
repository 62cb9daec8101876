package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "insertion-workers/internal/common/errors"
	"insertion-workers/internal/common/logger"
	"insertion-workers/internal/common/metrics"
)

type recordingCompleter struct {
	completed interface{}
	failed    error
}

func (c *recordingCompleter) Complete(_ context.Context, _ worker.JobClient, _ entities.Job, vars interface{}) error {
	c.completed = vars
	return nil
}

func (c *recordingCompleter) Fail(_ context.Context, _ worker.JobClient, job entities.Job, err error) apperrors.Decision {
	c.failed = err
	return apperrors.Decide(job, err)
}

func createMockJob(variables string) entities.Job {
	return entities.Job{
		ActivatedJob: &pb.ActivatedJob{
			Key:                100,
			Type:               "test-task",
			ProcessInstanceKey: 200,
			Retries:            3,
			Variables:          variables,
		},
	}
}

type echoIn struct {
	Name string `json:"name"`
}

type echoOut struct {
	Greeting string `json:"greeting"`
}

func TestRun_Completes(t *testing.T) {
	rec := &recordingCompleter{}
	r := NewRunner("test-run-complete", time.Second, logger.NewTestLogger(t), WithCompleter(rec))

	Run(r, nil, createMockJob(`{"name":"Awa"}`), func(ctx context.Context, in *echoIn) (*echoOut, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return &echoOut{Greeting: "Bonjour " + in.Name}, nil
	})

	require.NotNil(t, rec.completed)
	assert.Equal(t, "Bonjour Awa", rec.completed.(*echoOut).Greeting)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.WorkerJobsCompleted.WithLabelValues("test-run-complete")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues("test-run-complete")))
}

func TestRun_ParseErrorFails(t *testing.T) {
	rec := &recordingCompleter{}
	r := NewRunner("test-run-parse", time.Second, logger.NewTestLogger(t), WithCompleter(rec))
	called := false

	Run(r, nil, createMockJob(`{not json`), func(context.Context, *echoIn) (*echoOut, error) {
		called = true
		return nil, nil
	})

	assert.False(t, called)
	assert.Nil(t, rec.completed)
	assert.Equal(t, apperrors.ErrCodeParseError, apperrors.Normalize(rec.failed).Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.WorkerJobsFailed.WithLabelValues("test-run-parse", "PARSE_ERROR")))
}

func TestRun_ExecErrorFails(t *testing.T) {
	rec := &recordingCompleter{}
	r := NewRunner("test-run-exec", time.Second, logger.NewTestLogger(t), WithCompleter(rec))

	Run(r, nil, createMockJob(`{}`), func(context.Context, *echoIn) (*echoOut, error) {
		return nil, apperrors.NewCandidateNotFoundError("cand-1")
	})

	require.Error(t, rec.failed)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.WorkerJobsFailed.WithLabelValues("test-run-exec", "CANDIDATE_NOT_FOUND")))
}

func TestRetry(t *testing.T) {
	log := logger.NewTestLogger(t)

	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, log, "flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = Retry(context.Background(), 2, time.Millisecond, log, "down", func() error {
		calls++
		return errors.New("connection refused")
	})
	assert.ErrorContains(t, err, "down failed after 2 attempts")
	assert.Equal(t, 2, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Retry(ctx, 5, time.Hour, log, "cancelled", func() error { return errors.New("boom") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapZeebeError(t *testing.T) {
	err := mapZeebeError(errors.New("rpc error: code = DeadlineExceeded desc = context deadline exceeded"), "topology", 0)
	assert.Equal(t, apperrors.ErrorCode("TIMEOUT_ERROR"), apperrors.Normalize(err).Code)

	err = mapZeebeError(errors.New("connection refused"), "topology", 2)
	std := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrorCode("EXTERNAL_SERVICE_ERROR"), std.Code)
	assert.Contains(t, std.Details, "after 2 attempts")
}
