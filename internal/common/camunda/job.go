// internal/common/camunda/job.go
package camunda

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "insertion-workers/internal/common/errors"
	"insertion-workers/internal/common/logger"
	"insertion-workers/internal/common/metrics"
	"insertion-workers/internal/common/observability"
)

// Completer sends the final command for a job.
type Completer interface {
	Complete(ctx context.Context, client worker.JobClient, job entities.Job, variables interface{}) error
	Fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) apperrors.Decision
}

type zeebeCompleter struct {
	errors *apperrors.ErrorHandler
}

func (z zeebeCompleter) Complete(ctx context.Context, client worker.JobClient, job entities.Job, variables interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(variables)
	if err != nil {
		return err
	}
	_, err = cmd.Send(ctx)
	return err
}

func (z zeebeCompleter) Fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) apperrors.Decision {
	return z.errors.HandleJobError(ctx, client, job, err)
}

// Runner owns the job lifecycle shared by every worker: decode variables,
// bound execution, complete or fail, record metrics.
type Runner struct {
	taskType  string
	timeout   time.Duration
	completer Completer
	obs       *observability.Observability
	logger    logger.Logger
}

type RunnerOption func(*Runner)

func WithObservability(obs *observability.Observability) RunnerOption {
	return func(r *Runner) { r.obs = obs }
}

func WithCompleter(c Completer) RunnerOption {
	return func(r *Runner) { r.completer = c }
}

func NewRunner(taskType string, timeout time.Duration, log logger.Logger, opts ...RunnerOption) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	r := &Runner{
		taskType:  taskType,
		timeout:   timeout,
		completer: zeebeCompleter{errors: apperrors.NewErrorHandler(log)},
		logger:    log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run decodes the job variables into In, calls exec and reports the outcome
// to the broker.
func Run[In any, Out any](r *Runner, client worker.JobClient, job entities.Job, exec func(context.Context, *In) (*Out, error)) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(r.taskType).Inc()
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(r.taskType).Dec()
		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(r.taskType).Observe(elapsed.Seconds())
		r.obs.RecordJob(context.Background(), r.taskType, elapsed)
	}()

	r.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input In
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		r.fail(client, job, apperrors.NewParseError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	output, err := exec(ctx, &input)
	if err != nil {
		r.fail(client, job, err)
		return
	}

	if err := r.completer.Complete(context.Background(), client, job, output); err != nil {
		r.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(r.taskType).Inc()
	r.logger.Info("job completed", map[string]interface{}{"jobKey": job.Key})
}

func (r *Runner) fail(client worker.JobClient, job entities.Job, err error) {
	d := r.completer.Fail(context.Background(), client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(r.taskType, string(d.Standard.Code)).Inc()
}
