// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"insertion-workers/internal/common/config"
	"insertion-workers/internal/common/logger"
)

// Registry opens job workers and closes them on shutdown.
type Registry struct {
	client  zbc.Client
	workers map[string]worker.JobWorker
	logger  logger.Logger
}

func NewRegistry(client zbc.Client, log logger.Logger) *Registry {
	return &Registry{
		client:  client,
		workers: make(map[string]worker.JobWorker),
		logger:  log,
	}
}

// Start opens a worker for taskType unless it is disabled in wcfg.
func (r *Registry) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !wcfg.Enabled {
		r.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	r.workers[taskType] = r.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	r.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

// TaskTypes lists the started workers.
func (r *Registry) TaskTypes() []string {
	out := make([]string, 0, len(r.workers))
	for t := range r.workers {
		out = append(out, t)
	}
	return out
}

// Close stops every worker and waits for in-flight jobs.
func (r *Registry) Close() {
	for taskType, w := range r.workers {
		w.Close()
		w.AwaitClose()
		r.logger.Info("worker stopped", map[string]interface{}{"taskType": taskType})
	}
}
