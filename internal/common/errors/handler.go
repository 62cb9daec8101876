// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Action is what the handler does with a failed job.
type Action string

const (
	ActionFail  Action = "fail"  // fail with retries, Zeebe redelivers
	ActionThrow Action = "throw" // throw a BPMN error to the process
)

// Decision is the outcome of Decide for one failed job.
type Decision struct {
	Action   Action
	Retries  int32
	Standard *StandardError
	BPMN     *BPMNError
}

// Decide maps err onto a retry or a BPMN error. Technical errors consume one of
// the job's remaining retries, capped by the code's retry budget.
func Decide(job entities.Job, err error) Decision {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	budget := int32(bpmnErr.Retries)
	if budget > 0 && job.Retries > 1 {
		remaining := job.Retries - 1
		if remaining > budget {
			remaining = budget
		}
		return Decision{Action: ActionFail, Retries: remaining, Standard: stdErr, BPMN: bpmnErr}
	}
	return Decision{Action: ActionThrow, Standard: stdErr, BPMN: bpmnErr}
}

// Normalize unwraps a StandardError from err or wraps err as INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) Decision {
	d := Decide(job, err)
	h.logError(job, d)

	switch d.Action {
	case ActionFail:
		h.failJobWithRetries(ctx, client, job, d)
	default:
		h.throwBPMNError(ctx, client, job, d.BPMN)
	}
	return d
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, d Decision) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(d.Retries).
		ErrorMessage(d.BPMN.Message + ": " + d.BPMN.Details)

	if varsJSON, err := json.Marshal(d.BPMN.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			if _, err := withVars.Send(ctx); err != nil {
				h.logger.Error("failed to send fail job command", map[string]interface{}{"jobKey": job.Key, "error": err})
			}
			return
		}
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send fail job command", map[string]interface{}{"jobKey": job.Key, "error": err})
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			if _, err := withVars.Send(ctx); err != nil {
				h.logger.Error("failed to throw error", map[string]interface{}{"jobKey": job.Key, "error": err})
			}
			return
		}
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{"jobKey": job.Key, "error": err})
	}
}

func (h *ErrorHandler) logError(job entities.Job, d Decision) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(d.Standard.Code),
		"bpmnErrorCode":    d.BPMN.Code,
		"message":          d.BPMN.Message,
		"details":          d.Standard.Details,
		"retryable":        d.Standard.Retryable,
		"action":           string(d.Action),
		"retries":          d.Retries,
		"errorCategory":    GetErrorCategory(d.Standard.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
