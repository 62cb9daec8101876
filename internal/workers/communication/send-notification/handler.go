// internal/workers/communication/send-notification/handler.go
package sendnotification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"insertion-workers/internal/candidates"
	"insertion-workers/internal/common/camunda"
	apperrors "insertion-workers/internal/common/errors"
	"insertion-workers/internal/common/logger"
	"insertion-workers/pkg/registry"
)

const (
	TaskType = "send-notification"
)

// EmailSender is implemented by aws.SESClient.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
}

// SMSSender is implemented by aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Recipients interface {
	Get(ctx context.Context, id string) (*candidates.Candidate, error)
}

type Handler struct {
	config     *Config
	recipients Recipients
	templates  *registry.TemplateRegistry
	email      EmailSender
	sms        SMSSender
	runner     *camunda.Runner
	now        func() time.Time
	logger     logger.Logger
}

// NewHandler wires the senders. A nil sender disables its channel.
func NewHandler(config *Config, recipients Recipients, templates *registry.TemplateRegistry, email EmailSender, sms SMSSender, log logger.Logger, opts ...camunda.RunnerOption) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		recipients: recipients,
		templates:  templates,
		email:      email,
		sms:        sms,
		runner:     camunda.NewRunner(TaskType, config.Timeout, log, opts...),
		now:        time.Now,
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.execute)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		Channels:       []string{},
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}

	tmpl, ok := h.templates.Lookup(input.NotificationType)
	if !ok {
		return nil, apperrors.NewTemplateNotFoundError(input.NotificationType)
	}

	candidate, err := h.recipients.Get(ctx, input.CandidateID)
	if errors.Is(err, candidates.ErrCandidateNotFound) {
		h.logger.Warn("recipient not found", map[string]interface{}{
			"candidatId": input.CandidateID,
		})
		return output, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}

	data := templateData(candidate, input.Metadata)

	if h.config.EmailEnabled && h.email != nil && candidate.Email != "" && tmpl.Supports(registry.ChannelEmail) {
		subject := registry.Render(tmpl.Subject, data)
		body := registry.Render(tmpl.Body, data)
		if _, err := h.email.SendEmail(ctx, candidate.Email, subject, body); err != nil {
			return nil, apperrors.NewNotificationSendFailedError(registry.ChannelEmail, err)
		}
		output.Channels = append(output.Channels, registry.ChannelEmail)
	}

	// Texts only go out for high priority notifications.
	if h.config.SMSEnabled && h.sms != nil && candidate.Phone != "" && tmpl.SMS != "" &&
		tmpl.Supports(registry.ChannelSMS) && strings.EqualFold(input.Priority, PriorityHigh) {
		_, err := h.sms.SendSMS(ctx, candidate.Phone, registry.Render(tmpl.SMS, data))
		switch {
		case err == nil:
			output.Channels = append(output.Channels, registry.ChannelSMS)
		case len(output.Channels) == 0:
			return nil, apperrors.NewNotificationSendFailedError(registry.ChannelSMS, err)
		default:
			// A job retry would send the email again.
			h.logger.Warn("sms failed after email was sent", map[string]interface{}{
				"candidatId": input.CandidateID,
				"error":      err,
			})
			output.FailedChannels = append(output.FailedChannels, registry.ChannelSMS)
		}
	}

	switch {
	case len(output.FailedChannels) > 0:
		output.Status = StatusPartial
	case len(output.Channels) > 0:
		output.Status = StatusSent
	}

	h.logger.Info("notification processed", map[string]interface{}{
		"candidatId":       input.CandidateID,
		"notificationType": input.NotificationType,
		"status":           output.Status,
		"channels":         output.Channels,
	})
	return output, nil
}

// templateData exposes the candidate under its column names. Metadata wins.
func templateData(c *candidates.Candidate, metadata map[string]interface{}) map[string]interface{} {
	data := map[string]interface{}{
		"candidatId":        c.ID,
		"nom":               c.LastName,
		"prenom":            c.FirstName,
		"email":             c.Email,
		"appelId":           c.CallID,
		"statut":            string(c.Status),
		"statutEligibilite": string(c.EligibilityStatus),
	}
	for k, v := range metadata {
		data[k] = v
	}
	return data
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
