package sendnotification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"insertion-workers/internal/candidates"
	awsclient "insertion-workers/internal/common/aws"
	apperrors "insertion-workers/internal/common/errors"
	"insertion-workers/internal/common/logger"
	"insertion-workers/internal/eligibility"
	"insertion-workers/pkg/registry"
)

// ==========================
// Mock Implementations
// ==========================

type MockEmailSender struct{ mock.Mock }

func (m *MockEmailSender) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	args := m.Called(ctx, to, subject, body)
	return args.String(0), args.Error(1)
}

type MockSMSSender struct{ mock.Mock }

func (m *MockSMSSender) SendSMS(ctx context.Context, phone, message string) (string, error) {
	args := m.Called(ctx, phone, message)
	return args.String(0), args.Error(1)
}

type MockRecipients struct{ mock.Mock }

func (m *MockRecipients) Get(ctx context.Context, id string) (*candidates.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*candidates.Candidate), args.Error(1)
}

// sesFunc adapts a function to the SES API used by awsclient.SESClient.
type sesFunc func(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)

func (f sesFunc) SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return f(ctx, in, optFns...)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{EmailEnabled: true, SMSEnabled: true, Timeout: time.Second}
}

func createTestRecipient() *candidates.Candidate {
	return &candidates.Candidate{
		ID:                "cand-1",
		LastName:          "Diallo",
		FirstName:         "Mariama",
		Email:             "mariama@example.sn",
		Phone:             "+221770000001",
		CallID:            "appel-3",
		Status:            candidates.StatusDiagnostic,
		EligibilityStatus: eligibility.StatusEligible,
	}
}

func createTestHandler(t *testing.T, cfg *Config, recipients Recipients, email EmailSender, sms SMSSender) *Handler {
	templates, err := registry.LoadRegistry("")
	require.NoError(t, err)
	h := NewHandler(cfg, recipients, templates, email, sms, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC) }
	return h
}

// ==========================
// Tests
// ==========================

func TestHandler_Execute_EmailAndSMS(t *testing.T) {
	recipients := &MockRecipients{}
	recipients.On("Get", mock.Anything, "cand-1").Return(createTestRecipient(), nil)
	email := &MockEmailSender{}
	email.On("SendEmail", mock.Anything, "mariama@example.sn", mock.Anything, mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "Mariama Diallo") && strings.Contains(body, "ELIGIBLE") && strings.Contains(body, "appel-3")
	})).Return("ses-1", nil)
	sms := &MockSMSSender{}
	sms.On("SendSMS", mock.Anything, "+221770000001", "Bonjour Mariama, résultat d'éligibilité : ELIGIBLE.").Return("sns-1", nil)

	out, err := createTestHandler(t, createTestConfig(), recipients, email, sms).Execute(context.Background(), &Input{
		CandidateID:      "cand-1",
		NotificationType: TypeEligibilityResult,
		Priority:         "HIGH",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, []string{"email", "sms"}, out.Channels)
	assert.NotEmpty(t, out.NotificationID)
	assert.Equal(t, "2026-06-15T10:00:00Z", out.SentAt)
	email.AssertExpectations(t)
	sms.AssertExpectations(t)
}

func TestHandler_Execute_SMSOnlyForHighPriority(t *testing.T) {
	recipients := &MockRecipients{}
	recipients.On("Get", mock.Anything, "cand-1").Return(createTestRecipient(), nil)
	email := &MockEmailSender{}
	email.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("ses-1", nil)
	sms := &MockSMSSender{}

	out, err := createTestHandler(t, createTestConfig(), recipients, email, sms).Execute(context.Background(), &Input{
		CandidateID:      "cand-1",
		NotificationType: TypeCandidateRegistered,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"email"}, out.Channels)
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Execute_SMSFailureAfterEmailIsPartial(t *testing.T) {
	recipients := &MockRecipients{}
	recipients.On("Get", mock.Anything, "cand-1").Return(createTestRecipient(), nil)
	email := &MockEmailSender{}
	email.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("ses-1", nil).Once()
	sms := &MockSMSSender{}
	sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("Throttling"))

	out, err := createTestHandler(t, createTestConfig(), recipients, email, sms).Execute(context.Background(), &Input{
		CandidateID:      "cand-1",
		NotificationType: TypeEligibilityResult,
		Priority:         PriorityHigh,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusPartial, out.Status)
	assert.Equal(t, []string{"email"}, out.Channels)
	assert.Equal(t, []string{"sms"}, out.FailedChannels)
	email.AssertNumberOfCalls(t, "SendEmail", 1)
}

func TestHandler_Execute_SMSOnlyFailureFailsJob(t *testing.T) {
	recipient := createTestRecipient()
	recipient.Email = ""
	recipients := &MockRecipients{}
	recipients.On("Get", mock.Anything, "cand-1").Return(recipient, nil)
	sms := &MockSMSSender{}
	sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("Throttling"))

	_, err := createTestHandler(t, createTestConfig(), recipients, &MockEmailSender{}, sms).Execute(context.Background(), &Input{
		CandidateID:      "cand-1",
		NotificationType: TypeEligibilityResult,
		Priority:         PriorityHigh,
	})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, stdErr.Code)
}

func TestHandler_Execute_MetadataOverridesTemplateData(t *testing.T) {
	recipients := &MockRecipients{}
	recipients.On("Get", mock.Anything, "cand-1").Return(createTestRecipient(), nil)
	email := &MockEmailSender{}
	email.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "SELECTIONNE")
	})).Return("ses-1", nil)

	_, err := createTestHandler(t, createTestConfig(), recipients, email, nil).Execute(context.Background(), &Input{
		CandidateID:      "cand-1",
		NotificationType: TypeStageChanged,
		Metadata:         map[string]interface{}{"statut": "SELECTIONNE"},
	})

	require.NoError(t, err)
	email.AssertExpectations(t)
}

func TestHandler_Execute_RecipientNotFound(t *testing.T) {
	recipients := &MockRecipients{}
	recipients.On("Get", mock.Anything, "ghost").Return(nil, fmt.Errorf("%w: ghost", candidates.ErrCandidateNotFound))
	email := &MockEmailSender{}

	out, err := createTestHandler(t, createTestConfig(), recipients, email, nil).Execute(context.Background(), &Input{
		CandidateID:      "ghost",
		NotificationType: TypeEligibilityResult,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.Status)
	assert.Empty(t, out.Channels)
	email.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Execute_ChannelsDisabled(t *testing.T) {
	recipients := &MockRecipients{}
	recipients.On("Get", mock.Anything, "cand-1").Return(createTestRecipient(), nil)

	out, err := createTestHandler(t, &Config{Timeout: time.Second}, recipients, &MockEmailSender{}, &MockSMSSender{}).
		Execute(context.Background(), &Input{CandidateID: "cand-1", NotificationType: TypeEligibilityResult, Priority: "high"})

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.Status)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		getErr   error
		emailErr error
		code     apperrors.ErrorCode
	}{
		{"unknown template", &Input{CandidateID: "cand-1", NotificationType: "welcome_pack"}, nil, nil, apperrors.ErrCodeTemplateNotFound},
		{"recipient lookup fails", &Input{CandidateID: "cand-1", NotificationType: TypeEligibilityResult}, errors.New("pool exhausted"), nil, apperrors.ErrCodeDatabaseConnectionFailed},
		{"email fails", &Input{CandidateID: "cand-1", NotificationType: TypeEligibilityResult}, nil, errors.New("MessageRejected"), apperrors.ErrCodeNotificationSendFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipients := &MockRecipients{}
			if tt.getErr != nil {
				recipients.On("Get", mock.Anything, "cand-1").Return(nil, tt.getErr)
			} else {
				recipients.On("Get", mock.Anything, "cand-1").Return(createTestRecipient(), nil)
			}
			email := &MockEmailSender{}
			email.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", tt.emailErr)

			_, err := createTestHandler(t, createTestConfig(), recipients, email, nil).Execute(context.Background(), tt.input)

			var stdErr *apperrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, tt.code, stdErr.Code)
		})
	}
}

func TestHandler_Execute_ThroughSESClient(t *testing.T) {
	recipients := &MockRecipients{}
	recipients.On("Get", mock.Anything, "cand-1").Return(createTestRecipient(), nil)

	var sent *ses.SendEmailInput
	client := awsclient.NewSESClientWithAPI(sesFunc(func(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		sent = in
		return &ses.SendEmailOutput{MessageId: aws.String("ses-42")}, nil
	}), "noreply@insertion.sn")

	out, err := createTestHandler(t, createTestConfig(), recipients, client, nil).Execute(context.Background(), &Input{
		CandidateID:      "cand-1",
		NotificationType: TypeCandidateRegistered,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSent, out.Status)
	require.NotNil(t, sent)
	assert.Equal(t, "noreply@insertion.sn", aws.ToString(sent.Source))
	assert.Equal(t, "Votre candidature a bien été enregistrée", aws.ToString(sent.Message.Subject.Data))
}
