package validatecandidatedata

import (
	"context"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insertion-workers/internal/common/camunda"
	apperrors "insertion-workers/internal/common/errors"
	"insertion-workers/internal/common/logger"
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
			Key:                12345,
			Type:               TaskType,
			ProcessInstanceKey: 67890,
			Retries:            3,
			Variables:          variables,
		},
	}
}

func createTestHandler(t *testing.T, opts ...camunda.RunnerOption) *Handler {
	h := NewHandler(&Config{Timeout: time.Second}, logger.NewTestLogger(t), opts...)
	h.now = func() time.Time { return time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC) }
	return h
}

func TestHandler_Execute_Valid(t *testing.T) {
	h := createTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{CandidateData: map[string]interface{}{
		"nom":           " Diop ",
		"prenom":        "Awa",
		"email":         "Awa.Diop@Example.SN",
		"telephone":     "+221 77 123 45 67",
		"dateNaissance": "14/02/2001",
		"sexe":          "femme",
		"region":        "Dakar",
	}})

	require.NoError(t, err)
	assert.True(t, out.IsValid)
	assert.Empty(t, out.ValidationErrors)
	assert.Equal(t, "Diop", out.ValidatedData.LastName)
	assert.Equal(t, "awa.diop@example.sn", out.ValidatedData.Email)
	assert.Equal(t, "2001-02-14", out.ValidatedData.DateOfBirth)
	assert.Equal(t, "F", out.ValidatedData.Gender)
}

func TestHandler_Execute_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]interface{}
		mode    string
		details string
	}{
		{"missing identity", map[string]interface{}{"email": "a@b.sn"}, ModeCreate, "nom"},
		{"bad email", map[string]interface{}{"nom": "Diop", "prenom": "Awa", "email": "not-an-email"}, "", "email"},
		{"future birth date", map[string]interface{}{"nom": "Diop", "prenom": "Awa", "dateNaissance": "2030-01-01"}, "", "dateNaissance"},
		{"unknown gender", map[string]interface{}{"sexe": "X"}, ModeUpdate, "sexe"},
		{"wrong type", map[string]interface{}{"nom": 42, "prenom": "Awa"}, "", "nom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t)

			out, err := h.Execute(context.Background(), &Input{CandidateData: tt.data, Mode: tt.mode})

			assert.Nil(t, out)
			var stdErr *apperrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, apperrors.ErrCodeCandidateValidationFailed, stdErr.Code)
			assert.Contains(t, stdErr.Details, tt.details)
		})
	}
}

func TestHandler_Execute_UpdateModeAllowsPartial(t *testing.T) {
	h := createTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{Mode: ModeUpdate, CandidateData: map[string]interface{}{"ville": "Pikine"}})

	require.NoError(t, err)
	assert.Equal(t, "Pikine", out.ValidatedData.City)
}

func TestHandler_Execute_MissingData(t *testing.T) {
	h := createTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeCandidateValidationFailed, stdErr.Code)
}

func TestHandler_Handle_ThrowsBusinessError(t *testing.T) {
	rec := &recordingCompleter{}
	h := createTestHandler(t, camunda.WithCompleter(rec))

	h.Handle(nil, createMockJob(`{"candidateData":{"prenom":"Awa"}}`))

	assert.Nil(t, rec.completed)
	d := apperrors.Decide(createMockJob(""), rec.failed)
	assert.Equal(t, apperrors.ActionThrow, d.Action)
}
