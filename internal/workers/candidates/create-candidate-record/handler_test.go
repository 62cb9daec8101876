package createcandidaterecord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"insertion-workers/internal/candidates"
	apperrors "insertion-workers/internal/common/errors"
	"insertion-workers/internal/common/logger"
	"insertion-workers/internal/eligibility"
)

var fixedNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

type MockRepository struct{ mock.Mock }

func (m *MockRepository) ExistsByEmailAndCall(ctx context.Context, email, callID string) (bool, error) {
	args := m.Called(ctx, email, callID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Insert(ctx context.Context, c *candidates.Candidate) error {
	args := m.Called(ctx, c)
	if c.ID == "" {
		c.ID = "cand-new"
	}
	c.CreatedAt = fixedNow
	return args.Error(0)
}

func (m *MockRepository) InsertAudit(ctx context.Context, e candidates.AuditEntry) error {
	return m.Called(ctx, e).Error(0)
}

type MockIndexer struct{ mock.Mock }

func (m *MockIndexer) IndexDocument(ctx context.Context, index, id string, doc interface{}) error {
	return m.Called(ctx, index, id, doc).Error(0)
}

func createTestHandler(t *testing.T, repo Repository, indexer Indexer) *Handler {
	log := logger.NewTestLogger(t)
	evaluator := eligibility.NewEvaluator(nil, eligibility.DefaultConfig(), log,
		eligibility.WithClock(func() time.Time { return fixedNow }))
	h := NewHandler(&Config{Timeout: time.Second, CandidateIndex: "candidats"}, repo, evaluator, indexer, log)
	h.now = func() time.Time { return fixedNow }
	return h
}

func createTestInput() *Input {
	return &Input{CandidateData: map[string]interface{}{
		"nom":           "Ndiaye",
		"prenom":        "Moussa",
		"email":         "moussa@example.sn",
		"dateNaissance": "2000-03-01",
		"sexe":          "M",
		"region":        "Thiès",
		"appelId":       "appel-7",
	}}
}

func TestHandler_Execute_Success(t *testing.T) {
	repo := &MockRepository{}
	repo.On("ExistsByEmailAndCall", mock.Anything, "moussa@example.sn", "appel-7").Return(false, nil)
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(c *candidates.Candidate) bool {
		return c.Status == candidates.StatusNew && c.EligibilityStatus == eligibility.StatusEligible && c.CallID == "appel-7"
	})).Return(nil)
	repo.On("InsertAudit", mock.Anything, mock.MatchedBy(func(e candidates.AuditEntry) bool {
		return e.EventType == "candidate_created" && e.ResourceID == "cand-new"
	})).Return(nil)
	indexer := &MockIndexer{}
	indexer.On("IndexDocument", mock.Anything, "candidats", "cand-new", mock.Anything).Return(nil)

	out, err := createTestHandler(t, repo, indexer).Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, "cand-new", out.CandidateID)
	assert.Equal(t, "NOUVEAU", out.Statut)
	assert.Equal(t, eligibility.StatusEligible, out.StatutEligibilite)
	assert.True(t, out.Indexed)
	assert.Equal(t, "2026-06-15T10:00:00Z", out.CreatedAt)
	repo.AssertExpectations(t)
	indexer.AssertExpectations(t)
}

func TestHandler_Execute_Duplicate(t *testing.T) {
	repo := &MockRepository{}
	repo.On("ExistsByEmailAndCall", mock.Anything, "moussa@example.sn", "appel-7").Return(true, nil)

	_, err := createTestHandler(t, repo, nil).Execute(context.Background(), createTestInput())

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeDuplicateCandidate, stdErr.Code)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestHandler_Execute_InvalidData(t *testing.T) {
	repo := &MockRepository{}

	_, err := createTestHandler(t, repo, nil).Execute(context.Background(), &Input{CandidateData: map[string]interface{}{"nom": "Ndiaye"}})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeCandidateValidationFailed, stdErr.Code)
	repo.AssertExpectations(t)
}

func TestHandler_Execute_InsertFails(t *testing.T) {
	repo := &MockRepository{}
	repo.On("ExistsByEmailAndCall", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	_, err := createTestHandler(t, repo, nil).Execute(context.Background(), createTestInput())

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeDatabaseInsertFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Execute_AuditAndIndexFailuresAreNonCritical(t *testing.T) {
	repo := &MockRepository{}
	repo.On("ExistsByEmailAndCall", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	repo.On("InsertAudit", mock.Anything, mock.Anything).Return(errors.New("audit table locked"))
	indexer := &MockIndexer{}
	indexer.On("IndexDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("cluster red"))

	out, err := createTestHandler(t, repo, indexer).Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.False(t, out.Indexed)
}

func TestHandler_Execute_NoEmailSkipsDuplicateCheck(t *testing.T) {
	repo := &MockRepository{}
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	repo.On("InsertAudit", mock.Anything, mock.Anything).Return(nil)

	out, err := createTestHandler(t, repo, nil).Execute(context.Background(), &Input{CandidateData: map[string]interface{}{
		"nom": "Fall", "prenom": "Aminata",
	}})

	require.NoError(t, err)
	assert.Equal(t, eligibility.StatusToVerify, out.StatutEligibilite)
	repo.AssertNotCalled(t, "ExistsByEmailAndCall", mock.Anything, mock.Anything, mock.Anything)
}

// The repository's SQL is covered in the candidates package; this checks the
// handler against the real implementation end to end.
func TestHandler_Execute_WithRepository(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectQuery("SELECT EXISTS").
		WithArgs("moussa@example.sn", "appel-7").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	sqlMock.ExpectExec("INSERT INTO candidats").WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec("INSERT INTO audit_log").WillReturnResult(sqlmock.NewResult(0, 1))

	out, err := createTestHandler(t, candidates.NewRepository(db), nil).Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.NotEmpty(t, out.CandidateID)
	assert.False(t, out.Indexed)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
