// internal/repository/outcomes_test.go
package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/common/logger"
)

func newMockRepo(t *testing.T) (*OutcomeRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	repo := NewOutcomeRepository(db, logger.NewTestLogger(t))
	return repo, mock, func() { db.Close() }
}

var outcomeCols = []string{
	"id", "applicant_id", "scholarship_id", "status", "profile", "criteria", "context", "decided_at",
}

func TestTerminalOutcomes(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	decided := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(outcomeCols).
		AddRow("o-1", "a-1", "sch-1", "approved",
			[]byte(`{"id":"a-1","gwa":1.5}`),
			[]byte(`{"scholarshipId":"sch-1","maxGwa":2.0}`),
			[]byte(`{"submittedDocuments":["Transcript of Records"]}`),
			decided).
		AddRow("o-2", "a-2", "sch-2", "rejected",
			[]byte(`{"id":"a-2","gwa":4.2}`),
			nil,
			nil,
			decided.AddDate(0, 0, 1))

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status IN ('approved', 'rejected')")).
		WillReturnRows(rows)

	outcomes, err := repo.TerminalOutcomes(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	first := outcomes[0]
	assert.Equal(t, "o-1", first.ID)
	assert.Equal(t, "a-1", first.ApplicantID)
	assert.True(t, first.Approved())
	require.NotNil(t, first.Profile.GWA)
	assert.Equal(t, 1.5, *first.Profile.GWA)
	require.NotNil(t, first.Criteria)
	assert.Equal(t, "sch-1", first.Criteria.ScholarshipID)
	require.NotNil(t, first.Context)
	assert.Equal(t, []string{"Transcript of Records"}, first.Context.SubmittedDocuments)

	second := outcomes[1]
	assert.False(t, second.Approved())
	assert.True(t, second.Terminal())
	assert.Nil(t, second.Criteria)
	assert.Nil(t, second.Context)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTerminalOutcomesForScholarship(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	rows := sqlmock.NewRows(outcomeCols).
		AddRow("o-1", "a-1", "sch-1", "approved",
			[]byte(`{"id":"a-1"}`), nil, nil,
			time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))

	mock.ExpectQuery(regexp.QuoteMeta("AND scholarship_id = $1")).
		WithArgs("sch-1").
		WillReturnRows(rows)

	outcomes, err := repo.TerminalOutcomesForScholarship(context.Background(), "sch-1")
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "sch-1", outcomes[0].ScholarshipID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTerminalOutcomes_QueryFailure(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status IN ('approved', 'rejected')")).
		WillReturnError(sql.ErrConnDone)

	_, err := repo.TerminalOutcomes(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeOutcomeQueryFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTerminalOutcomes_MalformedProfileJSON(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	rows := sqlmock.NewRows(outcomeCols).
		AddRow("o-1", "a-1", "sch-1", "approved",
			[]byte(`{broken`), nil, nil,
			time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status IN ('approved', 'rejected')")).
		WillReturnRows(rows)

	_, err := repo.TerminalOutcomes(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeOutcomeQueryFailed))
}

func TestApplicantHistory(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE applicant_id = $1")).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows([]string{"approvals", "rejections"}).AddRow(3, 1))

	history, err := repo.ApplicantHistory(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, 3, history.Approvals)
	assert.Equal(t, 1, history.Rejections)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicantHistory_QueryFailure(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE applicant_id = $1")).
		WithArgs("a-1").
		WillReturnError(sql.ErrConnDone)

	_, err := repo.ApplicantHistory(context.Background(), "a-1")
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeHistoryQueryFailed))
}
