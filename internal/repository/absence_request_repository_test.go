package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edudesk/edudesk-api/internal/models"
)

func TestAbsenceRequestReview(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAbsenceRequestRepository(db)

	reviewedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE absence_requests SET status = $2, reviewed_by = $3, reviewed_at = $4 WHERE id = $1 AND status = 'pending'")).
		WithArgs("r-1", models.AbsenceStatusApproved, "u-admin", reviewedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	reviewed, err := repo.Review(context.Background(), "r-1", models.AbsenceStatusApproved, "u-admin", reviewedAt)
	require.NoError(t, err)
	assert.True(t, reviewed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAbsenceRequestReviewAlreadySettled(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAbsenceRequestRepository(db)

	// No row is still pending, so the guarded update touches nothing.
	mock.ExpectExec("UPDATE absence_requests").
		WillReturnResult(sqlmock.NewResult(0, 0))

	reviewed, err := repo.Review(context.Background(), "r-1", models.AbsenceStatusRejected, "u-admin", time.Now())
	require.NoError(t, err)
	assert.False(t, reviewed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAbsenceRequestCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAbsenceRequestRepository(db)

	mock.ExpectExec("INSERT INTO absence_requests").WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.AbsenceRequest{
		StudentID: "st-1",
		ParentID:  "p-1",
		StartDate: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Reason:    "family trip",
		Status:    models.AbsenceStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), request))
	assert.NotEmpty(t, request.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
