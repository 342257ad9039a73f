package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edudesk/edudesk-api/internal/models"
)

func TestAttendanceReplaceForClassDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rows := []models.Attendance{
		{StudentID: "st-1", ClassID: "class-1", SubjectID: "sub-1", TeacherID: "t-1", Date: date, Status: models.AttendanceStatusPresent},
		{StudentID: "st-2", ClassID: "class-1", SubjectID: "sub-1", TeacherID: "t-1", Date: date, Status: models.AttendanceStatusAbsent},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance WHERE class_id = $1 AND date = $2")).
		WithArgs("class-1", date).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO attendance").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO attendance").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ReplaceForClassDate(context.Background(), "class-1", date, rows)
	require.NoError(t, err)
	assert.NotEmpty(t, rows[0].ID)
	assert.NotEmpty(t, rows[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceReplaceRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attendance").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO attendance").WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.ReplaceForClassDate(context.Background(), "class-1", date, []models.Attendance{
		{StudentID: "st-1", ClassID: "class-1", Date: date, Status: models.AttendanceStatusPresent},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceReplaceEmptySheetClearsDay(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attendance").
		WithArgs("class-1", date).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceForClassDate(context.Background(), "class-1", date, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceListParentSetFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "student_id", "class_id", "subject_id", "teacher_id", "date", "status", "created_at", "updated_at", "student_name", "class_name"}).
		AddRow("a-1", "st-1", "class-1", "sub-1", "t-1", now, "present", now, now, "Alice", "7A")
	mock.ExpectQuery(regexp.QuoteMeta("a.student_id = ANY($1)")).
		WillReturnRows(listRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.AttendanceFilter{StudentIDs: []string{"st-1", "st-2"}})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Alice", records[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceListClampsOversizedPage(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	// An out-of-range page size falls back to the default, matching the
	// pagination metadata the service reports.
	listRows := sqlmock.NewRows([]string{"id", "student_id", "class_id", "subject_id", "teacher_id", "date", "status", "created_at", "updated_at", "student_name", "class_name"})
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 20 OFFSET 0")).
		WillReturnRows(listRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.AttendanceFilter{Page: 1, PageSize: 150})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceCountsByClass(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	from := time.Date(2026, 2, 24, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	countRows := sqlmock.NewRows([]string{"class_id", "class_name", "student_count", "present", "absent", "late", "excused"}).
		AddRow("class-1", "7A", 5, 28, 3, 2, 2)
	mock.ExpectQuery(regexp.QuoteMeta("c.school_id = $3")).
		WithArgs(from, to, "school-1").
		WillReturnRows(countRows)

	counts, err := repo.CountsByClass(context.Background(), "school-1", from, to)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 28, counts[0].Present)
	assert.NoError(t, mock.ExpectationsWereMet())
}
