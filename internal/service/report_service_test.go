package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edudesk/edudesk-api/internal/models"
)

type mockReportRepo struct {
	byClass       []models.ClassStatusCounts
	byStudent     map[string]models.StatusCounts
	lastSchoolID  string
	lastFrom      time.Time
	lastTo        time.Time
	byClassCalled int
}

func (m *mockReportRepo) CountsByClass(ctx context.Context, schoolID string, from, to time.Time) ([]models.ClassStatusCounts, error) {
	m.lastSchoolID = schoolID
	m.lastFrom, m.lastTo = from, to
	m.byClassCalled++
	return m.byClass, nil
}

func (m *mockReportRepo) CountsForStudent(ctx context.Context, studentID string, from, to time.Time) (*models.StatusCounts, error) {
	counts := m.byStudent[studentID]
	return &counts, nil
}

type mockReportStudentRepo struct {
	students map[string]models.StudentDetail
}

func (m *mockReportStudentRepo) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func newReportFixture(repo *mockReportRepo) *ReportService {
	students := &mockReportStudentRepo{students: map[string]models.StudentDetail{
		"st-1": {Student: models.Student{ID: "st-1", FullName: "Alice"}, SchoolID: "school-1"},
	}}
	return NewReportService(repo, students, NewCacheService(nil, nil, 0, nil), nil, nil, zap.NewNop(), ReportConfig{})
}

func adminScope() models.Scope {
	return models.Scope{Role: models.RoleSchoolAdmin, SchoolID: "school-1"}
}

func TestReportAttendanceRatesAndOrdering(t *testing.T) {
	repo := &mockReportRepo{byClass: []models.ClassStatusCounts{
		{ClassID: "c-1", ClassName: "7A", StudentCount: 5, Present: 4, Absent: 1},
		{ClassID: "c-2", ClassName: "7B", StudentCount: 5, Present: 28, Absent: 3, Late: 2, Excused: 2},
		{ClassID: "c-3", ClassName: "8A", StudentCount: 4},
	}}
	svc := newReportFixture(repo)

	report, err := svc.Attendance(context.Background(), adminScope(), models.ReportWindowWeek)
	require.NoError(t, err)

	assert.Equal(t, "school-1", repo.lastSchoolID)
	require.Len(t, report.Classes, 3)
	// 4/5 and 28/35 both round to 80; ordering between equals stays stable.
	assert.Equal(t, "7A", report.Classes[0].ClassName)
	assert.Equal(t, 80, report.Classes[0].Rate)
	assert.Equal(t, "7B", report.Classes[1].ClassName)
	assert.Equal(t, 80, report.Classes[1].Rate)
	// A class with no rows in the window reads as zero, not a crash.
	assert.Equal(t, "8A", report.Classes[2].ClassName)
	assert.Equal(t, 0, report.Classes[2].Rate)

	assert.Equal(t, 32, report.Totals.Present)
	assert.Equal(t, 80, report.OverallRate)
}

func TestReportAttendanceWindows(t *testing.T) {
	repo := &mockReportRepo{}
	svc := newReportFixture(repo)

	for _, window := range []models.ReportWindow{models.ReportWindowWeek, models.ReportWindowMonth, models.ReportWindowCal} {
		_, err := svc.Attendance(context.Background(), adminScope(), window)
		require.NoError(t, err)
		assert.False(t, repo.lastTo.Before(repo.lastFrom))
	}

	days := int(repo.lastTo.Sub(repo.lastFrom).Hours() / 24)
	assert.Equal(t, repo.lastTo.Day()-1, days, "calendar window starts on the first of the month")

	_, err := svc.Attendance(context.Background(), adminScope(), "90d")
	require.Error(t, err)
}

func TestReportAttendanceMinistrySeesAllSchools(t *testing.T) {
	repo := &mockReportRepo{}
	svc := newReportFixture(repo)

	_, err := svc.Attendance(context.Background(), models.Scope{Role: models.RoleMinistry}, models.ReportWindowWeek)
	require.NoError(t, err)
	assert.Empty(t, repo.lastSchoolID)
}

func TestReportExportCSV(t *testing.T) {
	rows := make([]models.ClassStatusCounts, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, models.ClassStatusCounts{
			ClassID:      fmt.Sprintf("c-%d", i),
			ClassName:    fmt.Sprintf("7%c", 'A'+i),
			StudentCount: 5,
			Present:      30 - i,
			Absent:       i,
		})
	}
	svc := newReportFixture(&mockReportRepo{byClass: rows})

	out, err := svc.ExportAttendance(context.Background(), adminScope(), models.ReportWindowWeek, ReportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("attendance-report-%s.csv", time.Now().UTC().Format("2006-01-02")), out.Filename)
	assert.Equal(t, "text/csv", out.ContentType)

	lines := strings.Split(strings.TrimSpace(string(out.Content)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Class,Students,Attendance Rate,Present,Absent,Late,Excused", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "100%")
}

func TestReportExportPDF(t *testing.T) {
	svc := newReportFixture(&mockReportRepo{byClass: []models.ClassStatusCounts{
		{ClassID: "c-1", ClassName: "7A", StudentCount: 5, Present: 5},
	}})

	out, err := svc.ExportAttendance(context.Background(), adminScope(), models.ReportWindowWeek, ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.True(t, strings.HasPrefix(string(out.Content), "%PDF"))
}

func TestReportExportUnknownFormat(t *testing.T) {
	svc := newReportFixture(&mockReportRepo{})
	_, err := svc.ExportAttendance(context.Background(), adminScope(), models.ReportWindowWeek, "xlsx")
	require.Error(t, err)
}

func TestReportExportRowLimit(t *testing.T) {
	rows := make([]models.ClassStatusCounts, 10)
	for i := range rows {
		rows[i] = models.ClassStatusCounts{ClassID: fmt.Sprintf("c-%d", i), ClassName: fmt.Sprintf("class %d", i), Present: 1}
	}
	students := &mockReportStudentRepo{}
	svc := NewReportService(&mockReportRepo{byClass: rows}, students, NewCacheService(nil, nil, 0, nil), nil, nil, zap.NewNop(), ReportConfig{MaxExportRows: 4})

	out, err := svc.ExportAttendance(context.Background(), adminScope(), models.ReportWindowWeek, ReportFormatCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out.Content)), "\n")
	assert.Len(t, lines, 5)
}

func TestReportStudentRate(t *testing.T) {
	repo := &mockReportRepo{byStudent: map[string]models.StatusCounts{
		"st-1": {Present: 27, Absent: 2, Late: 1},
	}}
	svc := newReportFixture(repo)

	rate, err := svc.StudentRate(context.Background(), adminScope(), "st-1")
	require.NoError(t, err)
	assert.Equal(t, 90, rate.Rate)
	assert.Equal(t, 30, rate.Counts.Total())
}

func TestReportStudentRateEmptyWindowReadsFull(t *testing.T) {
	svc := newReportFixture(&mockReportRepo{})

	rate, err := svc.StudentRate(context.Background(), adminScope(), "st-1")
	require.NoError(t, err)
	assert.Equal(t, 100, rate.Rate)
}

func TestReportStudentRateScope(t *testing.T) {
	svc := newReportFixture(&mockReportRepo{})

	parent := models.Scope{Role: models.RoleParent, StudentIDs: []string{"st-2"}}
	_, err := svc.StudentRate(context.Background(), parent, "st-1")
	require.Error(t, err)

	otherSchool := models.Scope{Role: models.RoleSchoolAdmin, SchoolID: "school-2"}
	_, err = svc.StudentRate(context.Background(), otherSchool, "st-1")
	require.Error(t, err)

	_, err = svc.StudentRate(context.Background(), models.Scope{Role: models.RoleMinistry}, "st-1")
	require.NoError(t, err)
}
