package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edudesk/edudesk-api/internal/models"
)

type mockAttendanceRepo struct {
	rows       map[string][]models.Attendance
	records    []models.AttendanceRecord
	total      int
	lastFilter models.AttendanceFilter
	replaces   int
}

func (m *mockAttendanceRepo) key(classID string, date time.Time) string {
	return classID + "|" + date.Format("2006-01-02")
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	m.lastFilter = filter
	return m.records, m.total, nil
}

func (m *mockAttendanceRepo) ListForClassDate(ctx context.Context, classID string, date time.Time) ([]models.Attendance, error) {
	return m.rows[m.key(classID, date)], nil
}

func (m *mockAttendanceRepo) ReplaceForClassDate(ctx context.Context, classID string, date time.Time, rows []models.Attendance) error {
	if m.rows == nil {
		m.rows = make(map[string][]models.Attendance)
	}
	m.rows[m.key(classID, date)] = rows
	m.replaces++
	return nil
}

type mockClassRepo struct {
	classes map[string]models.Class
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := m.classes[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

type mockRosterRepo struct {
	roster []models.Student
}

func (m *mockRosterRepo) Roster(ctx context.Context, classID string) ([]models.Student, error) {
	return m.roster, nil
}

func newAttendanceFixture() (*AttendanceService, *mockAttendanceRepo) {
	repo := &mockAttendanceRepo{}
	classes := &mockClassRepo{classes: map[string]models.Class{
		"class-1": {ID: "class-1", Name: "7A", SchoolID: "school-1", Active: true},
	}}
	roster := &mockRosterRepo{roster: []models.Student{
		{ID: "st-1", StudentNumber: "S-1", FullName: "Alice", ClassID: "class-1"},
		{ID: "st-2", StudentNumber: "S-2", FullName: "Bob", ClassID: "class-1"},
		{ID: "st-3", StudentNumber: "S-3", FullName: "Cara", ClassID: "class-1"},
	}}
	svc := NewAttendanceService(repo, classes, roster, NewCacheService(nil, nil, 0, nil), validator.New(), zap.NewNop())
	return svc, repo
}

func teacherScope() models.Scope {
	return models.Scope{UserID: "u-1", Role: models.RoleTeacher, SchoolID: "school-1", TeacherID: "t-1"}
}

func TestAttendanceSheetDefaultsToPresent(t *testing.T) {
	svc, _ := newAttendanceFixture()

	sheet, err := svc.Sheet(context.Background(), teacherScope(), "class-1", "2026-03-02")
	require.NoError(t, err)

	assert.False(t, sheet.Saved)
	require.Len(t, sheet.Entries, 3)
	for _, entry := range sheet.Entries {
		assert.Equal(t, models.AttendanceStatusPresent, entry.Status)
	}
}

func TestAttendanceSheetMergesStoredRows(t *testing.T) {
	svc, repo := newAttendanceFixture()
	date, _ := time.Parse("2006-01-02", "2026-03-02")
	repo.rows = map[string][]models.Attendance{
		repo.key("class-1", date): {
			{StudentID: "st-2", ClassID: "class-1", SubjectID: "sub-1", Date: date, Status: models.AttendanceStatusAbsent},
		},
	}

	sheet, err := svc.Sheet(context.Background(), teacherScope(), "class-1", "2026-03-02")
	require.NoError(t, err)

	assert.True(t, sheet.Saved)
	assert.Equal(t, "sub-1", sheet.SubjectID)
	byStudent := make(map[string]models.AttendanceStatus)
	for _, entry := range sheet.Entries {
		byStudent[entry.StudentID] = entry.Status
	}
	assert.Equal(t, models.AttendanceStatusAbsent, byStudent["st-2"])
	assert.Equal(t, models.AttendanceStatusPresent, byStudent["st-1"])
	assert.Equal(t, models.AttendanceStatusPresent, byStudent["st-3"])
}

func TestAttendanceSaveSheetReplacesAndReturnsState(t *testing.T) {
	svc, repo := newAttendanceFixture()

	req := SaveSheetRequest{
		ClassID:   "class-1",
		SubjectID: "sub-1",
		Date:      "2026-03-02",
		Entries: []SheetEntryInput{
			{StudentID: "st-1", Status: "present"},
			{StudentID: "st-2", Status: "late"},
			{StudentID: "st-3", Status: "absent"},
		},
	}
	sheet, err := svc.SaveSheet(context.Background(), teacherScope(), req)
	require.NoError(t, err)
	assert.True(t, sheet.Saved)
	assert.Equal(t, 1, repo.replaces)

	// Re-saving the corrected sheet replaces rather than duplicates.
	req.Entries[2].Status = "excused"
	sheet, err = svc.SaveSheet(context.Background(), teacherScope(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.replaces)

	statuses := make([]string, 0, len(sheet.Entries))
	for _, entry := range sheet.Entries {
		statuses = append(statuses, string(entry.Status))
	}
	sort.Strings(statuses)
	assert.Equal(t, []string{"excused", "late", "present"}, statuses)

	date, _ := time.Parse("2006-01-02", "2026-03-02")
	stored := repo.rows[repo.key("class-1", date)]
	require.Len(t, stored, 3)
	for _, row := range stored {
		assert.Equal(t, "t-1", row.TeacherID)
		assert.Equal(t, "sub-1", row.SubjectID)
	}
}

func TestAttendanceSaveSheetRejectsBadPayloads(t *testing.T) {
	svc, repo := newAttendanceFixture()
	scope := teacherScope()

	cases := []struct {
		name    string
		entries []SheetEntryInput
	}{
		{"unknown status", []SheetEntryInput{{StudentID: "st-1", Status: "sleeping"}}},
		{"off roster", []SheetEntryInput{{StudentID: "st-99", Status: "present"}}},
		{"duplicate student", []SheetEntryInput{
			{StudentID: "st-1", Status: "present"},
			{StudentID: "st-1", Status: "absent"},
		}},
		{"empty", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SaveSheet(context.Background(), scope, SaveSheetRequest{
				ClassID:   "class-1",
				SubjectID: "sub-1",
				Date:      "2026-03-02",
				Entries:   tc.entries,
			})
			require.Error(t, err)
			assert.Equal(t, 0, repo.replaces)
		})
	}
}

func TestAttendanceSaveSheetMarksWholeClassAbsent(t *testing.T) {
	svc, repo := newAttendanceFixture()

	sheet, err := svc.SaveSheet(context.Background(), teacherScope(), SaveSheetRequest{
		ClassID:   "class-1",
		SubjectID: "sub-1",
		Date:      "2026-03-02",
		Entries: []SheetEntryInput{
			{StudentID: "st-1", Status: "absent"},
			{StudentID: "st-2", Status: "absent"},
			{StudentID: "st-3", Status: "absent"},
		},
	})
	require.NoError(t, err)

	for _, entry := range sheet.Entries {
		assert.Equal(t, models.AttendanceStatusAbsent, entry.Status)
	}

	date, _ := time.Parse("2006-01-02", "2026-03-02")
	stored := repo.rows[repo.key("class-1", date)]
	require.Len(t, stored, 3)
	for _, row := range stored {
		assert.Equal(t, models.AttendanceStatusAbsent, row.Status)
	}
}

func TestAttendanceSaveSheetOutsideScope(t *testing.T) {
	svc, _ := newAttendanceFixture()
	scope := models.Scope{Role: models.RoleTeacher, SchoolID: "school-2", TeacherID: "t-9"}

	_, err := svc.SaveSheet(context.Background(), scope, SaveSheetRequest{
		ClassID:   "class-1",
		SubjectID: "sub-1",
		Date:      "2026-03-02",
		Entries:   []SheetEntryInput{{StudentID: "st-1", Status: "present"}},
	})
	require.Error(t, err)
}

func TestAttendanceListParentScopedToChildren(t *testing.T) {
	svc, repo := newAttendanceFixture()
	scope := models.Scope{Role: models.RoleParent, ParentID: "p-1", StudentIDs: []string{"st-1", "st-2"}}

	_, _, err := svc.List(context.Background(), scope, AttendanceListRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, []string{"st-1", "st-2"}, repo.lastFilter.StudentIDs)

	// Asking for another family's child is refused outright.
	_, _, err = svc.List(context.Background(), scope, AttendanceListRequest{StudentID: "st-9"})
	require.Error(t, err)
}

func TestAttendanceListParentWithoutChildren(t *testing.T) {
	svc, repo := newAttendanceFixture()
	repo.records = []models.AttendanceRecord{{StudentName: "should not leak"}}
	repo.total = 1
	scope := models.Scope{Role: models.RoleParent, ParentID: "p-1"}

	records, pagination, err := svc.List(context.Background(), scope, AttendanceListRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, pagination.TotalCount)
}

func TestAttendanceListSchoolScoped(t *testing.T) {
	svc, repo := newAttendanceFixture()

	_, _, err := svc.List(context.Background(), teacherScope(), AttendanceListRequest{})
	require.NoError(t, err)
	assert.Equal(t, "school-1", repo.lastFilter.SchoolID)
	// Teachers only see rows they recorded themselves.
	assert.Equal(t, "t-1", repo.lastFilter.TeacherID)

	admin := models.Scope{Role: models.RoleSchoolAdmin, SchoolID: "school-1"}
	_, _, err = svc.List(context.Background(), admin, AttendanceListRequest{})
	require.NoError(t, err)
	assert.Equal(t, "school-1", repo.lastFilter.SchoolID)
	assert.Empty(t, repo.lastFilter.TeacherID)

	ministry := models.Scope{Role: models.RoleMinistry}
	_, _, err = svc.List(context.Background(), ministry, AttendanceListRequest{})
	require.NoError(t, err)
	assert.Empty(t, repo.lastFilter.SchoolID)
}

func TestAttendanceListWithoutSchoolReturnsNothing(t *testing.T) {
	svc, repo := newAttendanceFixture()
	repo.records = []models.AttendanceRecord{{StudentName: "should not leak"}}
	repo.total = 1

	for _, scope := range []models.Scope{
		{Role: models.RoleSchoolAdmin},
		{Role: models.RoleTeacher, TeacherID: "t-1"},
	} {
		records, pagination, err := svc.List(context.Background(), scope, AttendanceListRequest{Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Equal(t, 0, pagination.TotalCount)
	}
}
