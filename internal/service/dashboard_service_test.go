package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edudesk/edudesk-api/internal/models"
)

type mockDashboardSchoolRepo struct {
	count int
}

func (m *mockDashboardSchoolRepo) Count(ctx context.Context) (int, error) {
	return m.count, nil
}

type mockDashboardAbsenceRepo struct {
	pending    int
	lastFilter models.AbsenceRequestFilter
}

func (m *mockDashboardAbsenceRepo) List(ctx context.Context, filter models.AbsenceRequestFilter) ([]models.AbsenceRequestDetail, int, error) {
	m.lastFilter = filter
	return nil, m.pending, nil
}

type mockDashboardAnnouncementRepo struct {
	announcements []models.Announcement
	lastFilter    models.AnnouncementFilter
}

func (m *mockDashboardAnnouncementRepo) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	m.lastFilter = filter
	return m.announcements, len(m.announcements), nil
}

type dashboardFixture struct {
	svc           *DashboardService
	schools       *mockDashboardSchoolRepo
	attendance    *mockReportRepo
	absences      *mockDashboardAbsenceRepo
	announcements *mockDashboardAnnouncementRepo
}

func newDashboardFixture() *dashboardFixture {
	f := &dashboardFixture{
		schools: &mockDashboardSchoolRepo{count: 4},
		attendance: &mockReportRepo{
			byClass: []models.ClassStatusCounts{
				{ClassID: "c-1", ClassName: "7A", StudentCount: 5, Present: 30, Absent: 5},
			},
			byStudent: map[string]models.StatusCounts{
				"st-1": {Present: 18, Absent: 2},
			},
		},
		absences:      &mockDashboardAbsenceRepo{pending: 3},
		announcements: &mockDashboardAnnouncementRepo{announcements: []models.Announcement{{ID: "an-1", Title: "Term starts Monday"}}},
	}
	f.svc = NewDashboardService(DashboardParams{
		Schools:       f.schools,
		Attendance:    f.attendance,
		Absences:      f.absences,
		Announcements: f.announcements,
		Cache:         NewCacheService(nil, nil, 0, nil),
		Logger:        zap.NewNop(),
	})
	return f
}

func TestDashboardMinistry(t *testing.T) {
	f := newDashboardFixture()

	data, err := f.svc.Build(context.Background(), models.Scope{UserID: "u-min", Role: models.RoleMinistry})
	require.NoError(t, err)

	require.NotNil(t, data.SchoolCount)
	assert.Equal(t, 4, *data.SchoolCount)
	require.NotNil(t, data.AttendanceRate)
	assert.Equal(t, 86, *data.AttendanceRate)
	assert.Empty(t, f.attendance.lastSchoolID)
	assert.Nil(t, data.PendingAbsences)
	assert.Len(t, data.Announcements, 1)
}

func TestDashboardSchoolAdmin(t *testing.T) {
	f := newDashboardFixture()

	data, err := f.svc.Build(context.Background(), models.Scope{UserID: "u-admin", Role: models.RoleSchoolAdmin, SchoolID: "school-1"})
	require.NoError(t, err)

	assert.Nil(t, data.SchoolCount)
	require.NotNil(t, data.PendingAbsences)
	assert.Equal(t, 3, *data.PendingAbsences)
	require.NotNil(t, f.absences.lastFilter.Status)
	assert.Equal(t, models.AbsenceStatusPending, *f.absences.lastFilter.Status)
	assert.Equal(t, "school-1", f.attendance.lastSchoolID)
}

func TestDashboardTeacher(t *testing.T) {
	f := newDashboardFixture()

	data, err := f.svc.Build(context.Background(), models.Scope{UserID: "u-t", Role: models.RoleTeacher, SchoolID: "school-1", TeacherID: "t-1"})
	require.NoError(t, err)

	require.NotNil(t, data.AttendanceRate)
	assert.Nil(t, data.PendingAbsences)
	assert.Len(t, data.Classes, 1)
}

func TestDashboardParent(t *testing.T) {
	f := newDashboardFixture()

	data, err := f.svc.Build(context.Background(), models.Scope{UserID: "u-p", Role: models.RoleParent, ParentID: "p-1", SchoolID: "school-1", StudentIDs: []string{"st-1", "st-2"}})
	require.NoError(t, err)

	assert.Nil(t, data.AttendanceRate)
	require.Len(t, data.Children, 2)
	assert.Equal(t, 90, data.Children[0].Rate)
	// A child with no rows in the window reads as fully present.
	assert.Equal(t, 100, data.Children[1].Rate)
	// Announcements are bounded by the children's school.
	assert.Equal(t, "school-1", f.announcements.lastFilter.SchoolID)
}

func TestDashboardWithoutSchoolStaysEmpty(t *testing.T) {
	f := newDashboardFixture()

	data, err := f.svc.Build(context.Background(), models.Scope{UserID: "u-new", Role: models.RoleSchoolAdmin})
	require.NoError(t, err)

	assert.Nil(t, data.AttendanceRate)
	assert.Nil(t, data.PendingAbsences)
	assert.Empty(t, data.Classes)
	assert.Empty(t, data.Announcements)
}

func TestDashboardAnnouncementLimit(t *testing.T) {
	f := newDashboardFixture()

	_, err := f.svc.Build(context.Background(), models.Scope{UserID: "u-admin", Role: models.RoleSchoolAdmin, SchoolID: "school-1"})
	require.NoError(t, err)
	assert.Equal(t, 5, f.announcements.lastFilter.PageSize)
	assert.Equal(t, "school-1", f.announcements.lastFilter.SchoolID)
}
