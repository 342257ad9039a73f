package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edudesk/edudesk-api/internal/models"
)

type mockAnnouncementRepo struct {
	announcements []models.Announcement
	lastFilter    models.AnnouncementFilter
	created       *models.Announcement
}

func (m *mockAnnouncementRepo) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	m.lastFilter = filter
	return m.announcements, len(m.announcements), nil
}

func (m *mockAnnouncementRepo) FindByID(ctx context.Context, id string) (*models.Announcement, error) {
	for _, a := range m.announcements {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAnnouncementRepo) Create(ctx context.Context, announcement *models.Announcement) error {
	announcement.ID = "an-new"
	m.created = announcement
	return nil
}

func (m *mockAnnouncementRepo) Update(ctx context.Context, announcement *models.Announcement) error {
	return nil
}

func (m *mockAnnouncementRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func newAnnouncementFixture() (*AnnouncementService, *mockAnnouncementRepo) {
	other := "school-2"
	repo := &mockAnnouncementRepo{announcements: []models.Announcement{
		{ID: "an-1", Title: "Broadcast"},
		{ID: "an-2", Title: "Other school only", TargetSchoolID: &other},
	}}
	return NewAnnouncementService(repo, validator.New(), zap.NewNop()), repo
}

func TestAnnouncementListScopesBySchool(t *testing.T) {
	svc, repo := newAnnouncementFixture()

	_, _, err := svc.List(context.Background(), models.Scope{Role: models.RoleSchoolAdmin, SchoolID: "school-1"}, models.AnnouncementFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, "school-1", repo.lastFilter.SchoolID)

	_, _, err = svc.List(context.Background(), models.Scope{Role: models.RoleMinistry}, models.AnnouncementFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Empty(t, repo.lastFilter.SchoolID)
}

func TestAnnouncementListParentScopedToChildrenSchool(t *testing.T) {
	svc, repo := newAnnouncementFixture()

	// A parent's scope carries the children's school, bounding what
	// targeted announcements they may read.
	scope := models.Scope{Role: models.RoleParent, ParentID: "p-1", SchoolID: "school-1", StudentIDs: []string{"st-1"}}
	_, _, err := svc.List(context.Background(), scope, models.AnnouncementFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, "school-1", repo.lastFilter.SchoolID)
}

func TestAnnouncementListWithoutSchoolReturnsNothing(t *testing.T) {
	svc, _ := newAnnouncementFixture()

	// A parent with no linked children, or an admin without a school,
	// gets an empty board rather than every school's messages.
	for _, scope := range []models.Scope{
		{Role: models.RoleParent, ParentID: "p-1"},
		{Role: models.RoleSchoolAdmin},
	} {
		announcements, pagination, err := svc.List(context.Background(), scope, models.AnnouncementFilter{Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Empty(t, announcements)
		assert.Equal(t, 0, pagination.TotalCount)
	}
}

func TestAnnouncementGetOutsideScope(t *testing.T) {
	svc, _ := newAnnouncementFixture()

	_, err := svc.Get(context.Background(), models.Scope{Role: models.RoleSchoolAdmin, SchoolID: "school-1"}, "an-2")
	require.Error(t, err)

	announcement, err := svc.Get(context.Background(), models.Scope{Role: models.RoleSchoolAdmin, SchoolID: "school-1"}, "an-1")
	require.NoError(t, err)
	assert.Equal(t, "Broadcast", announcement.Title)
}

func TestAnnouncementCreateForcesOwnSchool(t *testing.T) {
	svc, repo := newAnnouncementFixture()
	foreign := "school-9"

	created, err := svc.Create(context.Background(), models.Scope{UserID: "u-admin", Role: models.RoleSchoolAdmin, SchoolID: "school-1"}, CreateAnnouncementRequest{
		Title:          "Exam week",
		Content:        "Doors open 07:30.",
		TargetSchoolID: &foreign,
		Type:           "announcement",
		Priority:       "high",
	})
	require.NoError(t, err)
	require.NotNil(t, created.TargetSchoolID)
	assert.Equal(t, "school-1", *created.TargetSchoolID)
	assert.Equal(t, "u-admin", repo.created.AuthorID)
}
