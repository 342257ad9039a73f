package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edudesk/edudesk-api/internal/models"
)

type mockScopeTeacherRepo struct {
	byUser map[string]models.Teacher
}

func (m *mockScopeTeacherRepo) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	if t, ok := m.byUser[userID]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

type mockScopeParentRepo struct {
	byUser map[string]models.Parent
}

func (m *mockScopeParentRepo) FindByUserID(ctx context.Context, userID string) (*models.Parent, error) {
	if p, ok := m.byUser[userID]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

type mockScopeStudentRepo struct {
	byParent map[string][]models.StudentDetail
}

func (m *mockScopeStudentRepo) ListByParent(ctx context.Context, parentID string) ([]models.StudentDetail, error) {
	return m.byParent[parentID], nil
}

func newScopeFixture() *ScopeService {
	teachers := &mockScopeTeacherRepo{byUser: map[string]models.Teacher{
		"u-teacher": {ID: "t-1", UserID: "u-teacher", SchoolID: "school-1"},
	}}
	parents := &mockScopeParentRepo{byUser: map[string]models.Parent{
		"u-parent": {ID: "p-1", UserID: "u-parent", Approved: true},
	}}
	students := &mockScopeStudentRepo{byParent: map[string][]models.StudentDetail{
		"p-1": {
			{Student: models.Student{ID: "st-1"}, SchoolID: "school-1"},
			{Student: models.Student{ID: "st-2"}, SchoolID: "school-1"},
		},
	}}
	return NewScopeService(teachers, parents, students, zap.NewNop())
}

func strPtr(s string) *string { return &s }

func TestScopeResolveMinistry(t *testing.T) {
	svc := newScopeFixture()

	scope, err := svc.Resolve(context.Background(), &models.JWTClaims{UserID: "u-min", Role: models.RoleMinistry})
	require.NoError(t, err)
	assert.True(t, scope.AllSchools())
	assert.Empty(t, scope.SchoolID)
}

func TestScopeResolveSchoolAdmin(t *testing.T) {
	svc := newScopeFixture()

	scope, err := svc.Resolve(context.Background(), &models.JWTClaims{UserID: "u-admin", Role: models.RoleSchoolAdmin, SchoolID: strPtr("school-1")})
	require.NoError(t, err)
	assert.False(t, scope.AllSchools())
	assert.Equal(t, "school-1", scope.SchoolID)
}

func TestScopeResolveTeacher(t *testing.T) {
	svc := newScopeFixture()

	scope, err := svc.Resolve(context.Background(), &models.JWTClaims{UserID: "u-teacher", Role: models.RoleTeacher})
	require.NoError(t, err)
	assert.Equal(t, "t-1", scope.TeacherID)
	// School comes from the teacher record when claims carry none.
	assert.Equal(t, "school-1", scope.SchoolID)
}

func TestScopeResolveTeacherWithoutRecord(t *testing.T) {
	svc := newScopeFixture()

	scope, err := svc.Resolve(context.Background(), &models.JWTClaims{UserID: "u-ghost", Role: models.RoleTeacher, SchoolID: strPtr("school-2")})
	require.NoError(t, err)
	assert.Empty(t, scope.TeacherID)
	assert.Equal(t, "school-2", scope.SchoolID)
}

func TestScopeResolveParent(t *testing.T) {
	svc := newScopeFixture()

	scope, err := svc.Resolve(context.Background(), &models.JWTClaims{UserID: "u-parent", Role: models.RoleParent})
	require.NoError(t, err)
	assert.Equal(t, "p-1", scope.ParentID)
	assert.Equal(t, []string{"st-1", "st-2"}, scope.StudentIDs)
	assert.True(t, scope.HasStudent("st-1"))
	assert.False(t, scope.HasStudent("st-9"))
	// The children's school becomes the parent's read scope.
	assert.Equal(t, "school-1", scope.SchoolID)
}

func TestScopeResolveParentWithoutRecord(t *testing.T) {
	svc := newScopeFixture()

	scope, err := svc.Resolve(context.Background(), &models.JWTClaims{UserID: "u-lonely", Role: models.RoleParent})
	require.NoError(t, err)
	assert.Empty(t, scope.ParentID)
	assert.Empty(t, scope.StudentIDs)
	assert.Empty(t, scope.SchoolID)
}

func TestScopeResolveUnknownRole(t *testing.T) {
	svc := newScopeFixture()

	_, err := svc.Resolve(context.Background(), &models.JWTClaims{UserID: "u-x", Role: "janitor"})
	require.Error(t, err)
}
