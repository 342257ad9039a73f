package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edudesk/edudesk-api/internal/models"
	appErrors "github.com/edudesk/edudesk-api/pkg/errors"
)

type mockAbsenceRepo struct {
	requests   map[string]models.AbsenceRequestDetail
	lastFilter models.AbsenceRequestFilter
}

func (m *mockAbsenceRepo) List(ctx context.Context, filter models.AbsenceRequestFilter) ([]models.AbsenceRequestDetail, int, error) {
	m.lastFilter = filter
	out := make([]models.AbsenceRequestDetail, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, r)
	}
	return out, len(out), nil
}

func (m *mockAbsenceRepo) FindByID(ctx context.Context, id string) (*models.AbsenceRequestDetail, error) {
	if r, ok := m.requests[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAbsenceRepo) Create(ctx context.Context, request *models.AbsenceRequest) error {
	if m.requests == nil {
		m.requests = make(map[string]models.AbsenceRequestDetail)
	}
	if request.ID == "" {
		request.ID = "generated"
	}
	m.requests[request.ID] = models.AbsenceRequestDetail{AbsenceRequest: *request, SchoolID: "school-1"}
	return nil
}

func (m *mockAbsenceRepo) Review(ctx context.Context, id string, status models.AbsenceStatus, reviewerID string, reviewedAt time.Time) (bool, error) {
	r, ok := m.requests[id]
	if !ok || r.Status != models.AbsenceStatusPending {
		return false, nil
	}
	r.Status = status
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &reviewedAt
	m.requests[id] = r
	return true, nil
}

func pendingRequest(id string) models.AbsenceRequestDetail {
	return models.AbsenceRequestDetail{
		AbsenceRequest: models.AbsenceRequest{
			ID:        id,
			StudentID: "st-1",
			ParentID:  "p-1",
			Status:    models.AbsenceStatusPending,
		},
		SchoolID: "school-1",
	}
}

func parentAbsenceScope() models.Scope {
	return models.Scope{UserID: "u-p", Role: models.RoleParent, ParentID: "p-1", StudentIDs: []string{"st-1", "st-2"}}
}

func TestAbsenceSubmit(t *testing.T) {
	repo := &mockAbsenceRepo{}
	svc := NewAbsenceService(repo, validator.New(), zap.NewNop())

	request, err := svc.Submit(context.Background(), parentAbsenceScope(), SubmitAbsenceRequest{
		StudentID: "st-1",
		StartDate: "2026-03-02",
		EndDate:   "2026-03-04",
		Reason:    "family trip",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AbsenceStatusPending, request.Status)
	assert.Equal(t, "p-1", request.ParentID)
}

func TestAbsenceSubmitRejectsInvalidRanges(t *testing.T) {
	svc := NewAbsenceService(&mockAbsenceRepo{}, validator.New(), zap.NewNop())
	scope := parentAbsenceScope()

	_, err := svc.Submit(context.Background(), scope, SubmitAbsenceRequest{
		StudentID: "st-1", StartDate: "2026-03-04", EndDate: "2026-03-02", Reason: "x",
	})
	require.Error(t, err)

	_, err = svc.Submit(context.Background(), scope, SubmitAbsenceRequest{
		StudentID: "st-1", StartDate: "03/02/2026", EndDate: "03/04/2026", Reason: "x",
	})
	require.Error(t, err)
}

func TestAbsenceSubmitForeignChild(t *testing.T) {
	svc := NewAbsenceService(&mockAbsenceRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), parentAbsenceScope(), SubmitAbsenceRequest{
		StudentID: "st-9", StartDate: "2026-03-02", EndDate: "2026-03-02", Reason: "x",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAbsenceReviewApproves(t *testing.T) {
	repo := &mockAbsenceRepo{requests: map[string]models.AbsenceRequestDetail{"r-1": pendingRequest("r-1")}}
	svc := NewAbsenceService(repo, validator.New(), zap.NewNop())
	scope := models.Scope{UserID: "u-admin", Role: models.RoleSchoolAdmin, SchoolID: "school-1"}

	reviewed, err := svc.Review(context.Background(), scope, "r-1", ReviewAbsenceRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, models.AbsenceStatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, "u-admin", *reviewed.ReviewedBy)
	assert.NotNil(t, reviewed.ReviewedAt)
}

func TestAbsenceReviewOnlyOnce(t *testing.T) {
	repo := &mockAbsenceRepo{requests: map[string]models.AbsenceRequestDetail{"r-1": pendingRequest("r-1")}}
	svc := NewAbsenceService(repo, validator.New(), zap.NewNop())
	scope := models.Scope{UserID: "u-admin", Role: models.RoleSchoolAdmin, SchoolID: "school-1"}

	_, err := svc.Review(context.Background(), scope, "r-1", ReviewAbsenceRequest{Status: "approved"})
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), scope, "r-1", ReviewAbsenceRequest{Status: "rejected"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyReviewed.Code, appErrors.FromError(err).Code)
}

func TestAbsenceReviewBadDecision(t *testing.T) {
	repo := &mockAbsenceRepo{requests: map[string]models.AbsenceRequestDetail{"r-1": pendingRequest("r-1")}}
	svc := NewAbsenceService(repo, validator.New(), zap.NewNop())
	scope := models.Scope{UserID: "u-admin", Role: models.RoleSchoolAdmin, SchoolID: "school-1"}

	_, err := svc.Review(context.Background(), scope, "r-1", ReviewAbsenceRequest{Status: "maybe"})
	require.Error(t, err)
}

func TestAbsenceReviewOtherSchool(t *testing.T) {
	repo := &mockAbsenceRepo{requests: map[string]models.AbsenceRequestDetail{"r-1": pendingRequest("r-1")}}
	svc := NewAbsenceService(repo, validator.New(), zap.NewNop())
	scope := models.Scope{UserID: "u-admin", Role: models.RoleSchoolAdmin, SchoolID: "school-9"}

	_, err := svc.Review(context.Background(), scope, "r-1", ReviewAbsenceRequest{Status: "approved"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAbsenceListScoping(t *testing.T) {
	repo := &mockAbsenceRepo{requests: map[string]models.AbsenceRequestDetail{"r-1": pendingRequest("r-1")}}
	svc := NewAbsenceService(repo, validator.New(), zap.NewNop())

	_, _, err := svc.List(context.Background(), parentAbsenceScope(), AbsenceListRequest{})
	require.NoError(t, err)
	assert.Equal(t, "p-1", repo.lastFilter.ParentID)

	admin := models.Scope{Role: models.RoleSchoolAdmin, SchoolID: "school-1"}
	_, _, err = svc.List(context.Background(), admin, AbsenceListRequest{})
	require.NoError(t, err)
	assert.Equal(t, "school-1", repo.lastFilter.SchoolID)
	assert.Empty(t, repo.lastFilter.ParentID)

	requests, pagination, err := svc.List(context.Background(), models.Scope{Role: models.RoleParent}, AbsenceListRequest{})
	require.NoError(t, err)
	assert.Empty(t, requests)
	assert.Equal(t, 0, pagination.TotalCount)
}

func TestAbsenceListWithoutSchoolReturnsNothing(t *testing.T) {
	repo := &mockAbsenceRepo{requests: map[string]models.AbsenceRequestDetail{"r-1": pendingRequest("r-1")}}
	svc := NewAbsenceService(repo, validator.New(), zap.NewNop())

	// A school admin not yet assigned to a school sees nothing, not
	// every school's requests.
	requests, pagination, err := svc.List(context.Background(), models.Scope{Role: models.RoleSchoolAdmin}, AbsenceListRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Empty(t, requests)
	assert.Equal(t, 0, pagination.TotalCount)
}
