package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/edudesk/edudesk-api/internal/models"
	appErrors "github.com/edudesk/edudesk-api/pkg/errors"
)

type parentRepository interface {
	List(ctx context.Context, filter models.ParentFilter) ([]models.ParentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.ParentDetail, error)
	SetApproval(ctx context.Context, id string, approved bool) error
}

type parentStudentRepository interface {
	ListByParent(ctx context.Context, parentID string) ([]models.StudentDetail, error)
}

// ParentService handles parent listing and the approval workflow.
// Registration itself lives in the auth service; children are derived
// through the student rows pointing back at the parent.
type ParentService struct {
	repo     parentRepository
	students parentStudentRepository
	logger   *zap.Logger
}

// NewParentService constructs the parent service.
func NewParentService(repo parentRepository, students parentStudentRepository, logger *zap.Logger) *ParentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParentService{repo: repo, students: students, logger: logger}
}

// List returns parents within the caller's scope, with children resolved.
func (s *ParentService) List(ctx context.Context, scope models.Scope, filter models.ParentFilter) ([]models.ParentDetail, *models.Pagination, error) {
	if !scope.AllSchools() {
		if scope.SchoolID == "" {
			return []models.ParentDetail{}, emptyPagination(filter.Page, filter.PageSize), nil
		}
		filter.SchoolID = scope.SchoolID
	}
	parents, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list parents")
	}
	for i := range parents {
		children, err := s.students.ListByParent(ctx, parents[i].ID)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve children")
		}
		parents[i].Children = children
	}
	return parents, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single parent with children resolved.
func (s *ParentService) Get(ctx context.Context, scope models.Scope, id string) (*models.ParentDetail, error) {
	parent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent")
	}
	if scope.Role == models.RoleParent && scope.ParentID != id {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "parent is outside your scope")
	}
	children, err := s.students.ListByParent(ctx, parent.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve children")
	}
	parent.Children = children
	return parent, nil
}

// SetApproval approves or revokes a parent account.
func (s *ParentService) SetApproval(ctx context.Context, id string, approved bool) (*models.ParentDetail, error) {
	parent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent")
	}
	if err := s.repo.SetApproval(ctx, id, approved); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update approval")
	}
	parent.Approved = approved
	s.logger.Info("parent approval updated", zap.String("parent_id", id), zap.Bool("approved", approved))
	return parent, nil
}
