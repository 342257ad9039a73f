package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edudesk/edudesk-api/internal/models"
	appErrors "github.com/edudesk/edudesk-api/pkg/errors"
)

type issueRepository interface {
	List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, int, error)
	FindByID(ctx context.Context, id string) (*models.Issue, error)
	Create(ctx context.Context, issue *models.Issue) error
	UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error
}

// ReportIssueRequest holds payload for reporting an issue.
type ReportIssueRequest struct {
	Subject     string `json:"subject" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
}

// UpdateIssueStatusRequest advances an issue through its workflow.
type UpdateIssueStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// IssueService handles issue reports. Any role may report; admins
// advance the status.
type IssueService struct {
	repo      issueRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIssueService constructs the issue service.
func NewIssueService(repo issueRepository, validate *validator.Validate, logger *zap.Logger) *IssueService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{repo: repo, validator: validate, logger: logger}
}

// List returns issues. Teachers and parents see only their own reports.
func (s *IssueService) List(ctx context.Context, scope models.Scope, filter models.IssueFilter) ([]models.Issue, *models.Pagination, error) {
	switch scope.Role {
	case models.RoleMinistry, models.RoleSchoolAdmin:
	default:
		filter.ReportedBy = scope.UserID
	}
	issues, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list issues")
	}
	return issues, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Report files a new issue as the caller.
func (s *IssueService) Report(ctx context.Context, scope models.Scope, req ReportIssueRequest) (*models.Issue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid issue payload")
	}
	issue := &models.Issue{
		ReportedBy:   scope.UserID,
		ReporterRole: scope.Role,
		Subject:      req.Subject,
		Description:  req.Description,
		Status:       models.IssueStatusOpen,
	}
	if err := s.repo.Create(ctx, issue); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create issue")
	}
	s.logger.Info("issue reported", zap.String("issue_id", issue.ID), zap.String("reporter", issue.ReportedBy))
	return issue, nil
}

// UpdateStatus advances an issue's workflow status.
func (s *IssueService) UpdateStatus(ctx context.Context, id string, req UpdateIssueStatusRequest) (*models.Issue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	status := models.IssueStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown issue status %q", req.Status))
	}
	issue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "issue not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update issue status")
	}
	issue.Status = status
	s.logger.Info("issue status updated", zap.String("issue_id", id), zap.String("status", req.Status))
	return issue, nil
}
