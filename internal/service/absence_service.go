package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edudesk/edudesk-api/internal/models"
	appErrors "github.com/edudesk/edudesk-api/pkg/errors"
)

type absenceRequestRepository interface {
	List(ctx context.Context, filter models.AbsenceRequestFilter) ([]models.AbsenceRequestDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.AbsenceRequestDetail, error)
	Create(ctx context.Context, request *models.AbsenceRequest) error
	Review(ctx context.Context, id string, status models.AbsenceStatus, reviewerID string, reviewedAt time.Time) (bool, error)
}

// AbsenceService manages the absence request lifecycle: parents submit,
// school admins review exactly once.
type AbsenceService struct {
	repo      absenceRequestRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAbsenceService constructs the absence service.
func NewAbsenceService(repo absenceRequestRepository, validate *validator.Validate, logger *zap.Logger) *AbsenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AbsenceService{repo: repo, validator: validate, logger: logger}
}

// SubmitAbsenceRequest is the payload for a new absence request.
type SubmitAbsenceRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Reason    string `json:"reason" validate:"required,max=500"`
}

// AbsenceListRequest describes filters for listing absence requests.
type AbsenceListRequest struct {
	StudentID string  `form:"student_id" json:"student_id"`
	Status    *string `form:"status" json:"status"`
	Page      int     `form:"page" json:"page"`
	PageSize  int     `form:"page_size" json:"page_size"`
}

// ReviewAbsenceRequest carries the reviewer's decision.
type ReviewAbsenceRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// Submit files a pending absence request for one of the caller's children.
func (s *AbsenceService) Submit(ctx context.Context, scope models.Scope, req SubmitAbsenceRequest) (*models.AbsenceRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence request payload")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date is before start date")
	}
	if scope.ParentID == "" || !scope.HasStudent(req.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is outside your scope")
	}

	request := &models.AbsenceRequest{
		StudentID: req.StudentID,
		ParentID:  scope.ParentID,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
		Status:    models.AbsenceStatusPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create absence request")
	}
	s.logger.Info("absence request submitted",
		zap.String("request_id", request.ID),
		zap.String("student_id", request.StudentID))
	return request, nil
}

// List returns absence requests visible within the caller's scope.
func (s *AbsenceService) List(ctx context.Context, scope models.Scope, req AbsenceListRequest) ([]models.AbsenceRequestDetail, *models.Pagination, error) {
	var status *models.AbsenceStatus
	if req.Status != nil && *req.Status != "" {
		st := models.AbsenceStatus(*req.Status)
		if !st.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown absence status %q", *req.Status))
		}
		status = &st
	}

	filter := models.AbsenceRequestFilter{
		StudentID: req.StudentID,
		Status:    status,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	switch scope.Role {
	case models.RoleParent:
		if scope.ParentID == "" {
			return []models.AbsenceRequestDetail{}, emptyPagination(req.Page, req.PageSize), nil
		}
		filter.ParentID = scope.ParentID
	default:
		if !scope.AllSchools() {
			if scope.SchoolID == "" {
				return []models.AbsenceRequestDetail{}, emptyPagination(req.Page, req.PageSize), nil
			}
			filter.SchoolID = scope.SchoolID
		}
	}

	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absence requests")
	}
	return requests, paginationFor(req.Page, req.PageSize, total), nil
}

// Get fetches a single absence request, enforcing scope.
func (s *AbsenceService) Get(ctx context.Context, scope models.Scope, id string) (*models.AbsenceRequestDetail, error) {
	request, err := s.loadInScope(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Review settles a pending request. A request can be reviewed exactly
// once; concurrent or repeated reviews surface as a conflict.
func (s *AbsenceService) Review(ctx context.Context, scope models.Scope, id string, req ReviewAbsenceRequest) (*models.AbsenceRequestDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	request, err := s.loadInScope(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.AbsenceStatusPending {
		return nil, appErrors.Clone(appErrors.ErrAlreadyReviewed, "request already reviewed")
	}

	reviewed, err := s.repo.Review(ctx, id, models.AbsenceStatus(req.Status), scope.UserID, time.Now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review absence request")
	}
	if !reviewed {
		return nil, appErrors.Clone(appErrors.ErrAlreadyReviewed, "request already reviewed")
	}
	s.logger.Info("absence request reviewed",
		zap.String("request_id", id),
		zap.String("status", req.Status),
		zap.String("reviewer", scope.UserID))

	return s.repo.FindByID(ctx, id)
}

func (s *AbsenceService) loadInScope(ctx context.Context, scope models.Scope, id string) (*models.AbsenceRequestDetail, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "absence request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absence request")
	}
	switch scope.Role {
	case models.RoleParent:
		if request.ParentID != scope.ParentID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "request is outside your scope")
		}
	default:
		if !scope.AllSchools() && request.SchoolID != scope.SchoolID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "request is outside your scope")
		}
	}
	return request, nil
}
