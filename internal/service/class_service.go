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

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Deactivate(ctx context.Context, id string) error
}

// CreateClassRequest holds payload for creating classes. SchoolID is
// required only for ministry callers; school-bound callers always
// create within their own school.
type CreateClassRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	Grade         string `json:"grade" validate:"required,max=20"`
	SchoolID      string `json:"school_id"`
	MobilityLevel string `json:"mobility_level"`
}

// UpdateClassRequest holds payload for updating classes.
type UpdateClassRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	Grade         string `json:"grade" validate:"required,max=20"`
	MobilityLevel string `json:"mobility_level"`
	Active        bool   `json:"active"`
}

// ClassService handles class management.
type ClassService struct {
	repo      classRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs the class service.
func NewClassService(repo classRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, validator: validate, logger: logger}
}

// List returns classes within the caller's scope.
func (s *ClassService) List(ctx context.Context, scope models.Scope, filter models.ClassFilter) ([]models.ClassDetail, *models.Pagination, error) {
	if !scope.AllSchools() {
		if scope.SchoolID == "" {
			return []models.ClassDetail{}, emptyPagination(filter.Page, filter.PageSize), nil
		}
		filter.SchoolID = scope.SchoolID
	}
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single class.
func (s *ClassService) Get(ctx context.Context, scope models.Scope, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if !scope.AllSchools() && class.SchoolID != scope.SchoolID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "class is outside your scope")
	}
	return class, nil
}

// Create registers a new class.
func (s *ClassService) Create(ctx context.Context, scope models.Scope, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	schoolID := req.SchoolID
	if !scope.AllSchools() {
		schoolID = scope.SchoolID
	}
	if schoolID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "school_id is required")
	}
	mobility := models.MobilityLevel(req.MobilityLevel)
	if req.MobilityLevel == "" {
		mobility = models.MobilityLow
	}
	if !mobility.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown mobility level %q", req.MobilityLevel))
	}

	class := &models.Class{
		Name:          req.Name,
		Grade:         req.Grade,
		SchoolID:      schoolID,
		MobilityLevel: mobility,
		Active:        true,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	s.logger.Info("class created", zap.String("class_id", class.ID), zap.String("school_id", schoolID))
	return class, nil
}

// Update modifies an existing class.
func (s *ClassService) Update(ctx context.Context, scope models.Scope, id string, req UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	mobility := models.MobilityLevel(req.MobilityLevel)
	if req.MobilityLevel == "" {
		mobility = class.MobilityLevel
	}
	if !mobility.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown mobility level %q", req.MobilityLevel))
	}
	class.Name = req.Name
	class.Grade = req.Grade
	class.MobilityLevel = mobility
	class.Active = req.Active
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return class, nil
}

// Deactivate retires a class without deleting its history.
func (s *ClassService) Deactivate(ctx context.Context, scope models.Scope, id string) error {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate class")
	}
	s.logger.Info("class deactivated", zap.String("class_id", id))
	return nil
}
