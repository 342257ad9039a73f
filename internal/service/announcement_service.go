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

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	FindByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id string) error
}

// CreateAnnouncementRequest holds payload for publishing announcements.
// An empty TargetSchoolID from a ministry caller means broadcast.
type CreateAnnouncementRequest struct {
	Title          string  `json:"title" validate:"required,max=200"`
	Content        string  `json:"content" validate:"required"`
	TargetSchoolID *string `json:"target_school_id"`
	Type           string  `json:"type" validate:"required"`
	Priority       string  `json:"priority" validate:"required"`
}

// UpdateAnnouncementRequest holds payload for editing announcements.
type UpdateAnnouncementRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Priority string `json:"priority" validate:"required"`
}

// AnnouncementService handles the announcement board. Ministry posts
// broadcasts or school-targeted messages; school admins post to their
// own school only.
type AnnouncementService struct {
	repo      announcementRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the announcement service.
func NewAnnouncementService(repo announcementRepository, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, validator: validate, logger: logger}
}

// List returns announcements visible within the caller's scope:
// broadcasts plus messages targeted at the caller's school.
func (s *AnnouncementService) List(ctx context.Context, scope models.Scope, filter models.AnnouncementFilter) ([]models.Announcement, *models.Pagination, error) {
	if !scope.AllSchools() {
		if scope.SchoolID == "" {
			return []models.Announcement{}, emptyPagination(filter.Page, filter.PageSize), nil
		}
		filter.SchoolID = scope.SchoolID
	}
	announcements, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return announcements, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single announcement.
func (s *AnnouncementService) Get(ctx context.Context, scope models.Scope, id string) (*models.Announcement, error) {
	announcement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	if !scope.AllSchools() && announcement.TargetSchoolID != nil && *announcement.TargetSchoolID != scope.SchoolID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "announcement is outside your scope")
	}
	return announcement, nil
}

// Create publishes an announcement.
func (s *AnnouncementService) Create(ctx context.Context, scope models.Scope, req CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	aType := models.AnnouncementType(req.Type)
	if !aType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown announcement type %q", req.Type))
	}
	priority := models.AnnouncementPriority(req.Priority)
	if !priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown announcement priority %q", req.Priority))
	}

	target := req.TargetSchoolID
	if !scope.AllSchools() {
		// School-bound authors always post to their own school.
		if scope.SchoolID == "" {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no school in scope")
		}
		schoolID := scope.SchoolID
		target = &schoolID
	}

	announcement := &models.Announcement{
		Title:          req.Title,
		Content:        req.Content,
		AuthorID:       scope.UserID,
		AuthorRole:     scope.Role,
		TargetSchoolID: target,
		Type:           aType,
		Priority:       priority,
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	s.logger.Info("announcement published",
		zap.String("announcement_id", announcement.ID),
		zap.String("type", req.Type),
		zap.Bool("broadcast", target == nil))
	return announcement, nil
}

// Update edits an announcement. Only the author may edit.
func (s *AnnouncementService) Update(ctx context.Context, scope models.Scope, id string, req UpdateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	announcement, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if announcement.AuthorID != scope.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the author may edit an announcement")
	}
	aType := models.AnnouncementType(req.Type)
	if !aType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown announcement type %q", req.Type))
	}
	priority := models.AnnouncementPriority(req.Priority)
	if !priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown announcement priority %q", req.Priority))
	}
	announcement.Title = req.Title
	announcement.Content = req.Content
	announcement.Type = aType
	announcement.Priority = priority
	if err := s.repo.Update(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcement")
	}
	return announcement, nil
}

// Delete removes an announcement. Only the author may delete.
func (s *AnnouncementService) Delete(ctx context.Context, scope models.Scope, id string) error {
	announcement, err := s.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	if announcement.AuthorID != scope.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the author may delete an announcement")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	s.logger.Info("announcement deleted", zap.String("announcement_id", id))
	return nil
}
