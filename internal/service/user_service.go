package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/edudesk/edudesk-api/internal/models"
	appErrors "github.com/edudesk/edudesk-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// UserService handles account administration.
type UserService struct {
	repo   userRepository
	logger *zap.Logger
}

// NewUserService constructs the user service.
func NewUserService(repo userRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// List returns accounts within the caller's scope.
func (s *UserService) List(ctx context.Context, scope models.Scope, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	if !scope.AllSchools() {
		if scope.SchoolID == "" {
			return []models.User{}, emptyPagination(filter.Page, filter.PageSize), nil
		}
		filter.SchoolID = scope.SchoolID
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single account.
func (s *UserService) Get(ctx context.Context, scope models.Scope, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !scope.AllSchools() && (user.SchoolID == nil || *user.SchoolID != scope.SchoolID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "user is outside your scope")
	}
	return user, nil
}

// SetActive enables or disables an account. Disabled accounts cannot
// sign in.
func (s *UserService) SetActive(ctx context.Context, scope models.Scope, id string, active bool) (*models.User, error) {
	user, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if user.ID == scope.UserID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot change your own active state")
	}
	user.Active = active
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	s.logger.Info("user active state changed", zap.String("user_id", id), zap.Bool("active", active))
	return user, nil
}
