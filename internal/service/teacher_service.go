package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/edudesk/edudesk-api/internal/models"
	appErrors "github.com/edudesk/edudesk-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.TeacherDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.TeacherDetail, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Deactivate(ctx context.Context, id string) error
}

type teacherUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// CreateTeacherRequest creates a teacher account: a user with the
// teacher role plus its teacher record.
type CreateTeacherRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	FullName     string   `json:"full_name" validate:"required,max=200"`
	Password     string   `json:"password" validate:"required,min=8"`
	SchoolID     string   `json:"school_id"`
	Subjects     []string `json:"subjects"`
	IsSupervisor bool     `json:"is_supervisor"`
}

// UpdateTeacherRequest holds payload for updating teacher records.
type UpdateTeacherRequest struct {
	Subjects     []string `json:"subjects"`
	IsSupervisor bool     `json:"is_supervisor"`
	Active       bool     `json:"active"`
}

// TeacherService handles teacher management.
type TeacherService struct {
	repo      teacherRepository
	users     teacherUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(repo teacherRepository, users teacherUserRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, users: users, validator: validate, logger: logger}
}

// List returns teachers within the caller's scope.
func (s *TeacherService) List(ctx context.Context, scope models.Scope, filter models.TeacherFilter) ([]models.TeacherDetail, *models.Pagination, error) {
	if !scope.AllSchools() {
		if scope.SchoolID == "" {
			return []models.TeacherDetail{}, emptyPagination(filter.Page, filter.PageSize), nil
		}
		filter.SchoolID = scope.SchoolID
	}
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single teacher.
func (s *TeacherService) Get(ctx context.Context, scope models.Scope, id string) (*models.TeacherDetail, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !scope.AllSchools() && teacher.SchoolID != scope.SchoolID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher is outside your scope")
	}
	return teacher, nil
}

// Create provisions a teacher account and its school record in one call.
func (s *TeacherService) Create(ctx context.Context, scope models.Scope, req CreateTeacherRequest) (*models.TeacherDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	schoolID := req.SchoolID
	if !scope.AllSchools() {
		schoolID = scope.SchoolID
	}
	if schoolID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "school_id is required")
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         models.RoleTeacher,
		SchoolID:     &schoolID,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	teacher := &models.Teacher{
		UserID:       user.ID,
		SchoolID:     schoolID,
		Subjects:     req.Subjects,
		IsSupervisor: req.IsSupervisor,
		Active:       true,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher record")
	}
	s.logger.Info("teacher created", zap.String("teacher_id", teacher.ID), zap.String("school_id", schoolID))

	return &models.TeacherDetail{Teacher: *teacher, FullName: user.FullName, Email: user.Email}, nil
}

// Update modifies an existing teacher record.
func (s *TeacherService) Update(ctx context.Context, scope models.Scope, id string, req UpdateTeacherRequest) (*models.TeacherDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	detail, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	teacher := detail.Teacher
	teacher.Subjects = req.Subjects
	teacher.IsSupervisor = req.IsSupervisor
	teacher.Active = req.Active
	if err := s.repo.Update(ctx, &teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	detail.Teacher = teacher
	return detail, nil
}

// Deactivate retires a teacher record.
func (s *TeacherService) Deactivate(ctx context.Context, scope models.Scope, id string) error {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate teacher")
	}
	s.logger.Info("teacher deactivated", zap.String("teacher_id", id))
	return nil
}
