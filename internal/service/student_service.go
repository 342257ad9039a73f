package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edudesk/edudesk-api/internal/models"
	appErrors "github.com/edudesk/edudesk-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	ExistsByNumber(ctx context.Context, number string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Deactivate(ctx context.Context, id string) error
}

type studentParentRepository interface {
	FindByID(ctx context.Context, id string) (*models.ParentDetail, error)
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	StudentNumber string  `json:"student_number" validate:"required,max=32"`
	FullName      string  `json:"full_name" validate:"required,max=200"`
	ClassID       string  `json:"class_id" validate:"required"`
	ParentID      *string `json:"parent_id"`
	BirthDate     string  `json:"birth_date" validate:"required"`
	Gender        string  `json:"gender" validate:"required,oneof=male female"`
}

// UpdateStudentRequest holds payload for updating students. ParentID is
// the one place the parent/child link is written.
type UpdateStudentRequest struct {
	StudentNumber string  `json:"student_number" validate:"required,max=32"`
	FullName      string  `json:"full_name" validate:"required,max=200"`
	ClassID       string  `json:"class_id" validate:"required"`
	ParentID      *string `json:"parent_id"`
	BirthDate     string  `json:"birth_date" validate:"required"`
	Gender        string  `json:"gender" validate:"required,oneof=male female"`
	Active        bool    `json:"active"`
}

// StudentService handles student management.
type StudentService struct {
	repo      studentRepository
	classes   attendanceClassRepository
	parents   studentParentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, classes attendanceClassRepository, parents studentParentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, classes: classes, parents: parents, validator: validate, logger: logger}
}

// List returns students visible within the caller's scope.
func (s *StudentService) List(ctx context.Context, scope models.Scope, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	switch scope.Role {
	case models.RoleParent:
		if scope.ParentID == "" {
			return []models.StudentDetail{}, emptyPagination(filter.Page, filter.PageSize), nil
		}
		filter.ParentID = scope.ParentID
	default:
		if !scope.AllSchools() {
			if scope.SchoolID == "" {
				return []models.StudentDetail{}, emptyPagination(filter.Page, filter.PageSize), nil
			}
			filter.SchoolID = scope.SchoolID
		}
	}

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns detailed student information.
func (s *StudentService) Get(ctx context.Context, scope models.Scope, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	switch {
	case scope.Role == models.RoleParent:
		if !scope.HasStudent(id) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student is outside your scope")
		}
	case scope.AllSchools():
	case student.SchoolID != scope.SchoolID:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is outside your scope")
	}
	return student, nil
}

// Create registers a new student on a class roster.
func (s *StudentService) Create(ctx context.Context, scope models.Scope, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.classInScope(ctx, scope, req.ClassID); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, req.ParentID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByNumber(ctx, req.StudentNumber, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student number already used")
	}

	student := &models.Student{
		StudentNumber: req.StudentNumber,
		FullName:      req.FullName,
		ClassID:       req.ClassID,
		ParentID:      req.ParentID,
		BirthDate:     birthDate,
		Gender:        req.Gender,
		Active:        true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("class_id", student.ClassID))
	return student, nil
}

// Update modifies an existing student.
func (s *StudentService) Update(ctx context.Context, scope models.Scope, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return nil, err
	}
	detail, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.classInScope(ctx, scope, req.ClassID); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, req.ParentID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByNumber(ctx, req.StudentNumber, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student number already used")
	}

	student := detail.Student
	student.StudentNumber = req.StudentNumber
	student.FullName = req.FullName
	student.ClassID = req.ClassID
	student.ParentID = req.ParentID
	student.BirthDate = birthDate
	student.Gender = req.Gender
	student.Active = req.Active
	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return &student, nil
}

// Deactivate retires a student without deleting attendance history.
func (s *StudentService) Deactivate(ctx context.Context, scope models.Scope, id string) error {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate student")
	}
	s.logger.Info("student deactivated", zap.String("student_id", id))
	return nil
}

func (s *StudentService) classInScope(ctx context.Context, scope models.Scope, classID string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if !scope.AllSchools() && class.SchoolID != scope.SchoolID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "class is outside your scope")
	}
	return class, nil
}

func (s *StudentService) checkParent(ctx context.Context, parentID *string) error {
	if parentID == nil || *parentID == "" {
		return nil
	}
	if _, err := s.parents.FindByID(ctx, *parentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "parent not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent")
	}
	return nil
}
