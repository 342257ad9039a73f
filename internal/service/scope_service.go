package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/edudesk/edudesk-api/internal/models"
	appErrors "github.com/edudesk/edudesk-api/pkg/errors"
)

type scopeTeacherRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
}

type scopeParentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Parent, error)
}

type scopeStudentRepository interface {
	ListByParent(ctx context.Context, parentID string) ([]models.StudentDetail, error)
}

// ScopeService resolves the visibility scope of the signed-in user from
// its claims. A user with a missing dimension (no school, no children)
// gets an empty scope field, which downstream queries translate into
// empty result sets rather than errors.
type ScopeService struct {
	teachers scopeTeacherRepository
	parents  scopeParentRepository
	students scopeStudentRepository
	logger   *zap.Logger
}

// NewScopeService constructs a ScopeService.
func NewScopeService(teachers scopeTeacherRepository, parents scopeParentRepository, students scopeStudentRepository, logger *zap.Logger) *ScopeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScopeService{teachers: teachers, parents: parents, students: students, logger: logger}
}

// Resolve builds the scope for the given claims.
func (s *ScopeService) Resolve(ctx context.Context, claims *models.JWTClaims) (models.Scope, error) {
	scope := models.Scope{UserID: claims.UserID, Role: claims.Role}

	switch claims.Role {
	case models.RoleMinistry:
		// Ministry sees everything; no narrowing dimensions.

	case models.RoleSchoolAdmin:
		if claims.SchoolID != nil {
			scope.SchoolID = *claims.SchoolID
		}

	case models.RoleTeacher:
		if claims.SchoolID != nil {
			scope.SchoolID = *claims.SchoolID
		}
		teacher, err := s.teachers.FindByUserID(ctx, claims.UserID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return models.Scope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve teacher scope")
			}
		} else {
			scope.TeacherID = teacher.ID
			if scope.SchoolID == "" {
				scope.SchoolID = teacher.SchoolID
			}
		}

	case models.RoleParent:
		parent, err := s.parents.FindByUserID(ctx, claims.UserID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return models.Scope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve parent scope")
			}
			return scope, nil
		}
		scope.ParentID = parent.ID
		children, err := s.students.ListByParent(ctx, parent.ID)
		if err != nil {
			return models.Scope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve children scope")
		}
		// The children's school bounds what the parent may read, e.g.
		// which targeted announcements are visible.
		for _, child := range children {
			scope.StudentIDs = append(scope.StudentIDs, child.ID)
			if scope.SchoolID == "" {
				scope.SchoolID = child.SchoolID
			}
		}

	default:
		return models.Scope{}, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	}

	return scope, nil
}
