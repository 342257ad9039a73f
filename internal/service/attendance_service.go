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

// dateLayout is the wire format for calendar dates across the API.
const dateLayout = "2006-01-02"

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	ListForClassDate(ctx context.Context, classID string, date time.Time) ([]models.Attendance, error)
	ReplaceForClassDate(ctx context.Context, classID string, date time.Time, rows []models.Attendance) error
}

type attendanceClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type attendanceStudentRepository interface {
	Roster(ctx context.Context, classID string) ([]models.Student, error)
}

// AttendanceService coordinates sheet loading, saving and record listing.
type AttendanceService struct {
	repo      attendanceRepository
	classes   attendanceClassRepository
	students  attendanceStudentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, classes attendanceClassRepository, students attendanceStudentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, classes: classes, students: students, cache: cache, validator: validate, logger: logger}
}

// AttendanceListRequest describes filters for listing attendance records.
type AttendanceListRequest struct {
	ClassID   string  `form:"class_id" json:"class_id"`
	StudentID string  `form:"student_id" json:"student_id"`
	Status    *string `form:"status" json:"status"`
	DateFrom  string  `form:"date_from" json:"date_from"`
	DateTo    string  `form:"date_to" json:"date_to"`
	Page      int     `form:"page" json:"page"`
	PageSize  int     `form:"page_size" json:"page_size"`
	SortBy    string  `form:"sort_by" json:"sort_by"`
	SortOrder string  `form:"sort_order" json:"sort_order"`
}

// SheetEntryInput is one student line in a sheet save payload.
type SheetEntryInput struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// SaveSheetRequest is the payload for persisting an attendance sheet.
// Saving replaces every stored row for the class and date, so resubmitting
// the same sheet is idempotent and corrections are a plain re-save.
type SaveSheetRequest struct {
	ClassID   string            `json:"class_id" validate:"required"`
	SubjectID string            `json:"subject_id" validate:"required"`
	Date      string            `json:"date" validate:"required"`
	Entries   []SheetEntryInput `json:"entries" validate:"required,min=1,dive"`
}

// Sheet loads the working sheet for a class and date. Students without a
// stored row appear as present; Saved tells the caller whether anything
// has been persisted for that date yet.
func (s *AttendanceService) Sheet(ctx context.Context, scope models.Scope, classID, dateStr string) (*models.AttendanceSheet, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	class, err := s.loadClassInScope(ctx, scope, classID)
	if err != nil {
		return nil, err
	}

	roster, err := s.students.Roster(ctx, class.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}

	existing, err := s.repo.ListForClassDate(ctx, class.ID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance rows")
	}

	statuses := make(map[string]models.AttendanceStatus, len(existing))
	subjectID := ""
	for _, row := range existing {
		statuses[row.StudentID] = row.Status
		if subjectID == "" {
			subjectID = row.SubjectID
		}
	}

	sheet := &models.AttendanceSheet{
		ClassID:   class.ID,
		SubjectID: subjectID,
		Date:      date,
		Entries:   make([]models.SheetEntry, 0, len(roster)),
		Saved:     len(existing) > 0,
	}
	for _, student := range roster {
		status, ok := statuses[student.ID]
		if !ok {
			status = models.AttendanceStatusPresent
		}
		sheet.Entries = append(sheet.Entries, models.SheetEntry{
			StudentID:     student.ID,
			StudentNumber: student.StudentNumber,
			StudentName:   student.FullName,
			Status:        status,
		})
	}
	return sheet, nil
}

// SaveSheet persists a full sheet for a class and date in one transaction
// and returns the stored state. Entries must reference students on the
// class roster.
func (s *AttendanceService) SaveSheet(ctx context.Context, scope models.Scope, req SaveSheetRequest) (*models.AttendanceSheet, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sheet payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	class, err := s.loadClassInScope(ctx, scope, req.ClassID)
	if err != nil {
		return nil, err
	}

	roster, err := s.students.Roster(ctx, class.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	onRoster := make(map[string]models.Student, len(roster))
	for _, student := range roster {
		onRoster[student.ID] = student
	}

	rows := make([]models.Attendance, 0, len(req.Entries))
	seen := make(map[string]bool, len(req.Entries))
	for _, entry := range req.Entries {
		status := models.AttendanceStatus(entry.Status)
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown attendance status %q", entry.Status))
		}
		if _, ok := onRoster[entry.StudentID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s is not on the class roster", entry.StudentID))
		}
		if seen[entry.StudentID] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate entry for student %s", entry.StudentID))
		}
		seen[entry.StudentID] = true
		rows = append(rows, models.Attendance{
			StudentID: entry.StudentID,
			ClassID:   class.ID,
			SubjectID: req.SubjectID,
			TeacherID: scope.TeacherID,
			Date:      date,
			Status:    status,
		})
	}

	if err := s.repo.ReplaceForClassDate(ctx, class.ID, date, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance sheet")
	}

	if s.cache.Enabled() {
		s.cache.Invalidate(ctx, "reports:*")
		s.cache.Invalidate(ctx, "dashboard:*")
	}
	s.logger.Info("attendance sheet saved",
		zap.String("class_id", class.ID),
		zap.String("date", date.Format(dateLayout)),
		zap.Int("entries", len(rows)))

	return s.Sheet(ctx, scope, class.ID, req.Date)
}

// List returns attendance records visible within the caller's scope.
func (s *AttendanceService) List(ctx context.Context, scope models.Scope, req AttendanceListRequest) ([]models.AttendanceRecord, *models.Pagination, error) {
	var status *models.AttendanceStatus
	if req.Status != nil && *req.Status != "" {
		st := models.AttendanceStatus(*req.Status)
		if !st.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown attendance status %q", *req.Status))
		}
		status = &st
	}

	filter := models.AttendanceFilter{
		ClassID:   req.ClassID,
		StudentID: req.StudentID,
		Status:    status,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.DateFrom != "" {
		from, err := parseDate(req.DateFrom)
		if err != nil {
			return nil, nil, err
		}
		filter.DateFrom = &from
	}
	if req.DateTo != "" {
		to, err := parseDate(req.DateTo)
		if err != nil {
			return nil, nil, err
		}
		filter.DateTo = &to
	}

	switch scope.Role {
	case models.RoleParent:
		if len(scope.StudentIDs) == 0 {
			return []models.AttendanceRecord{}, emptyPagination(req.Page, req.PageSize), nil
		}
		if req.StudentID != "" && !scope.HasStudent(req.StudentID) {
			return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "student is outside your scope")
		}
		filter.StudentIDs = scope.StudentIDs
	default:
		if !scope.AllSchools() {
			if scope.SchoolID == "" {
				return []models.AttendanceRecord{}, emptyPagination(req.Page, req.PageSize), nil
			}
			filter.SchoolID = scope.SchoolID
		}
		if scope.Role == models.RoleTeacher {
			filter.TeacherID = scope.TeacherID
		}
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, paginationFor(req.Page, req.PageSize, total), nil
}

func (s *AttendanceService) loadClassInScope(ctx context.Context, scope models.Scope, classID string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if !scope.AllSchools() && scope.SchoolID != class.SchoolID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "class is outside your scope")
	}
	return class, nil
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value))
	}
	return date, nil
}
