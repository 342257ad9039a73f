package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/edudesk/edudesk-api/internal/models"
)

// AttendanceRepository manages persistence for attendance rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns attendance rows matching the provided filter.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	base := `FROM attendance a
JOIN students s ON s.id = a.student_id
JOIN classes c ON c.id = a.class_id`
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("a.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if len(filter.StudentIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("a.student_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.StudentIDs))
	}
	if filter.SchoolID != "" {
		conditions = append(conditions, fmt.Sprintf("c.school_id = $%d", len(args)+1))
		args = append(args, filter.SchoolID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("a.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Status != nil && filter.Status.Valid() {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"date":       "a.date",
		"status":     "a.status",
		"created_at": "a.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "a.date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT a.id, a.student_id, a.class_id, a.subject_id, a.teacher_id, a.date, a.status, a.created_at, a.updated_at,
        s.full_name AS student_name, c.name AS class_name
        %s WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, whereClause, column, order, size, offset)

	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return rows, total, nil
}

// ListForClassDate returns the stored rows for one class and day.
func (r *AttendanceRepository) ListForClassDate(ctx context.Context, classID string, date time.Time) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, class_id, subject_id, teacher_id, date, status, created_at, updated_at
        FROM attendance WHERE class_id = $1 AND date = $2`
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, classID, date); err != nil {
		return nil, fmt.Errorf("list attendance for class date: %w", err)
	}
	return rows, nil
}

// ReplaceForClassDate atomically replaces every attendance row for the
// class and day with the provided set. Saving the same sheet twice leaves
// exactly one row per student.
func (r *AttendanceRepository) ReplaceForClassDate(ctx context.Context, classID string, date time.Time, rows []models.Attendance) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance replace: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE class_id = $1 AND date = $2`, classID, date); err != nil {
		return fmt.Errorf("clear attendance for class date: %w", err)
	}

	const insert = `INSERT INTO attendance (id, student_id, class_id, subject_id, teacher_id, date, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	now := time.Now().UTC()
	for i := range rows {
		row := &rows[i]
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		row.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, insert, row.ID, row.StudentID, row.ClassID, row.SubjectID, row.TeacherID, row.Date, row.Status, row.CreatedAt, row.UpdatedAt); err != nil {
			return fmt.Errorf("insert attendance row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance replace: %w", err)
	}
	committed = true
	return nil
}

// CountsByClass aggregates status counts per class inside the window.
// When schoolID is empty the aggregation spans every school.
func (r *AttendanceRepository) CountsByClass(ctx context.Context, schoolID string, from, to time.Time) ([]models.ClassStatusCounts, error) {
	conditions := []string{"a.date >= $1", "a.date <= $2"}
	args := []interface{}{from, to}
	if schoolID != "" {
		conditions = append(conditions, fmt.Sprintf("c.school_id = $%d", len(args)+1))
		args = append(args, schoolID)
	}

	query := fmt.Sprintf(`SELECT c.id AS class_id, c.name AS class_name,
        COUNT(DISTINCT a.student_id) AS student_count,
        COUNT(*) FILTER (WHERE a.status = 'present') AS present,
        COUNT(*) FILTER (WHERE a.status = 'absent') AS absent,
        COUNT(*) FILTER (WHERE a.status = 'late') AS late,
        COUNT(*) FILTER (WHERE a.status = 'excused') AS excused
        FROM attendance a JOIN classes c ON c.id = a.class_id
        WHERE %s GROUP BY c.id, c.name ORDER BY c.name ASC`, strings.Join(conditions, " AND "))

	var counts []models.ClassStatusCounts
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("counts by class: %w", err)
	}
	return counts, nil
}

// CountsForStudent aggregates status counts for one student inside the window.
func (r *AttendanceRepository) CountsForStudent(ctx context.Context, studentID string, from, to time.Time) (*models.StatusCounts, error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE status = 'present') AS present,
        COUNT(*) FILTER (WHERE status = 'absent') AS absent,
        COUNT(*) FILTER (WHERE status = 'late') AS late,
        COUNT(*) FILTER (WHERE status = 'excused') AS excused
        FROM attendance WHERE student_id = $1 AND date >= $2 AND date <= $3`
	var counts models.StatusCounts
	if err := r.db.GetContext(ctx, &counts, query, studentID, from, to); err != nil {
		return nil, fmt.Errorf("counts for student: %w", err)
	}
	return &counts, nil
}

// Count returns the total number of attendance rows.
func (r *AttendanceRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM attendance"); err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return total, nil
}
