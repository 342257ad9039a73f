package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edudesk/edudesk-api/internal/models"
)

// AbsenceRequestRepository manages persistence for absence requests.
type AbsenceRequestRepository struct {
	db *sqlx.DB
}

// NewAbsenceRequestRepository constructs an AbsenceRequestRepository.
func NewAbsenceRequestRepository(db *sqlx.DB) *AbsenceRequestRepository {
	return &AbsenceRequestRepository{db: db}
}

// List returns absence requests matching the provided filter, newest first.
func (r *AbsenceRequestRepository) List(ctx context.Context, filter models.AbsenceRequestFilter) ([]models.AbsenceRequestDetail, int, error) {
	base := `FROM absence_requests ar
JOIN students s ON s.id = ar.student_id
JOIN classes c ON c.id = s.class_id`
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.ParentID != "" {
		conditions = append(conditions, fmt.Sprintf("ar.parent_id = $%d", len(args)+1))
		args = append(args, filter.ParentID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("ar.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SchoolID != "" {
		conditions = append(conditions, fmt.Sprintf("c.school_id = $%d", len(args)+1))
		args = append(args, filter.SchoolID)
	}
	if filter.Status != nil && filter.Status.Valid() {
		conditions = append(conditions, fmt.Sprintf("ar.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	whereClause := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT ar.id, ar.student_id, ar.parent_id, ar.start_date, ar.end_date, ar.reason, ar.status, ar.reviewed_by, ar.reviewed_at, ar.created_at,
        s.full_name AS student_name, c.name AS class_name, c.school_id
        %s WHERE %s ORDER BY ar.created_at DESC LIMIT %d OFFSET %d`, base, whereClause, size, offset)

	var requests []models.AbsenceRequestDetail
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list absence requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count absence requests: %w", err)
	}
	return requests, total, nil
}

// FindByID fetches an absence request by primary key.
func (r *AbsenceRequestRepository) FindByID(ctx context.Context, id string) (*models.AbsenceRequestDetail, error) {
	const query = `SELECT ar.id, ar.student_id, ar.parent_id, ar.start_date, ar.end_date, ar.reason, ar.status, ar.reviewed_by, ar.reviewed_at, ar.created_at,
        s.full_name AS student_name, c.name AS class_name, c.school_id
        FROM absence_requests ar
        JOIN students s ON s.id = ar.student_id
        JOIN classes c ON c.id = s.class_id
        WHERE ar.id = $1`
	var request models.AbsenceRequestDetail
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// Create inserts a new absence request with pending status.
func (r *AbsenceRequestRepository) Create(ctx context.Context, request *models.AbsenceRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	if request.Status == "" {
		request.Status = models.AbsenceStatusPending
	}
	const query = `INSERT INTO absence_requests (id, student_id, parent_id, start_date, end_date, reason, status, created_at)
        VALUES (:id, :student_id, :parent_id, :start_date, :end_date, :reason, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create absence request: %w", err)
	}
	return nil
}

// Review moves a pending request to its final status. It returns false
// when the request was not pending anymore, guarding the review-once rule.
func (r *AbsenceRequestRepository) Review(ctx context.Context, id string, status models.AbsenceStatus, reviewerID string, reviewedAt time.Time) (bool, error) {
	const query = `UPDATE absence_requests SET status = $2, reviewed_by = $3, reviewed_at = $4 WHERE id = $1 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, id, status, reviewerID, reviewedAt)
	if err != nil {
		return false, fmt.Errorf("review absence request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("review absence request: %w", err)
	}
	return affected == 1, nil
}
