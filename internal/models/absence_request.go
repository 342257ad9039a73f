package models

import "time"

// AbsenceStatus represents the review state of an absence request.
type AbsenceStatus string

const (
	AbsenceStatusPending  AbsenceStatus = "pending"
	AbsenceStatusApproved AbsenceStatus = "approved"
	AbsenceStatusRejected AbsenceStatus = "rejected"
)

// Valid returns true when the status is a supported value.
func (s AbsenceStatus) Valid() bool {
	switch s {
	case AbsenceStatusPending, AbsenceStatusApproved, AbsenceStatusRejected:
		return true
	default:
		return false
	}
}

// AbsenceRequest is a parent-submitted request reviewed once by a school admin.
type AbsenceRequest struct {
	ID         string        `db:"id" json:"id"`
	StudentID  string        `db:"student_id" json:"student_id"`
	ParentID   string        `db:"parent_id" json:"parent_id"`
	StartDate  time.Time     `db:"start_date" json:"start_date"`
	EndDate    time.Time     `db:"end_date" json:"end_date"`
	Reason     string        `db:"reason" json:"reason"`
	Status     AbsenceStatus `db:"status" json:"status"`
	ReviewedBy *string       `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time    `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

// AbsenceRequestDetail extends a request with student context.
type AbsenceRequestDetail struct {
	AbsenceRequest
	StudentName string `db:"student_name" json:"student_name"`
	ClassName   string `db:"class_name" json:"class_name"`
	SchoolID    string `db:"school_id" json:"school_id"`
}

// AbsenceRequestFilter scopes absence request listing queries.
type AbsenceRequestFilter struct {
	ParentID  string
	StudentID string
	SchoolID  string
	Status    *AbsenceStatus
	Page      int
	PageSize  int
}
