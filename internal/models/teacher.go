package models

import (
	"time"

	"github.com/lib/pq"
)

// Teacher links a user account to a school together with taught subjects.
type Teacher struct {
	ID           string         `db:"id" json:"id"`
	UserID       string         `db:"user_id" json:"user_id"`
	SchoolID     string         `db:"school_id" json:"school_id"`
	Subjects     pq.StringArray `db:"subjects" json:"subjects"`
	IsSupervisor bool           `db:"is_supervisor" json:"is_supervisor"`
	Active       bool           `db:"active" json:"active"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// TeacherDetail extends Teacher with its user identity.
type TeacherDetail struct {
	Teacher
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
}

// TeacherFilter scopes teacher listing queries.
type TeacherFilter struct {
	SchoolID  string
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
