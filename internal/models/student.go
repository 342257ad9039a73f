package models

import "time"

// Student represents a learner registered in a class.
//
// The student row is the single authoritative side of the parent/child
// relation: a parent's children are derived by querying students on
// parent_id, never stored redundantly on the parent.
type Student struct {
	ID            string    `db:"id" json:"id"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	FullName      string    `db:"full_name" json:"full_name"`
	ClassID       string    `db:"class_id" json:"class_id"`
	ParentID      *string   `db:"parent_id" json:"parent_id,omitempty"`
	BirthDate     time.Time `db:"birth_date" json:"birth_date"`
	Gender        string    `db:"gender" json:"gender"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail contains student information with class context.
type StudentDetail struct {
	Student
	ClassName string `db:"class_name" json:"class_name"`
	SchoolID  string `db:"school_id" json:"school_id"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	ClassID   string
	SchoolID  string
	ParentID  string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
