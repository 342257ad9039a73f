package models

import "time"

// Parent links a user account to zero or more students. Children are
// resolved through students.parent_id.
type Parent struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Approved  bool      `db:"approved" json:"approved"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ParentDetail extends Parent with user identity and derived children.
type ParentDetail struct {
	Parent
	FullName string    `db:"full_name" json:"full_name"`
	Email    string    `db:"email" json:"email"`
	Children []StudentDetail `db:"-" json:"children,omitempty"`
}

// ParentFilter scopes parent listing queries.
type ParentFilter struct {
	SchoolID  string
	Approved  *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
