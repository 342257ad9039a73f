package models

import "time"

// Subject represents a taught discipline within a school.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SubjectFilter scopes subject listing queries.
type SubjectFilter struct {
	SchoolID string
	Search   string
}
