package models

import "time"

// MobilityLevel tags how often a class changes rooms during the day.
type MobilityLevel string

const (
	MobilityLow    MobilityLevel = "low"
	MobilityMedium MobilityLevel = "medium"
	MobilityHigh   MobilityLevel = "high"
)

// Valid returns true when the level is a supported value.
func (m MobilityLevel) Valid() bool {
	switch m {
	case MobilityLow, MobilityMedium, MobilityHigh:
		return true
	default:
		return false
	}
}

// Class represents an academic class within a school.
type Class struct {
	ID            string        `db:"id" json:"id"`
	Name          string        `db:"name" json:"name"`
	Grade         string        `db:"grade" json:"grade"`
	SchoolID      string        `db:"school_id" json:"school_id"`
	MobilityLevel MobilityLevel `db:"mobility_level" json:"mobility_level"`
	Active        bool          `db:"active" json:"active"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// ClassDetail extends Class with its current student count.
type ClassDetail struct {
	Class
	StudentCount int `db:"student_count" json:"student_count"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	SchoolID  string
	Grade     string
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
