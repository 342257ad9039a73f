package models

import "time"

// AnnouncementType classifies an announcement.
type AnnouncementType string

const (
	AnnouncementTypeAnnouncement AnnouncementType = "announcement"
	AnnouncementTypeAlert        AnnouncementType = "alert"
	AnnouncementTypeInstruction  AnnouncementType = "instruction"
	AnnouncementTypeEvacuation   AnnouncementType = "evacuation"
)

// Valid returns true when the type is a supported value.
func (t AnnouncementType) Valid() bool {
	switch t {
	case AnnouncementTypeAnnouncement, AnnouncementTypeAlert, AnnouncementTypeInstruction, AnnouncementTypeEvacuation:
		return true
	default:
		return false
	}
}

// AnnouncementPriority defines ordering for announcements.
type AnnouncementPriority string

const (
	AnnouncementPriorityLow    AnnouncementPriority = "low"
	AnnouncementPriorityMedium AnnouncementPriority = "medium"
	AnnouncementPriorityHigh   AnnouncementPriority = "high"
	AnnouncementPriorityUrgent AnnouncementPriority = "urgent"
)

// Valid returns true when the priority is a supported value.
func (p AnnouncementPriority) Valid() bool {
	switch p {
	case AnnouncementPriorityLow, AnnouncementPriorityMedium, AnnouncementPriorityHigh, AnnouncementPriorityUrgent:
		return true
	default:
		return false
	}
}

// Announcement represents a persisted announcement row. A nil
// TargetSchoolID means ministry-wide broadcast.
type Announcement struct {
	ID             string               `db:"id" json:"id"`
	Title          string               `db:"title" json:"title"`
	Content        string               `db:"content" json:"content"`
	AuthorID       string               `db:"author_id" json:"author_id"`
	AuthorRole     UserRole             `db:"author_role" json:"author_role"`
	TargetSchoolID *string              `db:"target_school_id" json:"target_school_id,omitempty"`
	Type           AnnouncementType     `db:"type" json:"type"`
	Priority       AnnouncementPriority `db:"priority" json:"priority"`
	CreatedAt      time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `db:"updated_at" json:"updated_at"`
}

// AnnouncementFilter scopes announcement listing queries.
type AnnouncementFilter struct {
	SchoolID string
	AuthorID string
	Type     *AnnouncementType
	Page     int
	PageSize int
}
