package models

import "time"

// IssueStatus tracks an issue through its workflow.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusClosed     IssueStatus = "closed"
)

// Valid returns true when the status is a supported value.
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed:
		return true
	default:
		return false
	}
}

// Issue is a problem report raised by any role and advanced by a school admin.
type Issue struct {
	ID           string      `db:"id" json:"id"`
	ReportedBy   string      `db:"reported_by" json:"reported_by"`
	ReporterRole UserRole    `db:"reporter_role" json:"reporter_role"`
	Subject      string      `db:"subject" json:"subject"`
	Description  string      `db:"description" json:"description"`
	Status       IssueStatus `db:"status" json:"status"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// IssueFilter scopes issue listing queries.
type IssueFilter struct {
	ReportedBy string
	Status     *IssueStatus
	Page       int
	PageSize   int
}
