package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// Attendance represents one attendance row. At most one row exists per
// (student_id, class_id, date), enforced by a unique constraint and the
// transactional replace on save.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	SubjectID string           `db:"subject_id" json:"subject_id"`
	TeacherID string           `db:"teacher_id" json:"teacher_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceRecord extends Attendance with student metadata.
type AttendanceRecord struct {
	Attendance
	StudentName string `db:"student_name" json:"student_name"`
	ClassName   string `db:"class_name" json:"class_name"`
}

// AttendanceFilter defines query filters for listing attendance.
// StudentIDs narrows to a fixed set of students; it is how parent scopes
// are expressed. An empty slice means no narrowing.
type AttendanceFilter struct {
	ClassID    string
	StudentID  string
	StudentIDs []string
	SchoolID   string
	TeacherID  string
	Status     *AttendanceStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// SheetEntry is one roster line on the attendance sheet.
type SheetEntry struct {
	StudentID     string           `json:"student_id"`
	StudentNumber string           `json:"student_number"`
	StudentName   string           `json:"student_name"`
	Status        AttendanceStatus `json:"status"`
}

// AttendanceSheet is the loaded mark/save working set for a class and date.
// Saved is true when persisted rows already existed for the date; entries
// without a stored row default to present but are not persisted until an
// explicit save.
type AttendanceSheet struct {
	ClassID   string       `json:"class_id"`
	SubjectID string       `json:"subject_id"`
	Date      time.Time    `json:"date"`
	Entries   []SheetEntry `json:"entries"`
	Saved     bool         `json:"saved"`
}

// ClassStatusCounts aggregates attendance counts for one class.
type ClassStatusCounts struct {
	ClassID      string `db:"class_id" json:"class_id"`
	ClassName    string `db:"class_name" json:"class_name"`
	StudentCount int    `db:"student_count" json:"student_count"`
	Present      int    `db:"present" json:"present"`
	Absent       int    `db:"absent" json:"absent"`
	Late         int    `db:"late" json:"late"`
	Excused      int    `db:"excused" json:"excused"`
}

// StatusCounts aggregates attendance counts regardless of class.
type StatusCounts struct {
	Present int `db:"present" json:"present"`
	Absent  int `db:"absent" json:"absent"`
	Late    int `db:"late" json:"late"`
	Excused int `db:"excused" json:"excused"`
}

// Total returns the sum of all counted statuses.
func (c StatusCounts) Total() int {
	return c.Present + c.Absent + c.Late + c.Excused
}
