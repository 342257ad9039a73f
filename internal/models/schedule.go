package models

import "time"

// Schedule links a class, subject and teacher into a weekly slot.
// DayOfWeek follows time.Weekday numbering (0 = Sunday). Times are
// HH:MM strings; slots are not checked for overlap.
type Schedule struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ScheduleDetail extends Schedule with display names.
type ScheduleDetail struct {
	Schedule
	ClassName   string `db:"class_name" json:"class_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}

// ScheduleFilter scopes schedule listing queries.
type ScheduleFilter struct {
	ClassID   string
	TeacherID string
	SchoolID  string
	DayOfWeek *int
}
