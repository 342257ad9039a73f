package models

import "time"

// ReportWindow selects the date range of an attendance report.
type ReportWindow string

const (
	ReportWindowWeek  ReportWindow = "7d"
	ReportWindowMonth ReportWindow = "30d"
	ReportWindowCal   ReportWindow = "month"
)

// Valid returns true when the window is a supported value.
func (w ReportWindow) Valid() bool {
	switch w {
	case ReportWindowWeek, ReportWindowMonth, ReportWindowCal:
		return true
	default:
		return false
	}
}

// ClassAttendanceRow is one class line of an attendance report. Rate is a
// rounded percentage; a class with no rows in the window reports 0.
type ClassAttendanceRow struct {
	ClassID      string `json:"class_id"`
	ClassName    string `json:"class_name"`
	StudentCount int    `json:"student_count"`
	Rate         int    `json:"rate"`
	Present      int    `json:"present"`
	Absent       int    `json:"absent"`
	Late         int    `json:"late"`
	Excused      int    `json:"excused"`
}

// AttendanceReport is the per-class attendance breakdown for a window,
// ordered by rate descending.
type AttendanceReport struct {
	Window      ReportWindow         `json:"window"`
	From        time.Time            `json:"from"`
	To          time.Time            `json:"to"`
	GeneratedAt time.Time            `json:"generated_at"`
	Classes     []ClassAttendanceRow `json:"classes"`
	Totals      StatusCounts         `json:"totals"`
	OverallRate int                  `json:"overall_rate"`
}

// StudentAttendanceRate is a single student's recent attendance rate.
// A student with no rows in the window reports 100.
type StudentAttendanceRate struct {
	StudentID string       `json:"student_id"`
	From      time.Time    `json:"from"`
	To        time.Time    `json:"to"`
	Rate      int          `json:"rate"`
	Counts    StatusCounts `json:"counts"`
}
