package policy

import "github.com/edudesk/edudesk-api/internal/models"

// Action names a capability checked before entering a handler.
type Action string

const (
	ActionManageSchools       Action = "schools:manage"
	ActionManageClasses       Action = "classes:manage"
	ActionManageStudents      Action = "students:manage"
	ActionManageTeachers      Action = "teachers:manage"
	ActionManageParents       Action = "parents:manage"
	ActionManageSubjects      Action = "subjects:manage"
	ActionManageSchedules     Action = "schedules:manage"
	ActionViewDirectory       Action = "directory:view"
	ActionMarkAttendance      Action = "attendance:mark"
	ActionViewAttendance      Action = "attendance:view"
	ActionSubmitAbsence       Action = "absence:submit"
	ActionReviewAbsence       Action = "absence:review"
	ActionViewAbsence         Action = "absence:view"
	ActionManageAnnouncements Action = "announcements:manage"
	ActionViewAnnouncements   Action = "announcements:view"
	ActionReportIssues        Action = "issues:report"
	ActionUpdateIssues        Action = "issues:update"
	ActionViewReports         Action = "reports:view"
)

// table is the single place role capabilities are declared. Every handler
// consults it through Allowed instead of branching on role inline.
var table = map[models.UserRole]map[Action]struct{}{
	models.RoleMinistry: grant(
		ActionManageSchools,
		ActionManageClasses,
		ActionManageStudents,
		ActionManageTeachers,
		ActionManageParents,
		ActionManageSubjects,
		ActionManageSchedules,
		ActionViewDirectory,
		ActionViewAttendance,
		ActionViewAbsence,
		ActionManageAnnouncements,
		ActionViewAnnouncements,
		ActionReportIssues,
		ActionUpdateIssues,
		ActionViewReports,
	),
	models.RoleSchoolAdmin: grant(
		ActionManageClasses,
		ActionManageStudents,
		ActionManageTeachers,
		ActionManageParents,
		ActionManageSubjects,
		ActionManageSchedules,
		ActionViewDirectory,
		ActionViewAttendance,
		ActionReviewAbsence,
		ActionViewAbsence,
		ActionManageAnnouncements,
		ActionViewAnnouncements,
		ActionReportIssues,
		ActionUpdateIssues,
		ActionViewReports,
	),
	models.RoleTeacher: grant(
		ActionManageStudents,
		ActionViewDirectory,
		ActionMarkAttendance,
		ActionViewAttendance,
		ActionViewAbsence,
		ActionViewAnnouncements,
		ActionReportIssues,
		ActionViewReports,
	),
	models.RoleParent: grant(
		ActionViewDirectory,
		ActionViewAttendance,
		ActionSubmitAbsence,
		ActionViewAbsence,
		ActionViewAnnouncements,
		ActionReportIssues,
	),
}

// Allowed reports whether the role may perform the action.
func Allowed(role models.UserRole, action Action) bool {
	actions, ok := table[role]
	if !ok {
		return false
	}
	_, ok = actions[action]
	return ok
}

func grant(actions ...Action) map[Action]struct{} {
	set := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}
