package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edudesk/edudesk-api/internal/models"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		name   string
		role   models.UserRole
		action Action
		want   bool
	}{
		{"ministry manages schools", models.RoleMinistry, ActionManageSchools, true},
		{"school admin cannot manage schools", models.RoleSchoolAdmin, ActionManageSchools, false},
		{"school admin reviews absence", models.RoleSchoolAdmin, ActionReviewAbsence, true},
		{"ministry does not review absence", models.RoleMinistry, ActionReviewAbsence, false},
		{"teacher marks attendance", models.RoleTeacher, ActionMarkAttendance, true},
		{"school admin does not mark attendance", models.RoleSchoolAdmin, ActionMarkAttendance, false},
		{"parent submits absence", models.RoleParent, ActionSubmitAbsence, true},
		{"teacher cannot submit absence", models.RoleTeacher, ActionSubmitAbsence, false},
		{"parent cannot view reports", models.RoleParent, ActionViewReports, false},
		{"teacher views reports", models.RoleTeacher, ActionViewReports, true},
		{"every role reports issues", models.RoleParent, ActionReportIssues, true},
		{"unknown role denied", models.UserRole("intruder"), ActionViewAnnouncements, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allowed(tc.role, tc.action))
		})
	}
}
