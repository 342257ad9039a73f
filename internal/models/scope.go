package models

// Scope is the resolved visibility of the signed-in user: which school,
// teacher record, parent record and children the caller may reach. Empty
// fields mean the dimension is absent; repositories then return empty
// result sets rather than errors.
type Scope struct {
	UserID     string
	Role       UserRole
	SchoolID   string
	TeacherID  string
	ParentID   string
	StudentIDs []string
}

// AllSchools reports whether the scope spans every school.
func (s Scope) AllSchools() bool {
	return s.Role == RoleMinistry
}

// HasStudent reports whether the given student is reachable from a parent scope.
func (s Scope) HasStudent(studentID string) bool {
	for _, id := range s.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}
