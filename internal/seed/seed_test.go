package seed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/edudesk/edudesk-api/internal/models"
)

type memStores struct {
	existing      int
	users         []models.User
	schools       []models.School
	classes       []models.Class
	students      []models.Student
	teachers      []models.Teacher
	parents       []models.Parent
	attendance    []models.Attendance
	announcements []models.Announcement
	absences      []models.AbsenceRequest
	nextID        int
}

func (m *memStores) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

type memUserStore struct{ m *memStores }

func (s memUserStore) Count(ctx context.Context) (int, error) { return s.m.existing, nil }
func (s memUserStore) Create(ctx context.Context, user *models.User) error {
	user.ID = s.m.id("user")
	s.m.users = append(s.m.users, *user)
	return nil
}

type memSchoolStore struct{ m *memStores }

func (s memSchoolStore) Create(ctx context.Context, school *models.School) error {
	school.ID = s.m.id("school")
	s.m.schools = append(s.m.schools, *school)
	return nil
}

type memClassStore struct{ m *memStores }

func (s memClassStore) Create(ctx context.Context, class *models.Class) error {
	class.ID = s.m.id("class")
	s.m.classes = append(s.m.classes, *class)
	return nil
}

type memStudentStore struct{ m *memStores }

func (s memStudentStore) Create(ctx context.Context, student *models.Student) error {
	student.ID = s.m.id("student")
	s.m.students = append(s.m.students, *student)
	return nil
}

type memTeacherStore struct{ m *memStores }

func (s memTeacherStore) Create(ctx context.Context, teacher *models.Teacher) error {
	teacher.ID = s.m.id("teacher")
	s.m.teachers = append(s.m.teachers, *teacher)
	return nil
}

type memParentStore struct{ m *memStores }

func (s memParentStore) Create(ctx context.Context, parent *models.Parent) error {
	parent.ID = s.m.id("parent")
	s.m.parents = append(s.m.parents, *parent)
	return nil
}

type memAttendanceStore struct{ m *memStores }

func (s memAttendanceStore) ReplaceForClassDate(ctx context.Context, classID string, date time.Time, rows []models.Attendance) error {
	s.m.attendance = append(s.m.attendance, rows...)
	return nil
}

type memAnnouncementStore struct{ m *memStores }

func (s memAnnouncementStore) Create(ctx context.Context, announcement *models.Announcement) error {
	announcement.ID = s.m.id("announcement")
	s.m.announcements = append(s.m.announcements, *announcement)
	return nil
}

type memAbsenceStore struct{ m *memStores }

func (s memAbsenceStore) Create(ctx context.Context, request *models.AbsenceRequest) error {
	request.ID = s.m.id("absence")
	s.m.absences = append(s.m.absences, *request)
	return nil
}

func newMemStores(existing int) (*memStores, Stores) {
	m := &memStores{existing: existing}
	return m, Stores{
		Users:         memUserStore{m},
		Schools:       memSchoolStore{m},
		Classes:       memClassStore{m},
		Students:      memStudentStore{m},
		Teachers:      memTeacherStore{m},
		Parents:       memParentStore{m},
		Attendance:    memAttendanceStore{m},
		Announcements: memAnnouncementStore{m},
		Absences:      memAbsenceStore{m},
	}
}

func TestSeedRunLoadsDemoDataset(t *testing.T) {
	m, stores := newMemStores(0)
	seeder := New(stores, zap.NewNop())

	require.NoError(t, seeder.Run(context.Background()))

	assert.Len(t, m.schools, 1)
	assert.Len(t, m.users, 5)
	assert.Len(t, m.classes, 3)
	assert.Len(t, m.students, 5)
	assert.Len(t, m.teachers, 2)
	assert.Len(t, m.parents, 1)
	assert.Len(t, m.announcements, 2)
	require.Len(t, m.absences, 1)
	assert.Equal(t, models.AbsenceStatusPending, m.absences[0].Status)

	// One row per student per day for a week.
	assert.Len(t, m.attendance, 35)
	deviations := 0
	for _, row := range m.attendance {
		if row.Status != models.AttendanceStatusPresent {
			deviations++
		}
	}
	assert.Greater(t, deviations, 0)
	assert.Less(t, deviations, len(m.attendance)/2)
}

func TestSeedRunCoversEveryRole(t *testing.T) {
	m, stores := newMemStores(0)
	require.NoError(t, New(stores, zap.NewNop()).Run(context.Background()))

	roles := make(map[models.UserRole]int)
	for _, user := range m.users {
		roles[user.Role]++
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(DemoPassword)))
		assert.True(t, user.Active)
	}
	assert.Equal(t, 1, roles[models.RoleMinistry])
	assert.Equal(t, 1, roles[models.RoleSchoolAdmin])
	assert.Equal(t, 2, roles[models.RoleTeacher])
	assert.Equal(t, 1, roles[models.RoleParent])
}

func TestSeedRunLinksParentAndChildren(t *testing.T) {
	m, stores := newMemStores(0)
	require.NoError(t, New(stores, zap.NewNop()).Run(context.Background()))

	require.Len(t, m.parents, 1)
	linked := 0
	for _, student := range m.students {
		if student.ParentID != nil {
			assert.Equal(t, m.parents[0].ID, *student.ParentID)
			linked++
		}
	}
	assert.Equal(t, 2, linked)
}

func TestSeedRunSkipsWhenUsersExist(t *testing.T) {
	m, stores := newMemStores(3)
	require.NoError(t, New(stores, zap.NewNop()).Run(context.Background()))

	assert.Empty(t, m.users)
	assert.Empty(t, m.schools)
	assert.Empty(t, m.attendance)
}
