// Package seed loads a small demo dataset so a fresh deployment has one
// account per role and a week of attendance to look at. Seeding is a
// no-op when any user already exists.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/edudesk/edudesk-api/internal/models"
)

// DemoPassword is the shared password of every seeded account.
const DemoPassword = "edudesk123"

type userStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.User) error
}

type schoolStore interface {
	Create(ctx context.Context, school *models.School) error
}

type classStore interface {
	Create(ctx context.Context, class *models.Class) error
}

type studentStore interface {
	Create(ctx context.Context, student *models.Student) error
}

type teacherStore interface {
	Create(ctx context.Context, teacher *models.Teacher) error
}

type parentStore interface {
	Create(ctx context.Context, parent *models.Parent) error
}

type attendanceStore interface {
	ReplaceForClassDate(ctx context.Context, classID string, date time.Time, rows []models.Attendance) error
}

type announcementStore interface {
	Create(ctx context.Context, announcement *models.Announcement) error
}

type absenceStore interface {
	Create(ctx context.Context, request *models.AbsenceRequest) error
}

// Stores groups the repositories the seeder writes through.
type Stores struct {
	Users         userStore
	Schools       schoolStore
	Classes       classStore
	Students      studentStore
	Teachers      teacherStore
	Parents       parentStore
	Attendance    attendanceStore
	Announcements announcementStore
	Absences      absenceStore
}

// Seeder loads the demo dataset.
type Seeder struct {
	stores Stores
	logger *zap.Logger
	now    func() time.Time
}

// New constructs a Seeder.
func New(stores Stores, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{stores: stores, logger: logger, now: time.Now}
}

// Run loads the demo dataset unless users already exist: one school,
// five accounts covering every role, three classes, five students, a
// week of attendance, two announcements and one pending absence request.
func (s *Seeder) Run(ctx context.Context) error {
	count, err := s.stores.Users.Count(ctx)
	if err != nil {
		return fmt.Errorf("check existing users: %w", err)
	}
	if count > 0 {
		s.logger.Info("demo seed skipped, users already exist", zap.Int("users", count))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	passwordHash := string(hash)

	school := &models.School{
		Name:    "Horizon Academy",
		Address: "12 Meridian Street",
		Phone:   "+1-555-0100",
		Email:   "office@horizon.example",
	}
	if err := s.stores.Schools.Create(ctx, school); err != nil {
		return fmt.Errorf("seed school: %w", err)
	}

	users := []*models.User{
		{Email: "ministry@edudesk.example", FullName: "Dana Whitfield", Role: models.RoleMinistry, Active: true},
		{Email: "admin@horizon.example", FullName: "Omar Castellanos", Role: models.RoleSchoolAdmin, SchoolID: &school.ID, Active: true},
		{Email: "t.reyes@horizon.example", FullName: "Teresa Reyes", Role: models.RoleTeacher, SchoolID: &school.ID, Active: true},
		{Email: "j.okafor@horizon.example", FullName: "James Okafor", Role: models.RoleTeacher, SchoolID: &school.ID, Active: true},
		{Email: "parent@edudesk.example", FullName: "Priya Raman", Role: models.RoleParent, Active: true},
	}
	for _, user := range users {
		user.PasswordHash = passwordHash
		if err := s.stores.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", user.Email, err)
		}
	}

	teacherA := &models.Teacher{UserID: users[2].ID, SchoolID: school.ID, Subjects: []string{"Mathematics", "Physics"}, IsSupervisor: true, Active: true}
	if err := s.stores.Teachers.Create(ctx, teacherA); err != nil {
		return fmt.Errorf("seed teacher: %w", err)
	}
	teacherB := &models.Teacher{UserID: users[3].ID, SchoolID: school.ID, Subjects: []string{"History"}, Active: true}
	if err := s.stores.Teachers.Create(ctx, teacherB); err != nil {
		return fmt.Errorf("seed teacher: %w", err)
	}

	parent := &models.Parent{UserID: users[4].ID, Approved: true}
	if err := s.stores.Parents.Create(ctx, parent); err != nil {
		return fmt.Errorf("seed parent: %w", err)
	}

	classes := []*models.Class{
		{Name: "7A", Grade: "7", SchoolID: school.ID, MobilityLevel: models.MobilityLow, Active: true},
		{Name: "7B", Grade: "7", SchoolID: school.ID, MobilityLevel: models.MobilityMedium, Active: true},
		{Name: "8A", Grade: "8", SchoolID: school.ID, MobilityLevel: models.MobilityHigh, Active: true},
	}
	for _, class := range classes {
		if err := s.stores.Classes.Create(ctx, class); err != nil {
			return fmt.Errorf("seed class %s: %w", class.Name, err)
		}
	}

	birth := func(year, month, day int) time.Time {
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	}
	students := []*models.Student{
		{StudentNumber: "S-1001", FullName: "Arjun Raman", ClassID: classes[0].ID, ParentID: &parent.ID, BirthDate: birth(2013, 4, 11), Gender: "male", Active: true},
		{StudentNumber: "S-1002", FullName: "Meera Raman", ClassID: classes[1].ID, ParentID: &parent.ID, BirthDate: birth(2012, 9, 2), Gender: "female", Active: true},
		{StudentNumber: "S-1003", FullName: "Lucas Ferreira", ClassID: classes[0].ID, BirthDate: birth(2013, 1, 27), Gender: "male", Active: true},
		{StudentNumber: "S-1004", FullName: "Sofia Lindqvist", ClassID: classes[1].ID, BirthDate: birth(2013, 6, 19), Gender: "female", Active: true},
		{StudentNumber: "S-1005", FullName: "Noor Haddad", ClassID: classes[2].ID, BirthDate: birth(2012, 11, 5), Gender: "female", Active: true},
	}
	for _, student := range students {
		if err := s.stores.Students.Create(ctx, student); err != nil {
			return fmt.Errorf("seed student %s: %w", student.StudentNumber, err)
		}
	}

	if err := s.seedAttendance(ctx, students, teacherA.ID); err != nil {
		return err
	}

	announcements := []*models.Announcement{
		{
			Title:      "Term starts Monday",
			Content:    "Classes resume Monday at 08:00. Updated schedules are posted per class.",
			AuthorID:   users[0].ID,
			AuthorRole: models.RoleMinistry,
			Type:       models.AnnouncementTypeAnnouncement,
			Priority:   models.AnnouncementPriorityMedium,
		},
		{
			Title:          "Fire drill Thursday",
			Content:        "A building evacuation drill takes place Thursday at 10:30.",
			AuthorID:       users[1].ID,
			AuthorRole:     models.RoleSchoolAdmin,
			TargetSchoolID: &school.ID,
			Type:           models.AnnouncementTypeEvacuation,
			Priority:       models.AnnouncementPriorityHigh,
		},
	}
	for _, announcement := range announcements {
		if err := s.stores.Announcements.Create(ctx, announcement); err != nil {
			return fmt.Errorf("seed announcement: %w", err)
		}
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	request := &models.AbsenceRequest{
		StudentID: students[0].ID,
		ParentID:  parent.ID,
		StartDate: today.AddDate(0, 0, 2),
		EndDate:   today.AddDate(0, 0, 3),
		Reason:    "Dental surgery and recovery",
		Status:    models.AbsenceStatusPending,
	}
	if err := s.stores.Absences.Create(ctx, request); err != nil {
		return fmt.Errorf("seed absence request: %w", err)
	}

	s.logger.Info("demo data seeded",
		zap.Int("users", len(users)),
		zap.Int("classes", len(classes)),
		zap.Int("students", len(students)))
	return nil
}

// seedAttendance writes one row per student per day for the last seven
// days. Every fourth slot deviates from present so reports have texture.
func (s *Seeder) seedAttendance(ctx context.Context, students []*models.Student, teacherID string) error {
	deviations := []models.AttendanceStatus{
		models.AttendanceStatusAbsent,
		models.AttendanceStatusLate,
		models.AttendanceStatusExcused,
	}
	today := s.now().UTC().Truncate(24 * time.Hour)

	for day := 0; day < 7; day++ {
		date := today.AddDate(0, 0, -day)
		byClass := make(map[string][]models.Attendance)
		for i, student := range students {
			status := models.AttendanceStatusPresent
			slot := day*len(students) + i
			if slot%4 == 3 {
				status = deviations[slot%len(deviations)]
			}
			byClass[student.ClassID] = append(byClass[student.ClassID], models.Attendance{
				StudentID: student.ID,
				ClassID:   student.ClassID,
				TeacherID: teacherID,
				Date:      date,
				Status:    status,
			})
		}
		for classID, rows := range byClass {
			if err := s.stores.Attendance.ReplaceForClassDate(ctx, classID, date, rows); err != nil {
				return fmt.Errorf("seed attendance: %w", err)
			}
		}
	}
	return nil
}
