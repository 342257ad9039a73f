package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edudesk/edudesk-api/internal/models"
	appErrors "github.com/edudesk/edudesk-api/pkg/errors"
)

type dashboardSchoolRepository interface {
	Count(ctx context.Context) (int, error)
}

type dashboardAbsenceRepository interface {
	List(ctx context.Context, filter models.AbsenceRequestFilter) ([]models.AbsenceRequestDetail, int, error)
}

type dashboardAnnouncementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
}

// DashboardData is the role-shaped landing payload. Fields irrelevant to
// the caller's role are omitted.
type DashboardData struct {
	Role            models.UserRole                `json:"role"`
	GeneratedAt     time.Time                      `json:"generated_at"`
	SchoolCount     *int                           `json:"school_count,omitempty"`
	AttendanceRate  *int                           `json:"attendance_rate,omitempty"`
	Classes         []models.ClassAttendanceRow    `json:"classes,omitempty"`
	PendingAbsences *int                           `json:"pending_absences,omitempty"`
	Announcements   []models.Announcement          `json:"announcements"`
	Children        []models.StudentAttendanceRate `json:"children,omitempty"`
}

// DashboardConfig tunes dashboard behaviour.
type DashboardConfig struct {
	CacheTTL          time.Duration
	AnnouncementLimit int
}

// DashboardParams groups constructor dependencies.
type DashboardParams struct {
	Schools       dashboardSchoolRepository
	Attendance    reportAttendanceRepository
	Absences      dashboardAbsenceRepository
	Announcements dashboardAnnouncementRepository
	Cache         *CacheService
	Logger        *zap.Logger
	Config        DashboardConfig
}

// DashboardService composes the role-specific landing view.
type DashboardService struct {
	schools       dashboardSchoolRepository
	attendance    reportAttendanceRepository
	absences      dashboardAbsenceRepository
	announcements dashboardAnnouncementRepository
	cache         *CacheService
	logger        *zap.Logger
	now           func() time.Time
	cfg           DashboardConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	if cfg.AnnouncementLimit <= 0 {
		cfg.AnnouncementLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		schools:       params.Schools,
		attendance:    params.Attendance,
		absences:      params.Absences,
		announcements: params.Announcements,
		cache:         params.Cache,
		logger:        logger,
		now:           time.Now,
		cfg:           cfg,
	}
}

// Build assembles the dashboard for the caller's scope. Results are
// cached briefly per user.
func (s *DashboardService) Build(ctx context.Context, scope models.Scope) (*DashboardData, error) {
	cacheKey := fmt.Sprintf("dashboard:%s:%s", scope.Role, scope.UserID)
	if s.cache.Enabled() {
		var cached DashboardData
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	data := &DashboardData{Role: scope.Role, GeneratedAt: s.now().UTC()}

	if err := s.fillAnnouncements(ctx, scope, data); err != nil {
		return nil, err
	}

	switch scope.Role {
	case models.RoleMinistry:
		count, err := s.schools.Count(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count schools")
		}
		data.SchoolCount = &count
		if err := s.fillAttendance(ctx, "", data); err != nil {
			return nil, err
		}

	case models.RoleSchoolAdmin:
		// No school in scope means nothing to aggregate, not everything.
		if scope.SchoolID != "" {
			if err := s.fillAttendance(ctx, scope.SchoolID, data); err != nil {
				return nil, err
			}
			if err := s.fillPendingAbsences(ctx, scope.SchoolID, data); err != nil {
				return nil, err
			}
		}

	case models.RoleTeacher:
		if scope.SchoolID != "" {
			if err := s.fillAttendance(ctx, scope.SchoolID, data); err != nil {
				return nil, err
			}
		}

	case models.RoleParent:
		if err := s.fillChildren(ctx, scope, data); err != nil {
			return nil, err
		}
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, data, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard", zap.Error(err))
		}
	}
	return data, nil
}

func (s *DashboardService) fillAnnouncements(ctx context.Context, scope models.Scope, data *DashboardData) error {
	filter := models.AnnouncementFilter{Page: 1, PageSize: s.cfg.AnnouncementLimit}
	if !scope.AllSchools() {
		if scope.SchoolID == "" {
			data.Announcements = []models.Announcement{}
			return nil
		}
		filter.SchoolID = scope.SchoolID
	}
	announcements, _, err := s.announcements.List(ctx, filter)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcements")
	}
	data.Announcements = announcements
	return nil
}

func (s *DashboardService) fillAttendance(ctx context.Context, schoolID string, data *DashboardData) error {
	to := s.now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -6)
	counts, err := s.attendance.CountsByClass(ctx, schoolID, from, to)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}
	var totals models.StatusCounts
	for _, c := range counts {
		total := c.Present + c.Absent + c.Late + c.Excused
		data.Classes = append(data.Classes, models.ClassAttendanceRow{
			ClassID:      c.ClassID,
			ClassName:    c.ClassName,
			StudentCount: c.StudentCount,
			Rate:         attendanceRate(c.Present, total, 0),
			Present:      c.Present,
			Absent:       c.Absent,
			Late:         c.Late,
			Excused:      c.Excused,
		})
		totals.Present += c.Present
		totals.Absent += c.Absent
		totals.Late += c.Late
		totals.Excused += c.Excused
	}
	rate := attendanceRate(totals.Present, totals.Total(), 0)
	data.AttendanceRate = &rate
	return nil
}

func (s *DashboardService) fillPendingAbsences(ctx context.Context, schoolID string, data *DashboardData) error {
	pending := models.AbsenceStatusPending
	_, total, err := s.absences.List(ctx, models.AbsenceRequestFilter{
		SchoolID: schoolID,
		Status:   &pending,
		Page:     1,
		PageSize: 1,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending absences")
	}
	data.PendingAbsences = &total
	return nil
}

func (s *DashboardService) fillChildren(ctx context.Context, scope models.Scope, data *DashboardData) error {
	to := s.now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -29)
	for _, studentID := range scope.StudentIDs {
		counts, err := s.attendance.CountsForStudent(ctx, studentID, from, to)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
		}
		data.Children = append(data.Children, models.StudentAttendanceRate{
			StudentID: studentID,
			From:      from,
			To:        to,
			Rate:      attendanceRate(counts.Present, counts.Total(), 100),
			Counts:    *counts,
		})
	}
	return nil
}
