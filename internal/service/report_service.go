package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/edudesk/edudesk-api/internal/models"
	appErrors "github.com/edudesk/edudesk-api/pkg/errors"
	"github.com/edudesk/edudesk-api/pkg/export"
)

type reportAttendanceRepository interface {
	CountsByClass(ctx context.Context, schoolID string, from, to time.Time) ([]models.ClassStatusCounts, error)
	CountsForStudent(ctx context.Context, studentID string, from, to time.Time) (*models.StatusCounts, error)
}

type reportStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

// ReportFormat identifies an export encoding.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportConfig governs caching and export limits.
type ReportConfig struct {
	CacheTTL      time.Duration
	MaxExportRows int
}

// ReportExport is a rendered report ready for download.
type ReportExport struct {
	Filename    string
	ContentType string
	Content     []byte
}

var reportHeaders = []string{"Class", "Students", "Attendance Rate", "Present", "Absent", "Late", "Excused"}

// ReportService computes attendance breakdowns and renders exports.
type ReportService struct {
	repo     reportAttendanceRepository
	students reportStudentRepository
	cache    *CacheService
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	cfg      ReportConfig
}

// NewReportService constructs the report service.
func NewReportService(repo reportAttendanceRepository, students reportStudentRepository, cache *CacheService, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger, cfg ReportConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &ReportService{repo: repo, students: students, cache: cache, csv: csv, pdf: pdf, logger: logger, cfg: cfg}
}

// Attendance builds the per-class attendance report for the requested
// window within the caller's scope. Results are cached per school and
// window; saving a sheet invalidates them.
func (s *ReportService) Attendance(ctx context.Context, scope models.Scope, window models.ReportWindow) (*models.AttendanceReport, error) {
	if window == "" {
		window = models.ReportWindowWeek
	}
	if !window.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report window %q", window))
	}

	schoolID := ""
	if !scope.AllSchools() {
		schoolID = scope.SchoolID
		if schoolID == "" {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no school in scope")
		}
	}

	cacheKey := fmt.Sprintf("reports:attendance:%s:%s", cacheSchoolKey(schoolID), window)
	if s.cache.Enabled() {
		var cached models.AttendanceReport
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	from, to := windowRange(window, time.Now().UTC())
	counts, err := s.repo.CountsByClass(ctx, schoolID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}

	report := &models.AttendanceReport{
		Window:      window,
		From:        from,
		To:          to,
		GeneratedAt: time.Now().UTC(),
		Classes:     make([]models.ClassAttendanceRow, 0, len(counts)),
	}
	for _, c := range counts {
		total := c.Present + c.Absent + c.Late + c.Excused
		row := models.ClassAttendanceRow{
			ClassID:      c.ClassID,
			ClassName:    c.ClassName,
			StudentCount: c.StudentCount,
			Rate:         attendanceRate(c.Present, total, 0),
			Present:      c.Present,
			Absent:       c.Absent,
			Late:         c.Late,
			Excused:      c.Excused,
		}
		report.Classes = append(report.Classes, row)
		report.Totals.Present += c.Present
		report.Totals.Absent += c.Absent
		report.Totals.Late += c.Late
		report.Totals.Excused += c.Excused
	}
	sort.SliceStable(report.Classes, func(i, j int) bool {
		return report.Classes[i].Rate > report.Classes[j].Rate
	})
	report.OverallRate = attendanceRate(report.Totals.Present, report.Totals.Total(), 0)

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, report, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("failed to cache attendance report", zap.Error(err))
		}
	}
	return report, nil
}

// ExportAttendance renders the attendance report as a downloadable file.
func (s *ReportService) ExportAttendance(ctx context.Context, scope models.Scope, window models.ReportWindow, format ReportFormat) (*ReportExport, error) {
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export format %q", format))
	}

	report, err := s.Attendance(ctx, scope, window)
	if err != nil {
		return nil, err
	}

	rows := report.Classes
	if s.cfg.MaxExportRows > 0 && len(rows) > s.cfg.MaxExportRows {
		rows = rows[:s.cfg.MaxExportRows]
	}

	dataset := export.Dataset{Headers: reportHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Class":           row.ClassName,
			"Students":        strconv.Itoa(row.StudentCount),
			"Attendance Rate": fmt.Sprintf("%d%%", row.Rate),
			"Present":         strconv.Itoa(row.Present),
			"Absent":          strconv.Itoa(row.Absent),
			"Late":            strconv.Itoa(row.Late),
			"Excused":         strconv.Itoa(row.Excused),
		})
	}

	base := fmt.Sprintf("attendance-report-%s", time.Now().UTC().Format(dateLayout))
	switch format {
	case ReportFormatPDF:
		content, err := s.pdf.Render(dataset, "Attendance Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ReportExport{Filename: base + ".pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ReportExport{Filename: base + ".csv", ContentType: "text/csv", Content: content}, nil
	}
}

// StudentRate returns one student's attendance rate over the last 30
// days. A student with no rows in the window reports 100, so a freshly
// enrolled child does not look chronically absent.
func (s *ReportService) StudentRate(ctx context.Context, scope models.Scope, studentID string) (*models.StudentAttendanceRate, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	switch {
	case scope.Role == models.RoleParent:
		if !scope.HasStudent(studentID) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student is outside your scope")
		}
	case scope.AllSchools():
	case scope.SchoolID != student.SchoolID:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is outside your scope")
	}

	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -29)
	counts, err := s.repo.CountsForStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}

	return &models.StudentAttendanceRate{
		StudentID: studentID,
		From:      from,
		To:        to,
		Rate:      attendanceRate(counts.Present, counts.Total(), 100),
		Counts:    *counts,
	}, nil
}

// attendanceRate is the rounded present percentage; empty windows fall
// back to the given default.
func attendanceRate(present, total, whenEmpty int) int {
	if total == 0 {
		return whenEmpty
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

// windowRange resolves a window to inclusive date bounds ending today.
func windowRange(window models.ReportWindow, now time.Time) (time.Time, time.Time) {
	to := now.Truncate(24 * time.Hour)
	switch window {
	case models.ReportWindowMonth:
		return to.AddDate(0, 0, -29), to
	case models.ReportWindowCal:
		return time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC), to
	default:
		return to.AddDate(0, 0, -6), to
	}
}

func cacheSchoolKey(schoolID string) string {
	if schoolID == "" {
		return "all"
	}
	return schoolID
}
