package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	_ "github.com/edudesk/edudesk-api/api/swagger"
	"github.com/edudesk/edudesk-api/internal/handler"
	"github.com/edudesk/edudesk-api/internal/repository"
	"github.com/edudesk/edudesk-api/internal/seed"
	"github.com/edudesk/edudesk-api/internal/service"
	"github.com/edudesk/edudesk-api/pkg/cache"
	"github.com/edudesk/edudesk-api/pkg/config"
	"github.com/edudesk/edudesk-api/pkg/database"
	"github.com/edudesk/edudesk-api/pkg/export"
	"github.com/edudesk/edudesk-api/pkg/logger"
)

// @title EduDesk API
// @version 1.0.0
// @description Role-based school management: attendance, absences, announcements and reporting
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	// A missing redis degrades caching, it does not block startup.
	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logr)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	parentRepo := repository.NewParentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	absenceRepo := repository.NewAbsenceRequestRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	issueRepo := repository.NewIssueRepository(db)

	authSvc := service.NewAuthService(userRepo, parentRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	scopeSvc := service.NewScopeService(teacherRepo, parentRepo, studentRepo, logr)
	schoolSvc := service.NewSchoolService(schoolRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, classRepo, parentRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, userRepo, validate, logr)
	parentSvc := service.NewParentService(parentRepo, studentRepo, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, classRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, classRepo, studentRepo, cacheSvc, validate, logr)
	absenceSvc := service.NewAbsenceService(absenceRepo, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, validate, logr)
	issueSvc := service.NewIssueService(issueRepo, validate, logr)
	userSvc := service.NewUserService(userRepo, logr)
	reportSvc := service.NewReportService(attendanceRepo, studentRepo, cacheSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr, service.ReportConfig{
		CacheTTL:      cfg.Reports.CacheTTL,
		MaxExportRows: cfg.Reports.MaxExportRow,
	})
	dashboardSvc := service.NewDashboardService(service.DashboardParams{
		Schools:       schoolRepo,
		Attendance:    attendanceRepo,
		Absences:      absenceRepo,
		Announcements: announcementRepo,
		Cache:         cacheSvc,
		Logger:        logr,
		Config:        service.DashboardConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	if cfg.Seed.Demo {
		seeder := seed.New(seed.Stores{
			Users:         userRepo,
			Schools:       schoolRepo,
			Classes:       classRepo,
			Students:      studentRepo,
			Teachers:      teacherRepo,
			Parents:       parentRepo,
			Attendance:    attendanceRepo,
			Announcements: announcementRepo,
			Absences:      absenceRepo,
		}, logr)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := seeder.Run(ctx); err != nil {
			logr.Sugar().Errorw("demo seed failed", "error", err)
		}
		cancel()
	}

	r := handler.NewRouter(handler.RouterDeps{
		Config:  cfg,
		Logger:  logr,
		Auth:    authSvc,
		Metrics: metrics,
		Ready:   db.Ping,
		Handlers: handler.Handlers{
			Auth:          handler.NewAuthHandler(authSvc),
			Users:         handler.NewUserHandler(userSvc, scopeSvc),
			Schools:       handler.NewSchoolHandler(schoolSvc, scopeSvc),
			Classes:       handler.NewClassHandler(classSvc, scopeSvc),
			Students:      handler.NewStudentHandler(studentSvc, reportSvc, scopeSvc),
			Teachers:      handler.NewTeacherHandler(teacherSvc, scopeSvc),
			Parents:       handler.NewParentHandler(parentSvc, scopeSvc),
			Subjects:      handler.NewSubjectHandler(subjectSvc, scopeSvc),
			Schedules:     handler.NewScheduleHandler(scheduleSvc, scopeSvc),
			Attendance:    handler.NewAttendanceHandler(attendanceSvc, scopeSvc),
			Absences:      handler.NewAbsenceHandler(absenceSvc, scopeSvc),
			Announcements: handler.NewAnnouncementHandler(announcementSvc, scopeSvc),
			Issues:        handler.NewIssueHandler(issueSvc, scopeSvc),
			Reports:       handler.NewReportHandler(reportSvc, scopeSvc),
			Dashboard:     handler.NewDashboardHandler(dashboardSvc, scopeSvc),
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server stopped", "error", err)
	}
}
