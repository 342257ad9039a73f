package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/edudesk/edudesk-api/internal/middleware"
	"github.com/edudesk/edudesk-api/internal/policy"
	"github.com/edudesk/edudesk-api/internal/service"
	"github.com/edudesk/edudesk-api/pkg/config"
	"github.com/edudesk/edudesk-api/pkg/logger"
	corsmiddleware "github.com/edudesk/edudesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edudesk/edudesk-api/pkg/middleware/requestid"
	"go.uber.org/zap"
)

// Handlers groups every endpoint handler for route registration.
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Schools       *SchoolHandler
	Classes       *ClassHandler
	Students      *StudentHandler
	Teachers      *TeacherHandler
	Parents       *ParentHandler
	Subjects      *SubjectHandler
	Schedules     *ScheduleHandler
	Attendance    *AttendanceHandler
	Absences      *AbsenceHandler
	Announcements *AnnouncementHandler
	Issues        *IssueHandler
	Reports       *ReportHandler
	Dashboard     *DashboardHandler
}

// RouterDeps carries the cross-cutting pieces the router needs besides
// the handlers themselves.
type RouterDeps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Auth     *service.AuthService
	Metrics  *service.MetricsService
	Ready    func() error
	Handlers Handlers
}

// NewRouter assembles the gin engine: middleware stack, public routes
// and the authenticated API grouped by capability.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if deps.Ready != nil {
			if err := deps.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := deps.Handlers
	api := r.Group(deps.Config.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/register", h.Auth.Register)

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.Auth))

	authed.GET("/auth/me", h.Auth.Me)
	authed.POST("/auth/change-password", h.Auth.ChangePassword)
	authed.GET("/dashboard", h.Dashboard.Get)

	users := authed.Group("/users", middleware.Require(policy.ActionManageParents))
	users.GET("", h.Users.List)
	users.GET("/:id", h.Users.Get)
	users.PUT("/:id/active", h.Users.SetActive)

	schools := authed.Group("/schools")
	schools.GET("", middleware.Require(policy.ActionViewDirectory), h.Schools.List)
	schools.GET("/:id", middleware.Require(policy.ActionViewDirectory), h.Schools.Get)
	schools.POST("", middleware.Require(policy.ActionManageSchools), h.Schools.Create)
	schools.PUT("/:id", middleware.Require(policy.ActionManageSchools), h.Schools.Update)
	schools.DELETE("/:id", middleware.Require(policy.ActionManageSchools), h.Schools.Delete)

	classes := authed.Group("/classes")
	classes.GET("", middleware.Require(policy.ActionViewDirectory), h.Classes.List)
	classes.GET("/:id", middleware.Require(policy.ActionViewDirectory), h.Classes.Get)
	classes.POST("", middleware.Require(policy.ActionManageClasses), h.Classes.Create)
	classes.PUT("/:id", middleware.Require(policy.ActionManageClasses), h.Classes.Update)
	classes.DELETE("/:id", middleware.Require(policy.ActionManageClasses), h.Classes.Deactivate)

	students := authed.Group("/students")
	students.GET("", middleware.Require(policy.ActionViewDirectory), h.Students.List)
	students.GET("/:id", middleware.Require(policy.ActionViewDirectory), h.Students.Get)
	students.GET("/:id/attendance-rate", middleware.Require(policy.ActionViewAttendance), h.Students.AttendanceRate)
	students.POST("", middleware.Require(policy.ActionManageStudents), h.Students.Create)
	students.PUT("/:id", middleware.Require(policy.ActionManageStudents), h.Students.Update)
	students.DELETE("/:id", middleware.Require(policy.ActionManageStudents), h.Students.Deactivate)

	teachers := authed.Group("/teachers")
	teachers.GET("", middleware.Require(policy.ActionViewDirectory), h.Teachers.List)
	teachers.GET("/:id", middleware.Require(policy.ActionViewDirectory), h.Teachers.Get)
	teachers.POST("", middleware.Require(policy.ActionManageTeachers), h.Teachers.Create)
	teachers.PUT("/:id", middleware.Require(policy.ActionManageTeachers), h.Teachers.Update)
	teachers.DELETE("/:id", middleware.Require(policy.ActionManageTeachers), h.Teachers.Deactivate)

	parents := authed.Group("/parents", middleware.Require(policy.ActionManageParents))
	parents.GET("", h.Parents.List)
	parents.GET("/:id", h.Parents.Get)
	parents.PUT("/:id/approval", h.Parents.SetApproval)

	subjects := authed.Group("/subjects")
	subjects.GET("", middleware.Require(policy.ActionViewDirectory), h.Subjects.List)
	subjects.POST("", middleware.Require(policy.ActionManageSubjects), h.Subjects.Create)
	subjects.DELETE("/:id", middleware.Require(policy.ActionManageSubjects), h.Subjects.Delete)

	schedules := authed.Group("/schedules")
	schedules.GET("", middleware.Require(policy.ActionViewDirectory), h.Schedules.List)
	schedules.POST("", middleware.Require(policy.ActionManageSchedules), h.Schedules.Create)
	schedules.DELETE("/:id", middleware.Require(policy.ActionManageSchedules), h.Schedules.Delete)

	attendance := authed.Group("/attendance")
	attendance.GET("", middleware.Require(policy.ActionViewAttendance), h.Attendance.List)
	attendance.GET("/sheet", middleware.Require(policy.ActionMarkAttendance), h.Attendance.Sheet)
	attendance.PUT("/sheet", middleware.Require(policy.ActionMarkAttendance), h.Attendance.SaveSheet)

	absences := authed.Group("/absence-requests")
	absences.GET("", middleware.Require(policy.ActionViewAbsence), h.Absences.List)
	absences.GET("/:id", middleware.Require(policy.ActionViewAbsence), h.Absences.Get)
	absences.POST("", middleware.Require(policy.ActionSubmitAbsence), h.Absences.Submit)
	absences.PUT("/:id/review", middleware.Require(policy.ActionReviewAbsence), h.Absences.Review)

	announcements := authed.Group("/announcements")
	announcements.GET("", middleware.Require(policy.ActionViewAnnouncements), h.Announcements.List)
	announcements.GET("/:id", middleware.Require(policy.ActionViewAnnouncements), h.Announcements.Get)
	announcements.POST("", middleware.Require(policy.ActionManageAnnouncements), h.Announcements.Create)
	announcements.PUT("/:id", middleware.Require(policy.ActionManageAnnouncements), h.Announcements.Update)
	announcements.DELETE("/:id", middleware.Require(policy.ActionManageAnnouncements), h.Announcements.Delete)

	issues := authed.Group("/issues")
	issues.GET("", middleware.Require(policy.ActionReportIssues), h.Issues.List)
	issues.POST("", middleware.Require(policy.ActionReportIssues), h.Issues.Report)
	issues.PUT("/:id/status", middleware.Require(policy.ActionUpdateIssues), h.Issues.UpdateStatus)

	reports := authed.Group("/reports", middleware.Require(policy.ActionViewReports))
	reports.GET("/attendance", h.Reports.Attendance)
	reports.GET("/attendance/export", h.Reports.Export)

	return r
}
