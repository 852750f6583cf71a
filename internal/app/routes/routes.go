package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/campuserp/internal/app/audit"
	"github.com/emre/campuserp/internal/app/controllers"
	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/config"
	"github.com/emre/campuserp/internal/middleware"
	"github.com/emre/campuserp/internal/pkg/helpers"
	"github.com/emre/campuserp/internal/pkg/ratelimit"
)

// Controllers bundles every controller the router mounts
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Student    *controllers.StudentController
	Faculty    *controllers.FacultyController
	Department *controllers.DepartmentController
	Course     *controllers.CourseController
	Enrollment *controllers.EnrollmentController
	Attendance *controllers.AttendanceController
	Fee        *controllers.FeeController
	Library    *controllers.LibraryController
	Notice     *controllers.NoticeController
	Timetable  *controllers.TimetableController
	Audit      *controllers.AuditController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	cfg *config.Config,
	dbPool *pgxpool.Pool,
	c *Controllers,
	authMiddleware *middleware.AuthMiddleware,
	auditRecorder audit.Recorder,
	limiter ratelimit.Store,
) {
	apiLimit := middleware.RateLimit(limiter, "api",
		cfg.RateLimit.APIRequests, helpers.ParseDuration(cfg.RateLimit.APIWindow, 15*time.Minute))
	loginLimit := middleware.RateLimit(limiter, "login",
		cfg.RateLimit.LoginRequests, helpers.ParseDuration(cfg.RateLimit.LoginWindow, 15*time.Minute))
	resetLimit := middleware.RateLimit(limiter, "reset",
		cfg.RateLimit.ResetRequests, helpers.ParseDuration(cfg.RateLimit.ResetWindow, time.Hour))

	v1 := router.Group("/api/v1")
	v1.Use(apiLimit)

	// Health check endpoint (public)
	v1.GET("/health", func(ctx *gin.Context) {
		if err := dbPool.Ping(ctx); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database unreachable")))
			return
		}
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, "Healthy"))
	})

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", loginLimit, c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.GET("/verify-email", c.Auth.VerifyEmail)
		auth.POST("/resend-verification", c.Auth.ResendVerification)
		auth.POST("/forgot-password", resetLimit, c.Auth.ForgotPassword)
		auth.POST("/reset-password", c.Auth.ResetPassword)
	}

	// --- Authenticated routes ---
	// Every route below carries the resolved role scope and the audit
	// middleware, so mutating handlers only have to declare their entry.
	authenticated := v1.Group("")
	authenticated.Use(
		authMiddleware.JWTAuth(),
		authMiddleware.ResolveScope(),
		audit.Middleware(auditRecorder),
	)

	authSelf := authenticated.Group("/auth")
	{
		authSelf.POST("/logout", c.Auth.Logout)
		authSelf.GET("/me", c.Auth.GetProfile)
		authSelf.PUT("/me", c.Auth.UpdateProfile)
		authSelf.PUT("/me/password", c.Auth.ChangePassword)
	}

	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/users", c.User.ListUsers)
		admin.POST("/users", c.User.CreateUser)
		admin.GET("/users/:id", c.User.GetUser)
		admin.PUT("/users/:id", c.User.UpdateUser)
		admin.PUT("/users/:id/status", c.User.UpdateUserStatus)
		admin.DELETE("/users/:id", c.User.DeleteUser)
		admin.GET("/stats", c.User.GetStats)
		admin.GET("/audit-logs", c.Audit.ListAuditLogs)
	}

	students := authenticated.Group("/students")
	{
		students.GET("", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleFaculty), c.Student.ListStudents)
		students.GET("/dashboard", authMiddleware.RoleRequired(models.RoleStudent), c.Student.Dashboard)
		students.GET("/:id", c.Student.GetStudent)
		students.PUT("/:id", authMiddleware.RoleRequired(models.RoleAdmin), c.Student.UpdateStudent)
	}

	faculty := authenticated.Group("/faculty")
	{
		faculty.GET("", c.Faculty.ListFaculty)
		faculty.GET("/dashboard", authMiddleware.RoleRequired(models.RoleFaculty), c.Faculty.Dashboard)
		faculty.GET("/:id", c.Faculty.GetFaculty)
		faculty.PUT("/:id", authMiddleware.RoleRequired(models.RoleAdmin), c.Faculty.UpdateFaculty)
	}

	departments := authenticated.Group("/departments")
	{
		departments.GET("", c.Department.ListDepartments)
		departments.GET("/:id", c.Department.GetDepartment)

		departmentsAdmin := departments.Group("")
		departmentsAdmin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			departmentsAdmin.POST("", c.Department.CreateDepartment)
			departmentsAdmin.PUT("/:id", c.Department.UpdateDepartment)
			departmentsAdmin.DELETE("/:id", c.Department.DeleteDepartment)
		}
	}

	courses := authenticated.Group("/courses")
	{
		courses.GET("", c.Course.ListCourses)
		courses.GET("/:id", c.Course.GetCourse)
		courses.POST("", authMiddleware.RoleRequired(models.RoleAdmin), c.Course.CreateCourse)
		// Coordinators update their own courses; the service enforces it.
		courses.PUT("/:id", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleFaculty), c.Course.UpdateCourse)
		courses.DELETE("/:id", authMiddleware.RoleRequired(models.RoleAdmin), c.Course.DeleteCourse)
	}

	enrollments := authenticated.Group("/enrollments")
	{
		enrollments.POST("", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleStudent), c.Enrollment.Enroll)
		enrollments.GET("", c.Enrollment.ListEnrollments)
		enrollments.GET("/:id", c.Enrollment.GetEnrollment)
		enrollments.PUT("/:id/status", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleStudent), c.Enrollment.UpdateStatus)
		enrollments.PUT("/:id/grade", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleFaculty), c.Enrollment.SubmitGrade)
	}

	attendance := authenticated.Group("/attendance")
	{
		attendance.POST("/mark", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleFaculty), c.Attendance.Mark)
		attendance.GET("", c.Attendance.ListAttendance)
		attendance.GET("/report/:courseId", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleFaculty), c.Attendance.Report)
	}

	fees := authenticated.Group("/fees")
	{
		fees.POST("", authMiddleware.RoleRequired(models.RoleAdmin), c.Fee.CreateFee)
		fees.GET("/summary", c.Fee.Summary)
		fees.GET("", c.Fee.ListFees)
		fees.GET("/:id", c.Fee.GetFee)
		fees.POST("/:id/pay", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleStudent), c.Fee.PayFee)
		fees.GET("/:id/payments", c.Fee.ListPayments)
	}

	library := authenticated.Group("/library")
	{
		library.GET("/books", c.Library.ListBooks)
		library.GET("/books/:id", c.Library.GetBook)

		libraryStaff := library.Group("")
		libraryStaff.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleLibrarian))
		{
			libraryStaff.POST("/books", c.Library.CreateBook)
			libraryStaff.PUT("/books/:id", c.Library.UpdateBook)
			libraryStaff.DELETE("/books/:id", c.Library.DeleteBook)
		}

		library.POST("/borrow", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleLibrarian, models.RoleStudent), c.Library.Borrow)
		library.POST("/return", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleLibrarian, models.RoleStudent), c.Library.Return)
		library.POST("/renew", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleLibrarian, models.RoleStudent), c.Library.Renew)
		library.GET("/records", c.Library.ListLoans)
	}

	notices := authenticated.Group("/notices")
	{
		notices.GET("", c.Notice.ListNotices)
		notices.GET("/:id", c.Notice.GetNotice)
		notices.POST("/:id/read", c.Notice.MarkRead)

		noticesAuthor := notices.Group("")
		noticesAuthor.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleFaculty))
		{
			noticesAuthor.POST("", c.Notice.CreateNotice)
			noticesAuthor.GET("/:id/stats", c.Notice.Stats)
			noticesAuthor.PUT("/:id", c.Notice.UpdateNotice)
			noticesAuthor.POST("/:id/archive", c.Notice.ArchiveNotice)
			noticesAuthor.DELETE("/:id", c.Notice.DeleteNotice)
		}
	}

	timetable := authenticated.Group("/timetable")
	{
		timetable.GET("", c.Timetable.ListTimetables)
		timetable.GET("/me/schedule", c.Timetable.MySchedule)
		timetable.GET("/:id", c.Timetable.GetTimetable)

		timetableAdmin := timetable.Group("")
		timetableAdmin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			timetableAdmin.POST("", c.Timetable.CreateTimetable)
			timetableAdmin.PUT("/:id", c.Timetable.UpdateTimetable)
			timetableAdmin.POST("/:id/submit", c.Timetable.SubmitTimetable)
			timetableAdmin.POST("/:id/approve", c.Timetable.ApproveTimetable)
			timetableAdmin.POST("/:id/reject", c.Timetable.RejectTimetable)
			timetableAdmin.DELETE("/:id", c.Timetable.DeleteTimetable)
			timetableAdmin.GET("/conflicts", c.Timetable.FacultyConflicts)
		}
	}
}
