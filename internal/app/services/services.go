package services

import (
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/config"
	"github.com/emre/campuserp/internal/pkg/auth"
	"github.com/emre/campuserp/internal/pkg/email"
	"github.com/emre/campuserp/internal/pkg/filestorage"
)

// Services holds all the service instances
type Services struct {
	AuthService       *AuthService
	UserService       *UserService
	StudentService    *StudentService
	FacultyService    *FacultyService
	DepartmentService *DepartmentService
	CourseService     *CourseService
	EnrollmentService *EnrollmentService
	AttendanceService *AttendanceService
	FeeService        *FeeService
	LibraryService    *LibraryService
	NoticeService     *NoticeService
	TimetableService  *TimetableService
	AuditService      *AuditService
}

// NewServices initializes all services
func NewServices(
	repos *repositories.Repositories,
	cfg *config.Config,
	jwtService *auth.JWTService,
	emailSvc email.EmailService,
	storage filestorage.FileStorage,
) *Services {
	return &Services{
		AuthService: NewAuthService(
			repos.UserRepository, repos.StudentRepository, repos.FacultyRepository,
			repos.TokenRepository, jwtService, emailSvc),
		UserService: NewUserService(
			repos.UserRepository, repos.StudentRepository, repos.FacultyRepository,
			repos.CourseRepository, repos.EnrollmentRepository, repos.FeeRepository,
			repos.TokenRepository),
		StudentService: NewStudentService(
			repos.StudentRepository, repos.EnrollmentRepository, repos.AttendanceRepository,
			repos.FeeRepository, repos.LibraryRepository),
		FacultyService: NewFacultyService(
			repos.FacultyRepository, repos.CourseRepository, repos.TimetableRepository),
		DepartmentService: NewDepartmentService(
			repos.DepartmentRepository, repos.FacultyRepository),
		CourseService: NewCourseService(
			repos.CourseRepository, repos.DepartmentRepository, repos.FacultyRepository),
		EnrollmentService: NewEnrollmentService(
			repos.EnrollmentRepository, repos.CourseRepository, repos.StudentRepository),
		AttendanceService: NewAttendanceService(
			repos.AttendanceRepository, repos.EnrollmentRepository),
		FeeService: NewFeeService(
			repos.FeeRepository, repos.StudentRepository),
		LibraryService: NewLibraryService(
			repos.LibraryRepository, repos.StudentRepository, repos.FeeRepository, cfg.Library),
		NoticeService: NewNoticeService(
			repos.NoticeRepository, repos.StudentRepository, repos.FacultyRepository, storage),
		TimetableService: NewTimetableService(
			repos.TimetableRepository, repos.DepartmentRepository, repos.CourseRepository,
			repos.EnrollmentRepository),
		AuditService: NewAuditService(
			repos.AuditRepository, cfg.Audit.RetentionDays),
	}
}
