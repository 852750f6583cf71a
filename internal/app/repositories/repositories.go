package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	StudentRepository    *StudentRepository
	FacultyRepository    *FacultyRepository
	DepartmentRepository *DepartmentRepository
	CourseRepository     *CourseRepository
	EnrollmentRepository *EnrollmentRepository
	AttendanceRepository *AttendanceRepository
	FeeRepository        *FeeRepository
	LibraryRepository    *LibraryRepository
	NoticeRepository     *NoticeRepository
	TimetableRepository  *TimetableRepository
	AuditRepository      *AuditRepository
	TokenRepository      *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		StudentRepository:    NewStudentRepository(db),
		FacultyRepository:    NewFacultyRepository(db),
		DepartmentRepository: NewDepartmentRepository(db),
		CourseRepository:     NewCourseRepository(db),
		EnrollmentRepository: NewEnrollmentRepository(db),
		AttendanceRepository: NewAttendanceRepository(db),
		FeeRepository:        NewFeeRepository(db),
		LibraryRepository:    NewLibraryRepository(db),
		NoticeRepository:     NewNoticeRepository(db),
		TimetableRepository:  NewTimetableRepository(db),
		AuditRepository:      NewAuditRepository(db),
		TokenRepository:      NewTokenRepository(db),
	}
}
