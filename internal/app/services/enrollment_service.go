package services

import (
	"context"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/pkg/apperrors"
)

// EnrollmentStore persists enrollments. CreateWithCapacity runs the
// capacity and uniqueness checks under the course row lock.
type EnrollmentStore interface {
	CreateWithCapacity(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	List(ctx context.Context, sc scope.Scope, filter repositories.EnrollmentFilter) ([]*models.Enrollment, int64, error)
	PassedCourseIDs(ctx context.Context, studentID int64, courseIDs []int64) ([]int64, error)
	UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error
	SubmitGrade(ctx context.Context, id int64, grade string, passed bool, credits int) error
}

// CourseGetter resolves a course by id
type CourseGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Course, error)
}

// StudentGetter resolves a student profile by id
type StudentGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Student, error)
}

// EnrollmentService handles enrollment lifecycle operations
type EnrollmentService struct {
	enrollmentRepo EnrollmentStore
	courseRepo     CourseGetter
	studentRepo    StudentGetter
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(
	enrollmentRepo EnrollmentStore,
	courseRepo CourseGetter,
	studentRepo StudentGetter,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		studentRepo:    studentRepo,
	}
}

// Enroll creates an enrollment. Students enroll themselves; admins name
// any student. Prerequisites must be passed and the capacity check runs
// under the course row lock.
func (s *EnrollmentService) Enroll(ctx context.Context, sc scope.Scope, req *dto.CreateEnrollmentRequest) (*models.Enrollment, error) {
	studentID := req.StudentID
	switch sc.Kind {
	case scope.KindStudent:
		studentID = sc.StudentID
	case scope.KindAdmin:
		if studentID == 0 {
			return nil, apperrors.NewValidationError("studentId is required")
		}
	default:
		return nil, apperrors.ErrPermissionDenied
	}

	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	if len(course.PrerequisiteIDs) > 0 {
		passed, err := s.enrollmentRepo.PassedCourseIDs(ctx, studentID, course.PrerequisiteIDs)
		if err != nil {
			return nil, err
		}
		if len(passed) < len(course.PrerequisiteIDs) {
			return nil, apperrors.ErrPrerequisiteNotMet
		}
	}

	enrollment := &models.Enrollment{
		StudentID:    studentID,
		CourseID:     req.CourseID,
		AcademicYear: req.AcademicYear,
		Status:       models.EnrollmentActive,
	}
	if err := s.enrollmentRepo.CreateWithCapacity(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Get retrieves one enrollment, limited to records the caller's scope
// allows
func (s *EnrollmentService) Get(ctx context.Context, sc scope.Scope, id int64) (*models.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canAccess(sc, enrollment) {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	return enrollment, nil
}

func (s *EnrollmentService) canAccess(sc scope.Scope, e *models.Enrollment) bool {
	switch sc.Kind {
	case scope.KindAdmin:
		return true
	case scope.KindStudent:
		return sc.StudentID == e.StudentID
	case scope.KindFaculty:
		return sc.AllowsCourse(e.CourseID)
	}
	return false
}

// List retrieves enrollments narrowed by the caller's scope
func (s *EnrollmentService) List(ctx context.Context, sc scope.Scope, filter repositories.EnrollmentFilter) ([]*models.Enrollment, int64, error) {
	return s.enrollmentRepo.List(ctx, sc, filter)
}

// UpdateStatus transitions an enrollment. Students may only withdraw their
// own active enrollment; other transitions are admin operations.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, sc scope.Scope, id int64, status models.EnrollmentStatus) (*models.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if sc.Kind == scope.KindStudent {
		if sc.StudentID != enrollment.StudentID {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		if status != models.EnrollmentWithdrawn || enrollment.Status != models.EnrollmentActive {
			return nil, apperrors.ErrPermissionDenied
		}
	} else if sc.Kind != scope.KindAdmin {
		return nil, apperrors.ErrPermissionDenied
	}

	if err := s.enrollmentRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	enrollment.Status = status
	return enrollment, nil
}

// SubmitGrade records a final grade. Only faculty teaching the course and
// admins may grade; a passing grade completes the enrollment and credits
// the student.
func (s *EnrollmentService) SubmitGrade(ctx context.Context, sc scope.Scope, id int64, grade string) (*models.Enrollment, error) {
	if !models.PassingGrades[grade] && grade != "F" {
		return nil, apperrors.NewValidationError("unknown grade")
	}

	enrollment, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc.Kind != scope.KindAdmin && !sc.AllowsCourse(enrollment.CourseID) {
		return nil, apperrors.ErrPermissionDenied
	}
	if enrollment.Status != models.EnrollmentActive {
		return nil, apperrors.NewValidationError("only active enrollments can be graded")
	}

	course, err := s.courseRepo.GetByID(ctx, enrollment.CourseID)
	if err != nil {
		return nil, err
	}

	passed := models.PassingGrades[grade]
	if err := s.enrollmentRepo.SubmitGrade(ctx, id, grade, passed, course.Credits); err != nil {
		return nil, err
	}

	enrollment.Grade = &grade
	if passed {
		enrollment.Status = models.EnrollmentCompleted
	} else {
		enrollment.Status = models.EnrollmentFailed
	}
	return enrollment, nil
}
