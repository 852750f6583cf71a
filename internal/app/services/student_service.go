package services

import (
	"context"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/pkg/apperrors"
)

// StudentService handles student profile management and the student
// dashboard
type StudentService struct {
	studentRepo    *repositories.StudentRepository
	enrollmentRepo *repositories.EnrollmentRepository
	attendanceRepo *repositories.AttendanceRepository
	feeRepo        *repositories.FeeRepository
	libraryRepo    *repositories.LibraryRepository
}

// NewStudentService creates a new student service
func NewStudentService(
	studentRepo *repositories.StudentRepository,
	enrollmentRepo *repositories.EnrollmentRepository,
	attendanceRepo *repositories.AttendanceRepository,
	feeRepo *repositories.FeeRepository,
	libraryRepo *repositories.LibraryRepository,
) *StudentService {
	return &StudentService{
		studentRepo:    studentRepo,
		enrollmentRepo: enrollmentRepo,
		attendanceRepo: attendanceRepo,
		feeRepo:        feeRepo,
		libraryRepo:    libraryRepo,
	}
}

// List retrieves student profiles narrowed by the caller's scope: faculty
// see only students enrolled in their courses, students only themselves.
func (s *StudentService) List(ctx context.Context, sc scope.Scope, filter repositories.StudentFilter) ([]*models.Student, int64, error) {
	var courseIDs []int64
	switch sc.Kind {
	case scope.KindFaculty:
		courseIDs = sc.CourseIDs
		if courseIDs == nil {
			courseIDs = []int64{}
		}
	case scope.KindStudent:
		student, err := s.studentRepo.GetByID(ctx, sc.StudentID)
		if err != nil {
			return nil, 0, err
		}
		return []*models.Student{student}, 1, nil
	}
	return s.studentRepo.List(ctx, filter, courseIDs)
}

// Get retrieves one student profile, limited to profiles the caller's
// scope allows
func (s *StudentService) Get(ctx context.Context, sc scope.Scope, id int64) (*models.Student, error) {
	if sc.Kind == scope.KindFaculty {
		// Faculty access is by enrollment, checked below
	} else if !sc.AllowsStudent(id) {
		return nil, apperrors.ErrStudentNotFound
	}

	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if sc.Kind == scope.KindFaculty {
		courseIDs, err := s.enrollmentRepo.ActiveCourseIDsByStudent(ctx, id)
		if err != nil {
			return nil, err
		}
		allowed := false
		for _, cid := range courseIDs {
			if sc.AllowsCourse(cid) {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, apperrors.ErrStudentNotFound
		}
	}

	return student, nil
}

// UpdateStudentRequest updates the admin-editable profile fields
type UpdateStudentRequest struct {
	DepartmentID int64  `json:"departmentId" binding:"required,min=1"`
	Semester     int    `json:"semester" binding:"required,min=1,max=12"`
	Batch        string `json:"batch" binding:"required"`
}

// Update updates a student profile. Admin-only.
func (s *StudentService) Update(ctx context.Context, id int64, req *UpdateStudentRequest) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	student.DepartmentID = req.DepartmentID
	student.Semester = req.Semester
	student.Batch = req.Batch
	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Dashboard assembles the student self-service dashboard
func (s *StudentService) Dashboard(ctx context.Context, sc scope.Scope) (*dto.StudentDashboard, error) {
	if sc.Kind != scope.KindStudent {
		return nil, apperrors.ErrScopeNotApplicable
	}

	student, err := s.studentRepo.GetByID(ctx, sc.StudentID)
	if err != nil {
		return nil, err
	}

	activeEnrollments, err := s.enrollmentRepo.CountActiveByStudent(ctx, sc.StudentID)
	if err != nil {
		return nil, err
	}
	totalPeriods, presentPeriods, err := s.attendanceRepo.StudentSummary(ctx, sc.StudentID, 0)
	if err != nil {
		return nil, err
	}
	_, _, feesDue, err := s.feeRepo.SummaryByStudent(ctx, sc.StudentID)
	if err != nil {
		return nil, err
	}
	loans, _, err := s.libraryRepo.ListBorrowRecords(ctx, sc,
		repositories.BorrowFilter{Status: string(models.BorrowActive), Page: 1, Size: 10})
	if err != nil {
		return nil, err
	}

	attendancePct := 0.0
	if totalPeriods > 0 {
		attendancePct = float64(presentPeriods) / float64(totalPeriods) * 100
	}

	return &dto.StudentDashboard{
		Profile: student,
		Stats: map[string]interface{}{
			"activeEnrollments":    activeEnrollments,
			"creditsEarned":        student.CreditsEarned,
			"attendancePercentage": attendancePct,
			"feesOutstanding":      feesDue,
			"activeLoans":          len(loans),
		},
		RecentActivity: loans,
	}, nil
}
