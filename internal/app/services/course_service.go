package services

import (
	"context"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/pkg/apperrors"
)

// CourseService handles course management
type CourseService struct {
	courseRepo     *repositories.CourseRepository
	departmentRepo *repositories.DepartmentRepository
	facultyRepo    *repositories.FacultyRepository
}

// NewCourseService creates a new course service
func NewCourseService(
	courseRepo *repositories.CourseRepository,
	departmentRepo *repositories.DepartmentRepository,
	facultyRepo *repositories.FacultyRepository,
) *CourseService {
	return &CourseService{
		courseRepo:     courseRepo,
		departmentRepo: departmentRepo,
		facultyRepo:    facultyRepo,
	}
}

// Create creates a course after verifying its department and coordinator
func (s *CourseService) Create(ctx context.Context, req *dto.CreateCourseRequest) (*models.Course, error) {
	if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		return nil, err
	}
	if _, err := s.facultyRepo.GetByID(ctx, req.CoordinatorID); err != nil {
		return nil, err
	}

	course := &models.Course{
		Code:            req.Code,
		Name:            req.Name,
		Description:     req.Description,
		DepartmentID:    req.DepartmentID,
		CoordinatorID:   req.CoordinatorID,
		Credits:         req.Credits,
		Semester:        req.Semester,
		MaxEnrollment:   req.MaxEnrollment,
		InstructorIDs:   req.InstructorIDs,
		PrerequisiteIDs: req.PrerequisiteIDs,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// Get retrieves one course with its links and enrollment count
func (s *CourseService) Get(ctx context.Context, id int64) (*models.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

// List retrieves courses with filtering and pagination
func (s *CourseService) List(ctx context.Context, filter repositories.CourseFilter) ([]*models.Course, int64, error) {
	return s.courseRepo.List(ctx, filter)
}

// Update updates a course. Faculty callers may only update courses they
// coordinate or teach; admins update any.
func (s *CourseService) Update(ctx context.Context, sc scope.Scope, id int64, req *dto.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sc.AllowsCourse(id) {
		return nil, apperrors.ErrPermissionDenied
	}
	if _, err := s.facultyRepo.GetByID(ctx, req.CoordinatorID); err != nil {
		return nil, err
	}

	course.Name = req.Name
	course.Description = req.Description
	course.CoordinatorID = req.CoordinatorID
	course.Credits = req.Credits
	course.Semester = req.Semester
	course.MaxEnrollment = req.MaxEnrollment
	course.InstructorIDs = req.InstructorIDs
	course.PrerequisiteIDs = req.PrerequisiteIDs
	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// Delete removes a course without enrollments
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	return s.courseRepo.Delete(ctx, id)
}
