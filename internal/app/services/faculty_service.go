package services

import (
	"context"
	"time"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/pkg/apperrors"
)

// FacultyService handles faculty profile management and the faculty
// dashboard
type FacultyService struct {
	facultyRepo   *repositories.FacultyRepository
	courseRepo    *repositories.CourseRepository
	timetableRepo *repositories.TimetableRepository
}

// NewFacultyService creates a new faculty service
func NewFacultyService(
	facultyRepo *repositories.FacultyRepository,
	courseRepo *repositories.CourseRepository,
	timetableRepo *repositories.TimetableRepository,
) *FacultyService {
	return &FacultyService{
		facultyRepo:   facultyRepo,
		courseRepo:    courseRepo,
		timetableRepo: timetableRepo,
	}
}

// List retrieves faculty profiles. The directory is visible to every
// authenticated role.
func (s *FacultyService) List(ctx context.Context, filter repositories.FacultyFilter) ([]*models.FacultyMember, int64, error) {
	return s.facultyRepo.List(ctx, filter)
}

// Get retrieves one faculty profile
func (s *FacultyService) Get(ctx context.Context, id int64) (*models.FacultyMember, error) {
	return s.facultyRepo.GetByID(ctx, id)
}

// UpdateFacultyRequest updates the admin-editable profile fields
type UpdateFacultyRequest struct {
	DepartmentID    int64  `json:"departmentId" binding:"required,min=1"`
	Designation     string `json:"designation" binding:"required"`
	ExperienceYears int    `json:"experienceYears" binding:"min=0"`
}

// Update updates a faculty profile. Admin-only.
func (s *FacultyService) Update(ctx context.Context, id int64, req *UpdateFacultyRequest) (*models.FacultyMember, error) {
	member, err := s.facultyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	member.DepartmentID = req.DepartmentID
	member.Designation = req.Designation
	member.ExperienceYears = req.ExperienceYears
	if err := s.facultyRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "MONDAY",
	time.Tuesday:   "TUESDAY",
	time.Wednesday: "WEDNESDAY",
	time.Thursday:  "THURSDAY",
	time.Friday:    "FRIDAY",
	time.Saturday:  "SATURDAY",
}

// Dashboard assembles the faculty self-service dashboard
func (s *FacultyService) Dashboard(ctx context.Context, sc scope.Scope) (*dto.FacultyDashboard, error) {
	if sc.Kind != scope.KindFaculty {
		return nil, apperrors.ErrScopeNotApplicable
	}

	member, err := s.facultyRepo.GetByID(ctx, sc.FacultyID)
	if err != nil {
		return nil, err
	}

	courses := make([]*models.Course, 0, len(sc.CourseIDs))
	for _, id := range sc.CourseIDs {
		course, err := s.courseRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	periods, err := s.timetableRepo.PeriodsForCourses(ctx, sc.CourseIDs)
	if err != nil {
		return nil, err
	}

	today := weekdayNames[time.Now().Weekday()]
	var todayPeriods []models.Period
	for _, p := range periods {
		if p.Day == today && p.FacultyID == sc.FacultyID {
			todayPeriods = append(todayPeriods, p)
		}
	}

	return &dto.FacultyDashboard{
		Profile:      member,
		Courses:      courses,
		TodayPeriods: todayPeriods,
	}, nil
}
