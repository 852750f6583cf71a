package services

import (
	"context"
	"sort"
	"time"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/pkg/apperrors"
)

// TimetableService handles timetable drafting, approval and schedule views
type TimetableService struct {
	timetableRepo  *repositories.TimetableRepository
	departmentRepo *repositories.DepartmentRepository
	courseRepo     *repositories.CourseRepository
	enrollmentRepo *repositories.EnrollmentRepository
}

// NewTimetableService creates a new timetable service
func NewTimetableService(
	timetableRepo *repositories.TimetableRepository,
	departmentRepo *repositories.DepartmentRepository,
	courseRepo *repositories.CourseRepository,
	enrollmentRepo *repositories.EnrollmentRepository,
) *TimetableService {
	return &TimetableService{
		timetableRepo:  timetableRepo,
		departmentRepo: departmentRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func parseClock(value string) (int, bool) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// validatePeriods checks clock formats, ordering and overlaps. Two periods
// on the same day collide whenever their [start, end) ranges intersect;
// a timetable holds one class at a time per batch.
func validatePeriods(periods []dto.PeriodRequest) error {
	type slot struct {
		start, end int
	}
	byDay := make(map[string][]slot)

	for _, p := range periods {
		if !models.IsValidWeekday(p.Day) {
			return apperrors.NewValidationError("unknown weekday: " + p.Day)
		}
		start, ok := parseClock(p.StartTime)
		if !ok {
			return apperrors.NewValidationError("startTime must be HH:MM")
		}
		end, ok := parseClock(p.EndTime)
		if !ok {
			return apperrors.NewValidationError("endTime must be HH:MM")
		}
		if start >= end {
			return apperrors.ErrInvalidPeriodTime
		}
		byDay[p.Day] = append(byDay[p.Day], slot{start: start, end: end})
	}

	for _, slots := range byDay {
		sort.Slice(slots, func(i, j int) bool { return slots[i].start < slots[j].start })
		for i := 1; i < len(slots); i++ {
			if slots[i].start < slots[i-1].end {
				return apperrors.ErrPeriodOverlap
			}
		}
	}
	return nil
}

func toPeriods(reqs []dto.PeriodRequest) []models.Period {
	periods := make([]models.Period, len(reqs))
	for i, p := range reqs {
		periods[i] = models.Period{
			Day:       p.Day,
			StartTime: p.StartTime,
			EndTime:   p.EndTime,
			CourseID:  p.CourseID,
			FacultyID: p.FacultyID,
			Room:      p.Room,
		}
	}
	return periods
}

// Create drafts a timetable after validating its periods
func (s *TimetableService) Create(ctx context.Context, createdBy int64, req *dto.CreateTimetableRequest) (*models.Timetable, error) {
	if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		return nil, err
	}
	if err := validatePeriods(req.Periods); err != nil {
		return nil, err
	}

	t := &models.Timetable{
		DepartmentID: req.DepartmentID,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		Type:         req.Type,
		Batch:        req.Batch,
		CreatedByID:  createdBy,
		Periods:      toPeriods(req.Periods),
	}
	if err := s.timetableRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get retrieves one timetable with its periods
func (s *TimetableService) Get(ctx context.Context, id int64) (*models.Timetable, error) {
	return s.timetableRepo.GetByID(ctx, id)
}

// List retrieves timetables with filtering and pagination
func (s *TimetableService) List(ctx context.Context, filter repositories.TimetableFilter) ([]*models.Timetable, int64, error) {
	return s.timetableRepo.List(ctx, filter)
}

// Update replaces a draft timetable's periods
func (s *TimetableService) Update(ctx context.Context, id int64, req *dto.UpdateTimetableRequest) (*models.Timetable, error) {
	if err := validatePeriods(req.Periods); err != nil {
		return nil, err
	}
	if err := s.timetableRepo.ReplacePeriods(ctx, id, toPeriods(req.Periods)); err != nil {
		return nil, err
	}
	return s.timetableRepo.GetByID(ctx, id)
}

// SubmitForApproval moves a draft to pending
func (s *TimetableService) SubmitForApproval(ctx context.Context, id int64) error {
	return s.timetableRepo.UpdateStatus(ctx, id, models.TimetableDraft, models.TimetablePending)
}

// Approve activates a pending timetable, deactivating the previous active
// one for the same key
func (s *TimetableService) Approve(ctx context.Context, id int64) (*models.Timetable, error) {
	return s.timetableRepo.Approve(ctx, id)
}

// Reject sends a pending timetable back to draft
func (s *TimetableService) Reject(ctx context.Context, id int64) error {
	return s.timetableRepo.UpdateStatus(ctx, id, models.TimetablePending, models.TimetableDraft)
}

// Delete removes a draft timetable
func (s *TimetableService) Delete(ctx context.Context, id int64) error {
	return s.timetableRepo.Delete(ctx, id)
}

// FacultyConflicts reports faculty double-booked across active timetables
func (s *TimetableService) FacultyConflicts(ctx context.Context) ([]*models.FacultyConflict, error) {
	return s.timetableRepo.FacultyConflicts(ctx)
}

// MySchedule returns the periods of active timetables relevant to the
// caller: a student's enrolled courses or a faculty member's assigned
// courses.
func (s *TimetableService) MySchedule(ctx context.Context, sc scope.Scope) ([]models.Period, error) {
	var courseIDs []int64
	var err error

	switch sc.Kind {
	case scope.KindStudent:
		courseIDs, err = s.enrollmentRepo.ActiveCourseIDsByStudent(ctx, sc.StudentID)
		if err != nil {
			return nil, err
		}
	case scope.KindFaculty:
		courseIDs = sc.CourseIDs
	default:
		return nil, apperrors.ErrScopeNotApplicable
	}

	return s.timetableRepo.PeriodsForCourses(ctx, courseIDs)
}
