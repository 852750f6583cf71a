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

// AttendanceStore persists attendance sheets
type AttendanceStore interface {
	UpsertBatch(ctx context.Context, records []*models.Attendance) error
	List(ctx context.Context, sc scope.Scope, filter repositories.AttendanceFilter) ([]*models.Attendance, int64, error)
	Report(ctx context.Context, courseID int64, from, to time.Time) ([]*repositories.ReportRow, error)
}

// CourseRoster resolves the active student roster of a course
type CourseRoster interface {
	ActiveStudentIDs(ctx context.Context, courseID int64) ([]int64, error)
}

// AttendanceService handles attendance marking and reporting
type AttendanceService struct {
	attendanceRepo AttendanceStore
	roster         CourseRoster
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(attendanceRepo AttendanceStore, roster CourseRoster) *AttendanceService {
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		roster:         roster,
	}
}

// Mark writes one attendance sheet for a course, date and period. Only
// faculty assigned to the course and admins may mark; remarking a slot
// overwrites the earlier status. Entries for students without an active
// enrollment in the course are rejected.
func (s *AttendanceService) Mark(ctx context.Context, sc scope.Scope, req *dto.MarkAttendanceRequest) ([]*models.Attendance, error) {
	if sc.Kind != scope.KindAdmin && !sc.AllowsCourse(req.CourseID) {
		return nil, apperrors.ErrPermissionDenied
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("date must be YYYY-MM-DD")
	}
	if date.After(time.Now()) {
		return nil, apperrors.NewValidationError("attendance cannot be marked for a future date")
	}

	enrolled, err := s.enrolledSet(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	records := make([]*models.Attendance, 0, len(req.Entries))
	seen := make(map[int64]bool, len(req.Entries))
	for _, entry := range req.Entries {
		if seen[entry.StudentID] {
			return nil, apperrors.NewValidationError("duplicate student in attendance sheet")
		}
		seen[entry.StudentID] = true
		if !enrolled[entry.StudentID] {
			return nil, apperrors.NewValidationError("student is not actively enrolled in this course")
		}
		records = append(records, &models.Attendance{
			StudentID:  entry.StudentID,
			CourseID:   req.CourseID,
			Date:       date,
			Period:     req.Period,
			Status:     entry.Status,
			MarkedByID: sc.UserID,
		})
	}

	if err := s.attendanceRepo.UpsertBatch(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *AttendanceService) enrolledSet(ctx context.Context, courseID int64) (map[int64]bool, error) {
	ids, err := s.roster.ActiveStudentIDs(ctx, courseID)
	if err != nil {
		return nil, err
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// List retrieves attendance records narrowed by the caller's scope
func (s *AttendanceService) List(ctx context.Context, sc scope.Scope, filter repositories.AttendanceFilter) ([]*models.Attendance, int64, error) {
	return s.attendanceRepo.List(ctx, sc, filter)
}

// Report aggregates per-student attendance for a course over a date range.
// Faculty run it only for their own courses.
func (s *AttendanceService) Report(ctx context.Context, sc scope.Scope, courseID int64, from, to time.Time) ([]*dto.AttendanceReport, error) {
	if sc.Kind != scope.KindAdmin && !sc.AllowsCourse(courseID) {
		return nil, apperrors.ErrPermissionDenied
	}

	rows, err := s.attendanceRepo.Report(ctx, courseID, from, to)
	if err != nil {
		return nil, err
	}

	report := make([]*dto.AttendanceReport, 0, len(rows))
	for _, row := range rows {
		entry := &dto.AttendanceReport{
			StudentID:    row.StudentID,
			CourseID:     courseID,
			TotalPeriods: int(row.TotalPeriods),
			Present:      int(row.Present),
			Absent:       int(row.Absent),
			Late:         int(row.Late),
			Excused:      int(row.Excused),
		}
		if row.TotalPeriods > 0 {
			attended := row.Present + row.Late + row.Excused
			entry.Percentage = float64(attended) / float64(row.TotalPeriods) * 100
		}
		report = append(report, entry)
	}
	return report, nil
}
