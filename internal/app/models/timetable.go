package models

import "time"

// TimetableStatus is the draft -> pending -> approved lifecycle state.
// At most one timetable per (department, semester, academic year, type)
// is active at a time.
type TimetableStatus string

const (
	TimetableDraft    TimetableStatus = "DRAFT"
	TimetablePending  TimetableStatus = "PENDING_APPROVAL"
	TimetableApproved TimetableStatus = "APPROVED"
)

// Weekday names accepted in timetable periods
var Weekdays = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY"}

// IsValidWeekday reports whether day is an accepted weekday name
func IsValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Timetable is a versioned weekly schedule for one (department, semester,
// academic year, batch) combination.
type Timetable struct {
	ID           int64           `json:"id" db:"id"`
	DepartmentID int64           `json:"departmentId" db:"department_id"`
	Semester     int             `json:"semester" db:"semester"`
	AcademicYear string          `json:"academicYear" db:"academic_year"`
	Type         string          `json:"type" db:"type"` // e.g. REGULAR, EXAM
	Batch        string          `json:"batch" db:"batch"`
	Version      int             `json:"version" db:"version"`
	Status       TimetableStatus `json:"status" db:"status"`
	IsActive     bool            `json:"isActive" db:"is_active"`
	CreatedByID  int64           `json:"createdById" db:"created_by_id"` // user
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`

	Periods []Period `json:"periods"`
}

// Period is one scheduled slot in a timetable's week
type Period struct {
	ID          int64  `json:"id" db:"id"`
	TimetableID int64  `json:"timetableId" db:"timetable_id"`
	Day         string `json:"day" db:"day"`
	StartTime   string `json:"startTime" db:"start_time"` // HH:MM
	EndTime     string `json:"endTime" db:"end_time"`     // HH:MM
	CourseID    int64  `json:"courseId" db:"course_id"`
	FacultyID   int64  `json:"facultyId" db:"faculty_id"` // faculty member
	Room        string `json:"room" db:"room"`
}

// FacultyConflict reports two timetables scheduling the same faculty member
// at the same (day, start, end) slot.
type FacultyConflict struct {
	FacultyID    int64  `json:"facultyId"`
	Day          string `json:"day"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	TimetableIDs []int64 `json:"timetableIds"`
}
