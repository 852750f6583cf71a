package models

import "time"

// AttendanceStatus enumerates per-period attendance outcomes
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceExcused AttendanceStatus = "EXCUSED"
)

// IsValid reports whether the status is a known attendance status
func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// Attendance is one record per (student, course, date, period); the
// composite key is enforced by a unique constraint and marking twice
// updates the existing row.
type Attendance struct {
	ID         int64            `json:"id" db:"id"`
	StudentID  int64            `json:"studentId" db:"student_id"`
	CourseID   int64            `json:"courseId" db:"course_id"`
	Date       time.Time        `json:"date" db:"date"`
	Period     int              `json:"period" db:"period"`
	Status     AttendanceStatus `json:"status" db:"status"`
	MarkedByID int64            `json:"markedById" db:"marked_by_id"` // user who marked the sheet
	MarkedAt   time.Time        `json:"markedAt" db:"marked_at"`

	Student *Student `json:"student,omitempty"`
	Course  *Course  `json:"course,omitempty"`
}
