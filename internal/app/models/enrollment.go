package models

import "time"

// EnrollmentStatus is the lifecycle state of an enrollment
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentWithdrawn EnrollmentStatus = "WITHDRAWN"
	EnrollmentFailed    EnrollmentStatus = "FAILED"
)

// PassingGrades are grades that satisfy a prerequisite
var PassingGrades = map[string]bool{
	"A+": true, "A": true, "A-": true,
	"B+": true, "B": true, "B-": true,
	"C+": true, "C": true, "C-": true,
	"D": true,
}

// Enrollment joins a student to a course for one academic year.
// Unique per (student, course, academic year).
type Enrollment struct {
	ID           int64            `json:"id" db:"id"`
	StudentID    int64            `json:"studentId" db:"student_id"`
	CourseID     int64            `json:"courseId" db:"course_id"`
	AcademicYear string           `json:"academicYear" db:"academic_year"`
	Status       EnrollmentStatus `json:"status" db:"status"`
	Grade        *string          `json:"grade,omitempty" db:"grade"`
	EnrolledAt   time.Time        `json:"enrolledAt" db:"enrolled_at"`
	UpdatedAt    time.Time        `json:"updatedAt" db:"updated_at"`

	Student *Student `json:"student,omitempty"`
	Course  *Course  `json:"course,omitempty"`
}

// SatisfiesPrerequisite reports whether this enrollment counts as a
// completed prerequisite: completed with a passing grade.
func (e *Enrollment) SatisfiesPrerequisite() bool {
	return e.Status == EnrollmentCompleted && e.Grade != nil && PassingGrades[*e.Grade]
}
