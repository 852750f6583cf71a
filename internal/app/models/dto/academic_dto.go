package dto

import "github.com/emre/campuserp/internal/app/models"

// CreateDepartmentRequest creates a department
type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code" binding:"required,uppercase,alphanum"`
	Description string `json:"description"`
	HeadID      *int64 `json:"headId"`
}

// UpdateDepartmentRequest updates the editable department fields
type UpdateDepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code" binding:"required,uppercase,alphanum"`
	Description string `json:"description"`
	HeadID      *int64 `json:"headId"`
}

// CreateCourseRequest creates a course offering
type CreateCourseRequest struct {
	Code            string  `json:"code" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	DepartmentID    int64   `json:"departmentId" binding:"required,min=1"`
	CoordinatorID   int64   `json:"coordinatorId" binding:"required,min=1"`
	Credits         int     `json:"credits" binding:"required,min=1,max=10"`
	Semester        int     `json:"semester" binding:"required,min=1,max=12"`
	MaxEnrollment   int     `json:"maxEnrollment" binding:"required,min=1"`
	InstructorIDs   []int64 `json:"instructorIds"`
	PrerequisiteIDs []int64 `json:"prerequisiteIds"`
}

// UpdateCourseRequest updates a course offering
type UpdateCourseRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	CoordinatorID   int64   `json:"coordinatorId" binding:"required,min=1"`
	Credits         int     `json:"credits" binding:"required,min=1,max=10"`
	Semester        int     `json:"semester" binding:"required,min=1,max=12"`
	MaxEnrollment   int     `json:"maxEnrollment" binding:"required,min=1"`
	InstructorIDs   []int64 `json:"instructorIds"`
	PrerequisiteIDs []int64 `json:"prerequisiteIds"`
}

// CreateEnrollmentRequest enrolls a student into a course
type CreateEnrollmentRequest struct {
	StudentID    int64  `json:"studentId"` // ignored for student callers, resolved from identity
	CourseID     int64  `json:"courseId" binding:"required,min=1"`
	AcademicYear string `json:"academicYear" binding:"required"`
}

// UpdateEnrollmentStatusRequest withdraws or completes an enrollment
type UpdateEnrollmentStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" binding:"required,oneof=ACTIVE COMPLETED WITHDRAWN FAILED"`
}

// SubmitGradeRequest records a grade for an enrollment
type SubmitGradeRequest struct {
	Grade string `json:"grade" binding:"required"`
}

// MarkAttendanceEntry is one student's status in a bulk marking request
type MarkAttendanceEntry struct {
	StudentID int64                   `json:"studentId" binding:"required,min=1"`
	Status    models.AttendanceStatus `json:"status" binding:"required,oneof=PRESENT ABSENT LATE EXCUSED"`
}

// MarkAttendanceRequest marks attendance for one course, date and period
type MarkAttendanceRequest struct {
	CourseID int64                 `json:"courseId" binding:"required,min=1"`
	Date     string                `json:"date" binding:"required"` // YYYY-MM-DD
	Period   int                   `json:"period" binding:"required,min=1,max=12"`
	Entries  []MarkAttendanceEntry `json:"entries" binding:"required,min=1,dive"`
}

// AttendanceReport summarizes attendance for one student in one course
type AttendanceReport struct {
	StudentID    int64   `json:"studentId"`
	CourseID     int64   `json:"courseId"`
	TotalPeriods int     `json:"totalPeriods"`
	Present      int     `json:"present"`
	Absent       int     `json:"absent"`
	Late         int     `json:"late"`
	Excused      int     `json:"excused"`
	Percentage   float64 `json:"percentage"`
}
