package models

// Course represents an academic offering
type Course struct {
	ID             int64   `json:"id" db:"id"`
	Code           string  `json:"code" db:"code"`
	Name           string  `json:"name" db:"name"`
	Description    string  `json:"description,omitempty" db:"description"`
	DepartmentID   int64   `json:"departmentId" db:"department_id"`
	CoordinatorID  int64   `json:"coordinatorId" db:"coordinator_id"` // faculty member
	Credits        int     `json:"credits" db:"credits"`
	Semester       int     `json:"semester" db:"semester"`
	MaxEnrollment  int     `json:"maxEnrollment" db:"max_enrollment"`
	InstructorIDs  []int64 `json:"instructorIds"`  // faculty members teaching the course
	PrerequisiteIDs []int64 `json:"prerequisiteIds"` // courses requiring a passing grade first

	// Derived, never stored
	EnrolledCount int `json:"enrolledCount,omitempty"`

	Department *Department `json:"department,omitempty"`
}
