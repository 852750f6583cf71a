package models

// FacultyMember defines the faculty profile model based on the 'faculty_members'
// table. Exactly one row exists per user with the FACULTY role.
type FacultyMember struct {
	ID              int64  `json:"id" db:"id"`
	UserID          int64  `json:"userId" db:"user_id"`
	EmployeeID      string `json:"employeeId" db:"employee_id"`
	DepartmentID    int64  `json:"departmentId" db:"department_id"`
	Designation     string `json:"designation" db:"designation"`
	ExperienceYears int    `json:"experienceYears" db:"experience_years"`

	// Relations (populated when needed)
	User       *User       `json:"user,omitempty"`
	Department *Department `json:"department,omitempty"`
}
