package models

// Student defines the student profile model based on the 'students' table.
// Exactly one student row exists per user with the STUDENT role.
type Student struct {
	ID           int64  `json:"id" db:"id"`
	UserID       int64  `json:"userId" db:"user_id"`
	RollNumber   string `json:"rollNumber" db:"roll_number"`
	DepartmentID int64  `json:"departmentId" db:"department_id"`
	Semester     int    `json:"semester" db:"semester"`
	Batch        string `json:"batch" db:"batch"`
	CreditsEarned int   `json:"creditsEarned" db:"credits_earned"`

	// Relations (populated when needed)
	User       *User       `json:"user,omitempty"`
	Department *Department `json:"department,omitempty"`
}
