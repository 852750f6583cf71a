package models

// Department represents an organizational unit
type Department struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Code        string `json:"code" db:"code"`
	Description string `json:"description,omitempty" db:"description"`
	HeadID      *int64 `json:"headId,omitempty" db:"head_id"` // faculty member heading the department

	Head *FacultyMember `json:"head,omitempty"`
}
