package dto

import "github.com/emre/campuserp/internal/app/models"

// CreateUserRequest provisions a user (and profile) from the admin panel
type CreateUserRequest struct {
	Email       string              `json:"email" binding:"required,email"`
	Password    string              `json:"password" binding:"required,min=8"`
	FirstName   string              `json:"firstName" binding:"required"`
	LastName    string              `json:"lastName" binding:"required"`
	Role        models.Role         `json:"role" binding:"required"`
	StudentData *StudentProfileData `json:"studentData,omitempty"`
	FacultyData *FacultyProfileData `json:"facultyData,omitempty"`
}

// UpdateUserRequest updates a user's editable fields
type UpdateUserRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
}

// UpdateUserStatusRequest flips a user between active and inactive
type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" binding:"required,oneof=ACTIVE INACTIVE"`
}

// AdminStats is the admin dashboard aggregation
type AdminStats struct {
	UsersByRole       map[string]int64 `json:"usersByRole"`
	ActiveUsers       int64            `json:"activeUsers"`
	InactiveUsers     int64            `json:"inactiveUsers"`
	TotalStudents     int64            `json:"totalStudents"`
	TotalFaculty      int64            `json:"totalFaculty"`
	TotalCourses      int64            `json:"totalCourses"`
	ActiveEnrollments int64            `json:"activeEnrollments"`
	FeesBilled        float64          `json:"feesBilled"`
	FeesCollected     float64          `json:"feesCollected"`
	FeesOutstanding   float64          `json:"feesOutstanding"`
}
