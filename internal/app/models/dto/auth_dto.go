package dto

import "github.com/emre/campuserp/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType"`
	ExpiresIn             int    `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int    `json:"refreshTokenExpiresIn,omitempty"`
}

// RefreshTokenRequest represents a refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// StudentProfileData carries the student-specific fields of a registration
type StudentProfileData struct {
	RollNumber   string `json:"rollNumber" binding:"required"`
	DepartmentID int64  `json:"departmentId" binding:"required,min=1"`
	Semester     int    `json:"semester" binding:"required,min=1,max=12"`
	Batch        string `json:"batch" binding:"required"`
}

// FacultyProfileData carries the faculty-specific fields of a registration
type FacultyProfileData struct {
	EmployeeID      string `json:"employeeId" binding:"required"`
	DepartmentID    int64  `json:"departmentId" binding:"required,min=1"`
	Designation     string `json:"designation" binding:"required"`
	ExperienceYears int    `json:"experienceYears" binding:"min=0"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email       string              `json:"email" binding:"required,email"`
	Password    string              `json:"password" binding:"required,min=8"`
	FirstName   string              `json:"firstName" binding:"required"`
	LastName    string              `json:"lastName" binding:"required"`
	Role        models.Role         `json:"role" binding:"required"`
	StudentData *StudentProfileData `json:"studentData,omitempty"`
	FacultyData *FacultyProfileData `json:"facultyData,omitempty"`
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

// ChangePasswordRequest represents a password change for the current user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ForgotPasswordRequest represents a password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest represents a password reset submission
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ResendVerificationRequest asks for a fresh verification email
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// AuthResponse represents a successful authentication response
type AuthResponse struct {
	Token   TokenResponse `json:"token"`
	User    *models.User  `json:"user"`
	Profile interface{}   `json:"profile,omitempty"`
}
