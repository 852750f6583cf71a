package models

import (
	"time"
)

// Role enumerates the user roles known to the system
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleFaculty   Role = "FACULTY"
	RoleStudent   Role = "STUDENT"
	RoleLibrarian Role = "LIBRARIAN"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleFaculty, RoleStudent, RoleLibrarian:
		return true
	}
	return false
}

// UserStatus is the explicit lifecycle state of a user account
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

// User defines the user model based on the 'users' table
type User struct {
	ID              int64      `json:"id" db:"id"`
	Email           string     `json:"email" db:"email"`
	Password        string     `json:"-" db:"password"` // hashed, excluded from JSON
	FirstName       string     `json:"firstName" db:"first_name"`
	LastName        string     `json:"lastName" db:"last_name"`
	Role            Role       `json:"role" db:"role"`
	Status          UserStatus `json:"status" db:"status"`
	EmailVerified   bool       `json:"emailVerified" db:"email_verified"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName returns the user's display name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsActive reports whether the account may authenticate
func (u *User) IsActive() bool {
	return u.Status == UserActive
}
