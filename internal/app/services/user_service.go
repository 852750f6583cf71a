package services

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/pkg/apperrors"
	"github.com/emre/campuserp/internal/pkg/auth"
)

// UserService handles admin-side user management
type UserService struct {
	userRepo       *repositories.UserRepository
	studentRepo    *repositories.StudentRepository
	facultyRepo    *repositories.FacultyRepository
	courseRepo     *repositories.CourseRepository
	enrollmentRepo *repositories.EnrollmentRepository
	feeRepo        *repositories.FeeRepository
	tokenRepo      *repositories.TokenRepository
}

// NewUserService creates a new user management service
func NewUserService(
	userRepo *repositories.UserRepository,
	studentRepo *repositories.StudentRepository,
	facultyRepo *repositories.FacultyRepository,
	courseRepo *repositories.CourseRepository,
	enrollmentRepo *repositories.EnrollmentRepository,
	feeRepo *repositories.FeeRepository,
	tokenRepo *repositories.TokenRepository,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		studentRepo:    studentRepo,
		facultyRepo:    facultyRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		feeRepo:        feeRepo,
		tokenRepo:      tokenRepo,
	}
}

// CreateUser provisions an account with any role. Student and faculty roles
// require their profile payloads; admin-created accounts skip email
// verification.
func (s *UserService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	if !req.Role.IsValid() {
		return nil, apperrors.NewValidationError("unknown role")
	}
	if req.Role == models.RoleStudent && req.StudentData == nil {
		return nil, apperrors.NewValidationError("studentData is required for student accounts")
	}
	if req.Role == models.RoleFaculty && req.FacultyData == nil {
		return nil, apperrors.NewValidationError("facultyData is required for faculty accounts")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:         strings.ToLower(req.Email),
		Password:      hash,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Role:          req.Role,
		Status:        models.UserActive,
		EmailVerified: true,
	}

	err = s.userRepo.CreateWithProfile(ctx, user, func(ctx context.Context, tx pgx.Tx) error {
		switch req.Role {
		case models.RoleStudent:
			return s.studentRepo.CreateTx(ctx, tx, &models.Student{
				UserID:       user.ID,
				RollNumber:   req.StudentData.RollNumber,
				DepartmentID: req.StudentData.DepartmentID,
				Semester:     req.StudentData.Semester,
				Batch:        req.StudentData.Batch,
			})
		case models.RoleFaculty:
			return s.facultyRepo.CreateTx(ctx, tx, &models.FacultyMember{
				UserID:          user.ID,
				EmployeeID:      req.FacultyData.EmployeeID,
				DepartmentID:    req.FacultyData.DepartmentID,
				Designation:     req.FacultyData.Designation,
				ExperienceYears: req.FacultyData.ExperienceYears,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	user.Password = ""
	return user, nil
}

// ListUsers retrieves users with filtering and pagination
func (s *UserService) ListUsers(ctx context.Context, filter repositories.UserFilter) ([]*models.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for _, u := range users {
		u.Password = ""
	}
	return users, total, nil
}

// GetUser retrieves one user
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// UpdateUser updates a user's editable fields
func (s *UserService) UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Email = strings.ToLower(req.Email)
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	user.Password = ""
	return user, nil
}

// UpdateUserStatus activates or deactivates an account. Deactivation
// revokes every outstanding refresh token so the account loses access as
// soon as its access token expires.
func (s *UserService) UpdateUserStatus(ctx context.Context, id int64, status models.UserStatus) error {
	if err := s.userRepo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	if status == models.UserInactive {
		return s.tokenRepo.RevokeAllForUser(ctx, id)
	}
	return nil
}

// DeleteUser removes an account permanently
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	return s.userRepo.Delete(ctx, id)
}

// GetStats assembles the admin dashboard aggregation
func (s *UserService) GetStats(ctx context.Context) (*dto.AdminStats, error) {
	byRole, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.userRepo.CountByStatus(ctx, models.UserActive)
	if err != nil {
		return nil, err
	}
	inactive, err := s.userRepo.CountByStatus(ctx, models.UserInactive)
	if err != nil {
		return nil, err
	}
	totalCourses, err := s.courseRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	activeEnrollments, err := s.enrollmentRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	billed, collected, outstanding, _, err := s.feeRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.AdminStats{
		UsersByRole:       byRole,
		ActiveUsers:       active,
		InactiveUsers:     inactive,
		TotalStudents:     byRole[string(models.RoleStudent)],
		TotalFaculty:      byRole[string(models.RoleFaculty)],
		TotalCourses:      totalCourses,
		ActiveEnrollments: activeEnrollments,
		FeesBilled:        billed,
		FeesCollected:     collected,
		FeesOutstanding:   outstanding,
	}, nil
}
