package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/pkg/apperrors"
	"github.com/emre/campuserp/internal/pkg/auth"
	"github.com/emre/campuserp/internal/pkg/email"
	"github.com/emre/campuserp/internal/pkg/logger"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = 1 * time.Hour
)

// UserAccountStore persists user accounts and their one-time tokens.
// CreateWithProfile runs fn in the same transaction as the user insert.
type UserAccountStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	CreateWithProfile(ctx context.Context, user *models.User, fn func(ctx context.Context, tx pgx.Tx) error) error
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetLastLogin(ctx context.Context, id int64, at time.Time) error
	SetVerificationToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	VerifyEmail(ctx context.Context, token string) error
	SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, token string) (int64, error)
}

// StudentProfileStore persists student profiles tied to user accounts
type StudentProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
	CreateTx(ctx context.Context, tx pgx.Tx, student *models.Student) error
}

// FacultyProfileStore persists faculty profiles tied to user accounts
type FacultyProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.FacultyMember, error)
	CreateTx(ctx context.Context, tx pgx.Tx, member *models.FacultyMember) error
}

// RefreshTokenStore persists issued refresh tokens
type RefreshTokenStore interface {
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	Get(ctx context.Context, token string) (*repositories.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

// AuthService handles authentication and account lifecycle operations
type AuthService struct {
	userRepo    UserAccountStore
	studentRepo StudentProfileStore
	facultyRepo FacultyProfileStore
	tokenRepo   RefreshTokenStore
	jwtService  *auth.JWTService
	emailSvc    email.EmailService
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo UserAccountStore,
	studentRepo StudentProfileStore,
	facultyRepo FacultyProfileStore,
	tokenRepo RefreshTokenStore,
	jwtService *auth.JWTService,
	emailSvc email.EmailService,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		studentRepo: studentRepo,
		facultyRepo: facultyRepo,
		tokenRepo:   tokenRepo,
		jwtService:  jwtService,
		emailSvc:    emailSvc,
	}
}

// Login authenticates a user and issues a token pair. Inactive accounts are
// rejected before the password check runs.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive() {
		return nil, apperrors.ErrAccountDisabled
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	response, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetLastLogin(ctx, user.ID, time.Now()); err != nil {
		logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record last login")
	}

	return response, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Create(ctx, user.ID, refreshToken, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	user.Password = ""
	profile, err := s.loadProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           accessToken,
			TokenType:             "Bearer",
			ExpiresIn:             expiresIn,
			RefreshToken:          refreshToken,
			RefreshTokenExpiresIn: refreshExpiresIn,
		},
		User:    user,
		Profile: profile,
	}, nil
}

func (s *AuthService) loadProfile(ctx context.Context, user *models.User) (interface{}, error) {
	switch user.Role {
	case models.RoleStudent:
		student, err := s.studentRepo.GetByUserID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrStudentNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return student, nil
	case models.RoleFaculty:
		member, err := s.facultyRepo.GetByUserID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrFacultyNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return member, nil
	}
	return nil, nil
}

// Register self-registers a student or faculty account and signs the new
// user in, returning the profile and a token pair. Privileged roles can
// only be provisioned by an administrator.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if req.Role != models.RoleStudent && req.Role != models.RoleFaculty {
		return nil, apperrors.NewValidationError("only student and faculty accounts can self-register")
	}
	if req.Role == models.RoleStudent && req.StudentData == nil {
		return nil, apperrors.NewValidationError("studentData is required for student registration")
	}
	if req.Role == models.RoleFaculty && req.FacultyData == nil {
		return nil, apperrors.NewValidationError("facultyData is required for faculty registration")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     strings.ToLower(req.Email),
		Password:  hash,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Status:    models.UserActive,
	}

	if err := s.createUserWithProfile(ctx, user, req.StudentData, req.FacultyData); err != nil {
		return nil, err
	}

	verifyToken := uuid.NewString()
	if err := s.userRepo.SetVerificationToken(ctx, user.ID, verifyToken, time.Now().Add(verificationTokenTTL)); err != nil {
		logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to store verification token")
	} else {
		go func() {
			if err := s.emailSvc.SendVerificationEmail(user.Email, user.FullName(), verifyToken); err != nil {
				logger.Error().Err(err).Str("email", user.Email).Msg("Failed to send verification email")
			}
		}()
	}

	go func() {
		if err := s.emailSvc.SendWelcomeEmail(user.Email, user.FullName()); err != nil {
			logger.Error().Err(err).Str("email", user.Email).Msg("Failed to send welcome email")
		}
	}()

	return s.issueTokens(ctx, user)
}

func (s *AuthService) createUserWithProfile(ctx context.Context, user *models.User, studentData *dto.StudentProfileData, facultyData *dto.FacultyProfileData) error {
	return s.userRepo.CreateWithProfile(ctx, user, func(ctx context.Context, tx pgx.Tx) error {
		switch user.Role {
		case models.RoleStudent:
			return s.studentRepo.CreateTx(ctx, tx, &models.Student{
				UserID:       user.ID,
				RollNumber:   studentData.RollNumber,
				DepartmentID: studentData.DepartmentID,
				Semester:     studentData.Semester,
				Batch:        studentData.Batch,
			})
		case models.RoleFaculty:
			return s.facultyRepo.CreateTx(ctx, tx, &models.FacultyMember{
				UserID:          user.ID,
				EmployeeID:      facultyData.EmployeeID,
				DepartmentID:    facultyData.DepartmentID,
				Designation:     facultyData.Designation,
				ExperienceYears: facultyData.ExperienceYears,
			})
		}
		return nil
	})
}

// RefreshToken rotates a refresh token: the old token is revoked and a new
// pair is issued. Expired and revoked tokens are rejected.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.tokenRepo.Get(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored.RevokedAt != nil {
		return nil, apperrors.ErrTokenRevoked
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.tokenRepo.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the presented refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.tokenRepo.Revoke(ctx, refreshToken)
	if errors.Is(err, apperrors.ErrTokenNotFound) {
		// Logout is idempotent
		return nil
	}
	return err
}

// GetProfile returns the caller's user row with any role profile attached
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""

	profile, err := s.loadProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{User: user, Profile: profile}, nil
}

// UpdateProfile updates the caller's own name fields
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	user.Password = ""
	return user, nil
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every outstanding refresh token.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	return s.tokenRepo.RevokeAllForUser(ctx, userID)
}

// ForgotPassword issues a reset token when the email matches an account.
// The response is identical either way, so the endpoint does not leak
// which emails exist.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := s.userRepo.SetResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	go func() {
		if err := s.emailSvc.SendPasswordResetEmail(user.Email, user.FullName(), token); err != nil {
			logger.Error().Err(err).Str("email", user.Email).Msg("Failed to send reset email")
		}
	}()

	return nil
}

// ResetPassword consumes a reset token and stores the new password hash
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	userID, err := s.userRepo.ConsumeResetToken(ctx, req.Token)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	return s.tokenRepo.RevokeAllForUser(ctx, userID)
}

// VerifyEmail consumes an email verification token
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	return s.userRepo.VerifyEmail(ctx, token)
}

// ResendVerification issues a fresh verification token for an unverified
// account
func (s *AuthService) ResendVerification(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}

	token := uuid.NewString()
	if err := s.userRepo.SetVerificationToken(ctx, user.ID, token, time.Now().Add(verificationTokenTTL)); err != nil {
		return err
	}

	go func() {
		if err := s.emailSvc.SendVerificationEmail(user.Email, user.FullName(), token); err != nil {
			logger.Error().Err(err).Str("email", user.Email).Msg("Failed to send verification email")
		}
	}()

	return nil
}
