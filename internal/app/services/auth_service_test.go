package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/pkg/apperrors"
	"github.com/emre/campuserp/internal/pkg/auth"
)

type fakeUserStore struct {
	nextID int64
	byID   map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: make(map[int64]*models.User)}
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) CreateWithProfile(ctx context.Context, user *models.User, fn func(ctx context.Context, tx pgx.Tx) error) error {
	for _, existing := range f.byID {
		if existing.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	f.nextID++
	user.ID = f.nextID
	if err := fn(ctx, nil); err != nil {
		return err
	}
	copied := *user
	f.byID[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *models.User) error { return nil }

func (f *fakeUserStore) UpdatePassword(ctx context.Context, id int64, hash string) error {
	if user, ok := f.byID[id]; ok {
		user.Password = hash
	}
	return nil
}

func (f *fakeUserStore) SetLastLogin(ctx context.Context, id int64, at time.Time) error { return nil }

func (f *fakeUserStore) SetVerificationToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	return nil
}

func (f *fakeUserStore) VerifyEmail(ctx context.Context, token string) error { return nil }

func (f *fakeUserStore) SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	return nil
}

func (f *fakeUserStore) ConsumeResetToken(ctx context.Context, token string) (int64, error) {
	return 0, apperrors.ErrTokenNotFound
}

type fakeStudentProfiles struct{ created []*models.Student }

func (f *fakeStudentProfiles) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	for _, s := range f.created {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeStudentProfiles) CreateTx(ctx context.Context, tx pgx.Tx, student *models.Student) error {
	student.ID = int64(len(f.created) + 1)
	f.created = append(f.created, student)
	return nil
}

type fakeFacultyProfiles struct{}

func (fakeFacultyProfiles) GetByUserID(ctx context.Context, userID int64) (*models.FacultyMember, error) {
	return nil, apperrors.ErrFacultyNotFound
}

func (fakeFacultyProfiles) CreateTx(ctx context.Context, tx pgx.Tx, member *models.FacultyMember) error {
	return nil
}

type fakeTokenStore struct{ tokens map[string]*repositories.RefreshToken }

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]*repositories.RefreshToken)}
}

func (f *fakeTokenStore) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	f.tokens[token] = &repositories.RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeTokenStore) Get(ctx context.Context, token string) (*repositories.RefreshToken, error) {
	stored, ok := f.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	return stored, nil
}

func (f *fakeTokenStore) Revoke(ctx context.Context, token string) error {
	stored, ok := f.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	now := time.Now()
	stored.RevokedAt = &now
	return nil
}

func (f *fakeTokenStore) RevokeAllForUser(ctx context.Context, userID int64) error { return nil }

type nopEmail struct{}

func (nopEmail) SendWelcomeEmail(toEmail, toName string) error              { return nil }
func (nopEmail) SendVerificationEmail(toEmail, toName, token string) error  { return nil }
func (nopEmail) SendPasswordResetEmail(toEmail, toName, token string) error { return nil }

func authTestService(users *fakeUserStore, students *fakeStudentProfiles, tokens *fakeTokenStore) *AuthService {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret-key-for-unit-tests",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "campuserp-test",
	})
	return NewAuthService(users, students, &fakeFacultyProfiles{}, tokens, jwtService, nopEmail{})
}

func studentRegisterRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:     "Ayse.Demir@university.edu",
		Password:  "correct-horse",
		FirstName: "Ayse",
		LastName:  "Demir",
		Role:      models.RoleStudent,
		StudentData: &dto.StudentProfileData{
			RollNumber:   "CS-2025-042",
			DepartmentID: 3,
			Semester:     1,
			Batch:        "2025",
		},
	}
}

func TestRegisterReturnsSignedInSession(t *testing.T) {
	users := newFakeUserStore()
	students := &fakeStudentProfiles{}
	tokens := newFakeTokenStore()
	svc := authTestService(users, students, tokens)

	resp, err := svc.Register(context.Background(), studentRegisterRequest())
	require.NoError(t, err)

	require.NotNil(t, resp.User)
	assert.Equal(t, "ayse.demir@university.edu", resp.User.Email)
	assert.Empty(t, resp.User.Password)

	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.NotEmpty(t, resp.Token.RefreshToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)

	// profile created in the same transaction and attached to the response
	require.Len(t, students.created, 1)
	assert.Equal(t, resp.User.ID, students.created[0].UserID)
	require.IsType(t, &models.Student{}, resp.Profile)
	assert.Equal(t, "CS-2025-042", resp.Profile.(*models.Student).RollNumber)

	// the refresh token is persisted for later rotation
	_, ok := tokens.tokens[resp.Token.RefreshToken]
	assert.True(t, ok)
}

func TestRegisterRejectsPrivilegedRoles(t *testing.T) {
	svc := authTestService(newFakeUserStore(), &fakeStudentProfiles{}, newFakeTokenStore())

	for _, role := range []models.Role{models.RoleAdmin, models.RoleLibrarian} {
		req := studentRegisterRequest()
		req.Role = role
		_, err := svc.Register(context.Background(), req)
		assert.Error(t, err, "role %s must not self-register", role)
	}
}

func TestRegisterRequiresProfileData(t *testing.T) {
	svc := authTestService(newFakeUserStore(), &fakeStudentProfiles{}, newFakeTokenStore())

	req := studentRegisterRequest()
	req.StudentData = nil
	_, err := svc.Register(context.Background(), req)
	assert.Error(t, err)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	svc := authTestService(users, &fakeStudentProfiles{}, newFakeTokenStore())

	_, err := svc.Register(context.Background(), studentRegisterRequest())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), studentRegisterRequest())
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newFakeUserStore()
	students := &fakeStudentProfiles{}
	svc := authTestService(users, students, newFakeTokenStore())

	_, err := svc.Register(context.Background(), studentRegisterRequest())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "ayse.demir@university.edu", Password: "wrong",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "ayse.demir@university.edu", Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token.AccessToken)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	users := newFakeUserStore()
	svc := authTestService(users, &fakeStudentProfiles{}, newFakeTokenStore())

	_, err := svc.Register(context.Background(), studentRegisterRequest())
	require.NoError(t, err)
	users.byID[1].Status = models.UserInactive

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "ayse.demir@university.edu", Password: "correct-horse",
	})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestRefreshTokenRotation(t *testing.T) {
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	svc := authTestService(users, &fakeStudentProfiles{}, tokens)

	resp, err := svc.Register(context.Background(), studentRegisterRequest())
	require.NoError(t, err)
	first := resp.Token.RefreshToken

	rotated, err := svc.RefreshToken(context.Background(), first)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.Token.AccessToken)

	// the consumed token is revoked and cannot be replayed
	_, err = svc.RefreshToken(context.Background(), first)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}
