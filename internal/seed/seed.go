package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/pkg/apperrors"
	"github.com/emre/campuserp/internal/pkg/auth"
)

// CreateDefaultData seeds the accounts and department a fresh install
// needs to be usable: one admin, one librarian and a general department.
// Existing rows are left alone, so re-running is safe.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := repositories.NewUserRepository(dbPool)
	departmentRepo := repositories.NewDepartmentRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	dept := &models.Department{
		Name:        "General Studies",
		Code:        "GEN",
		Description: "Default department for unassigned programs",
	}
	if err := departmentRepo.Create(ctx, dept); err != nil &&
		!errors.Is(err, apperrors.ErrDepartmentAlreadyExists) {
		lgr.Error().Err(err).Msg("Error creating default department")
		finalErr = errors.Join(finalErr, err)
	}

	accounts := []struct {
		email     string
		password  string
		firstName string
		lastName  string
		role      models.Role
	}{
		{"admin@campuserp.edu", "Admin123!", "System", "Administrator", models.RoleAdmin},
		{"librarian@campuserp.edu", "Library123!", "Head", "Librarian", models.RoleLibrarian},
	}

	for _, acc := range accounts {
		if _, err := userRepo.GetByEmail(ctx, acc.email); err == nil {
			continue
		} else if !errors.Is(err, apperrors.ErrUserNotFound) {
			lgr.Error().Err(err).Str("email", acc.email).Msg("Error checking default account")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		hashed, err := auth.HashPassword(acc.password)
		if err != nil {
			lgr.Error().Err(err).Str("email", acc.email).Msg("Error hashing default password")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		user := &models.User{
			Email:         acc.email,
			Password:      hashed,
			FirstName:     acc.firstName,
			LastName:      acc.lastName,
			Role:          acc.role,
			Status:        models.UserActive,
			EmailVerified: true,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			lgr.Error().Err(err).Str("email", acc.email).Msg("Error creating default account")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Info().Str("email", acc.email).Str("role", string(acc.role)).Msg("Default account created")
	}

	return finalErr
}
