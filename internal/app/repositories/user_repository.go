package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/db"
	"github.com/emre/campuserp/internal/pkg/apperrors"
	"github.com/emre/campuserp/internal/pkg/dberrors"
	"github.com/emre/campuserp/internal/pkg/logger"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const userColumns = "id, email, password, first_name, last_name, role, status, email_verified, last_login_at, created_at, updated_at"

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.Status,
		&user.EmailVerified,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return &user, nil
}

// Create inserts a new user and sets the generated id
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password, first_name, last_name, role, status, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		user.Email, user.Password, user.FirstName, user.LastName,
		user.Role, user.Status, user.EmailVerified,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

// CreateTx inserts a new user within an existing transaction
func (r *UserRepository) CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) error {
	query := `
		INSERT INTO users (email, password, first_name, last_name, role, status, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		user.Email, user.Password, user.FirstName, user.LastName,
		user.Role, user.Status, user.EmailVerified,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

// CreateWithProfile inserts the user and runs fn, which inserts the role
// profile, in one transaction. Either both rows commit or neither does.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user *models.User, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := r.CreateTx(ctx, tx, user); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return scanUser(r.db.QueryRow(ctx, query, strings.ToLower(email)))
}

// UserFilter narrows user list queries on top of the role scope
type UserFilter struct {
	Role   string
	Status string
	Search string
	Page   int
	Size   int
}

// List retrieves users with filtering and pagination. Only administrators
// reach this query, so no role scope is applied.
func (r *UserRepository) List(ctx context.Context, filter UserFilter) ([]*models.User, int64, error) {
	base := r.sb.Select(
		"id", "email", "password", "first_name", "last_name", "role",
		"status", "email_verified", "last_login_at", "created_at", "updated_at",
	).From("users")
	count := r.sb.Select("COUNT(*)").From("users")

	where := sq.And{}
	if filter.Role != "" {
		where = append(where, sq.Eq{"role": filter.Role})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}
	if filter.Search != "" {
		pattern := "%" + strings.TrimSpace(filter.Search) + "%"
		where = append(where, sq.Or{
			sq.ILike{"first_name": pattern},
			sq.ILike{"last_name": pattern},
			sq.ILike{"email": pattern},
		})
	}
	if len(where) > 0 {
		base = base.Where(where)
		count = count.Where(where)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count users query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	offset := uint64((filter.Page - 1) * filter.Size)
	base = base.OrderBy("first_name ASC, last_name ASC").
		Limit(uint64(filter.Size)).
		Offset(offset)

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list users SQL")
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return users, totalItems, nil
}

// Update updates the editable user fields
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, updated_at = NOW()
		WHERE id = $4
	`

	cmdTag, err := r.db.Exec(ctx, query, user.Email, user.FirstName, user.LastName, user.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error updating user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// UpdateStatus flips a user between active and inactive
func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating user status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// SetLastLogin records a successful login
func (r *UserRepository) SetLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("error setting last login: %w", err)
	}
	return nil
}

// Delete removes a user permanently. Admin-only; profile rows cascade.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// SetVerificationToken stores an email verification token with expiry
func (r *UserRepository) SetVerificationToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET verify_token = $1, verify_token_expires_at = $2 WHERE id = $3`,
		token, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("error setting verification token: %w", err)
	}
	return nil
}

// VerifyEmail consumes a verification token. Returns ErrInvalidEmailToken
// when the token does not match any user or has expired.
func (r *UserRepository) VerifyEmail(ctx context.Context, token string) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE users
		SET email_verified = TRUE, verify_token = NULL, verify_token_expires_at = NULL
		WHERE verify_token = $1 AND verify_token_expires_at > NOW()
	`, token)
	if err != nil {
		return fmt.Errorf("error verifying email: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrInvalidEmailToken
	}
	return nil
}

// SetResetToken stores a password reset token with expiry
func (r *UserRepository) SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET reset_token = $1, reset_token_expires_at = $2 WHERE id = $3`,
		token, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("error setting reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken resolves a reset token to a user id and clears it so the
// token is single-use. Returns ErrInvalidPasswordResetToken when unknown or
// expired.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, token string) (int64, error) {
	var userID int64
	err := r.db.QueryRow(ctx, `
		UPDATE users
		SET reset_token = NULL, reset_token_expires_at = NULL
		WHERE reset_token = $1 AND reset_token_expires_at > NOW()
		RETURNING id
	`, token).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrInvalidPasswordResetToken
		}
		return 0, fmt.Errorf("error consuming reset token: %w", err)
	}
	return userID, nil
}

// CountByRole returns user counts grouped by role
func (r *UserRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("error counting users by role: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var role string
		var count int64
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts[role] = count
	}
	return counts, rows.Err()
}

// CountByStatus returns the number of users with the given status
func (r *UserRepository) CountByStatus(ctx context.Context, status models.UserStatus) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting users by status: %w", err)
	}
	return count, nil
}
