package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/pkg/apperrors"
	"github.com/emre/campuserp/internal/pkg/dberrors"
)

// FacultyRepository handles database operations for faculty profiles
type FacultyRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewFacultyRepository creates a new faculty repository
func NewFacultyRepository(db *pgxpool.Pool) *FacultyRepository {
	return &FacultyRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanFacultyMember(row pgx.Row) (*models.FacultyMember, error) {
	var f models.FacultyMember
	err := row.Scan(&f.ID, &f.UserID, &f.EmployeeID, &f.DepartmentID, &f.Designation, &f.ExperienceYears)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFacultyNotFound
		}
		return nil, fmt.Errorf("error scanning faculty member: %w", err)
	}
	return &f, nil
}

// Create inserts a faculty profile
func (r *FacultyRepository) Create(ctx context.Context, member *models.FacultyMember) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO faculty_members (user_id, employee_id, department_id, designation, experience_years)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, member.UserID, member.EmployeeID, member.DepartmentID,
		member.Designation, member.ExperienceYears).Scan(&member.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "faculty_members_employee_id_key") {
			return apperrors.ErrEmployeeIDExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDepartmentNotFound
		}
		return fmt.Errorf("error creating faculty member: %w", err)
	}
	return nil
}

// CreateTx inserts a faculty profile within an existing transaction
func (r *FacultyRepository) CreateTx(ctx context.Context, tx pgx.Tx, member *models.FacultyMember) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO faculty_members (user_id, employee_id, department_id, designation, experience_years)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, member.UserID, member.EmployeeID, member.DepartmentID,
		member.Designation, member.ExperienceYears).Scan(&member.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "faculty_members_employee_id_key") {
			return apperrors.ErrEmployeeIDExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDepartmentNotFound
		}
		return fmt.Errorf("error creating faculty member: %w", err)
	}
	return nil
}

// GetByID retrieves a faculty profile with its user row attached
func (r *FacultyRepository) GetByID(ctx context.Context, id int64) (*models.FacultyMember, error) {
	member, err := scanFacultyMember(r.db.QueryRow(ctx, `
		SELECT id, user_id, employee_id, department_id, designation, experience_years
		FROM faculty_members WHERE id = $1
	`, id))
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, member.UserID))
	if err != nil {
		return nil, err
	}
	user.Password = ""
	member.User = user
	return member, nil
}

// GetByUserID retrieves a faculty profile by the owning user id
func (r *FacultyRepository) GetByUserID(ctx context.Context, userID int64) (*models.FacultyMember, error) {
	return scanFacultyMember(r.db.QueryRow(ctx, `
		SELECT id, user_id, employee_id, department_id, designation, experience_years
		FROM faculty_members WHERE user_id = $1
	`, userID))
}

// FacultyFilter narrows faculty list queries
type FacultyFilter struct {
	DepartmentID int64
	Designation  string
	Search       string
	Page         int
	Size         int
}

// List retrieves faculty profiles joined with their user rows
func (r *FacultyRepository) List(ctx context.Context, filter FacultyFilter) ([]*models.FacultyMember, int64, error) {
	base := r.sb.Select(
		"f.id", "f.user_id", "f.employee_id", "f.department_id", "f.designation", "f.experience_years",
		"u.email", "u.first_name", "u.last_name", "u.status",
	).From("faculty_members f").Join("users u ON u.id = f.user_id")
	count := r.sb.Select("COUNT(*)").From("faculty_members f").Join("users u ON u.id = f.user_id")

	where := sq.And{}
	if filter.DepartmentID > 0 {
		where = append(where, sq.Eq{"f.department_id": filter.DepartmentID})
	}
	if filter.Designation != "" {
		where = append(where, sq.Eq{"f.designation": filter.Designation})
	}
	if filter.Search != "" {
		pattern := "%" + strings.TrimSpace(filter.Search) + "%"
		where = append(where, sq.Or{
			sq.ILike{"u.first_name": pattern},
			sq.ILike{"u.last_name": pattern},
			sq.ILike{"f.employee_id": pattern},
		})
	}
	if len(where) > 0 {
		base = base.Where(where)
		count = count.Where(where)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count faculty query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count faculty: %w", err)
	}

	base = base.OrderBy("f.employee_id ASC").
		Limit(uint64(filter.Size)).
		Offset(uint64((filter.Page - 1) * filter.Size))

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list faculty query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query faculty: %w", err)
	}
	defer rows.Close()

	var members []*models.FacultyMember
	for rows.Next() {
		var f models.FacultyMember
		var u models.User
		err := rows.Scan(
			&f.ID, &f.UserID, &f.EmployeeID, &f.DepartmentID, &f.Designation, &f.ExperienceYears,
			&u.Email, &u.FirstName, &u.LastName, &u.Status,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning faculty member: %w", err)
		}
		u.ID = f.UserID
		f.User = &u
		members = append(members, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return members, totalItems, nil
}

// Update updates the editable faculty profile fields
func (r *FacultyRepository) Update(ctx context.Context, member *models.FacultyMember) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE faculty_members
		SET department_id = $1, designation = $2, experience_years = $3
		WHERE id = $4
	`, member.DepartmentID, member.Designation, member.ExperienceYears, member.ID)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDepartmentNotFound
		}
		return fmt.Errorf("error updating faculty member: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrFacultyNotFound
	}
	return nil
}

// CountByDepartment returns faculty counts grouped by department
func (r *FacultyRepository) CountByDepartment(ctx context.Context) (map[int64]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT department_id, COUNT(*) FROM faculty_members GROUP BY department_id`)
	if err != nil {
		return nil, fmt.Errorf("error counting faculty by department: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64)
	for rows.Next() {
		var deptID, count int64
		if err := rows.Scan(&deptID, &count); err != nil {
			return nil, err
		}
		counts[deptID] = count
	}
	return counts, rows.Err()
}
