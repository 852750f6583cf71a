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

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanDepartment(row pgx.Row) (*models.Department, error) {
	var d models.Department
	err := row.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.HeadID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error scanning department: %w", err)
	}
	return &d, nil
}

// Create inserts a department
func (r *DepartmentRepository) Create(ctx context.Context, dept *models.Department) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO departments (name, code, description, head_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, dept.Name, strings.ToUpper(dept.Code), dept.Description, dept.HeadID).Scan(&dept.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrDepartmentAlreadyExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrFacultyNotFound
		}
		return fmt.Errorf("error creating department: %w", err)
	}
	return nil
}

// GetByID retrieves a department by id
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	return scanDepartment(r.db.QueryRow(ctx, `
		SELECT id, name, code, description, head_id FROM departments WHERE id = $1
	`, id))
}

// GetByCode retrieves a department by code
func (r *DepartmentRepository) GetByCode(ctx context.Context, code string) (*models.Department, error) {
	return scanDepartment(r.db.QueryRow(ctx, `
		SELECT id, name, code, description, head_id FROM departments WHERE code = $1
	`, strings.ToUpper(code)))
}

// List retrieves all departments, optionally filtered by a name search
func (r *DepartmentRepository) List(ctx context.Context, search string, page, size int) ([]*models.Department, int64, error) {
	base := r.sb.Select("id", "name", "code", "description", "head_id").From("departments")
	count := r.sb.Select("COUNT(*)").From("departments")

	if search != "" {
		pattern := "%" + strings.TrimSpace(search) + "%"
		cond := sq.Or{sq.ILike{"name": pattern}, sq.ILike{"code": pattern}}
		base = base.Where(cond)
		count = count.Where(cond)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count departments query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count departments: %w", err)
	}

	base = base.OrderBy("name ASC").
		Limit(uint64(size)).
		Offset(uint64((page - 1) * size))

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list departments query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var departments []*models.Department
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, 0, err
		}
		departments = append(departments, dept)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return departments, totalItems, nil
}

// Update updates a department
func (r *DepartmentRepository) Update(ctx context.Context, dept *models.Department) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE departments
		SET name = $1, code = $2, description = $3, head_id = $4
		WHERE id = $5
	`, dept.Name, strings.ToUpper(dept.Code), dept.Description, dept.HeadID, dept.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrDepartmentAlreadyExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrFacultyNotFound
		}
		return fmt.Errorf("error updating department: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}
	return nil
}

// Delete removes a department. Fails with ErrDepartmentHasRelations when
// students, faculty or courses still reference it.
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDepartmentHasRelations
		}
		return fmt.Errorf("error deleting department: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}
	return nil
}

// Count returns the total number of departments
func (r *DepartmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM departments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting departments: %w", err)
	}
	return count, nil
}
