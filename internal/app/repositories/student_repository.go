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

// StudentRepository handles database operations for student profiles
type StudentRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(&s.ID, &s.UserID, &s.RollNumber, &s.DepartmentID, &s.Semester, &s.Batch, &s.CreditsEarned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error scanning student: %w", err)
	}
	return &s, nil
}

// Create inserts a student profile
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO students (user_id, roll_number, department_id, semester, batch, credits_earned)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, student.UserID, student.RollNumber, student.DepartmentID,
		student.Semester, student.Batch, student.CreditsEarned).Scan(&student.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_roll_number_key") {
			return apperrors.ErrRollNumberExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDepartmentNotFound
		}
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

// CreateTx inserts a student profile within an existing transaction
func (r *StudentRepository) CreateTx(ctx context.Context, tx pgx.Tx, student *models.Student) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO students (user_id, roll_number, department_id, semester, batch, credits_earned)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, student.UserID, student.RollNumber, student.DepartmentID,
		student.Semester, student.Batch, student.CreditsEarned).Scan(&student.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_roll_number_key") {
			return apperrors.ErrRollNumberExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDepartmentNotFound
		}
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

// GetByID retrieves a student profile with its user row attached
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	student, err := scanStudent(r.db.QueryRow(ctx, `
		SELECT id, user_id, roll_number, department_id, semester, batch, credits_earned
		FROM students WHERE id = $1
	`, id))
	if err != nil {
		return nil, err
	}
	if err := r.attachUser(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// GetByUserID retrieves a student profile by the owning user id
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	return scanStudent(r.db.QueryRow(ctx, `
		SELECT id, user_id, roll_number, department_id, semester, batch, credits_earned
		FROM students WHERE user_id = $1
	`, userID))
}

// GetByRollNumber retrieves a student profile by roll number
func (r *StudentRepository) GetByRollNumber(ctx context.Context, rollNumber string) (*models.Student, error) {
	return scanStudent(r.db.QueryRow(ctx, `
		SELECT id, user_id, roll_number, department_id, semester, batch, credits_earned
		FROM students WHERE roll_number = $1
	`, rollNumber))
}

func (r *StudentRepository) attachUser(ctx context.Context, student *models.Student) error {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, student.UserID))
	if err != nil {
		return err
	}
	user.Password = ""
	student.User = user
	return nil
}

// StudentFilter narrows student list queries
type StudentFilter struct {
	DepartmentID int64
	Semester     int
	Batch        string
	Search       string
	Page         int
	Size         int
}

// List retrieves student profiles joined with their user rows. Faculty
// callers see only students enrolled in their courses; the scope predicate
// keys on enrollments.course_id through an EXISTS subquery built here.
func (r *StudentRepository) List(ctx context.Context, filter StudentFilter, courseIDs []int64) ([]*models.Student, int64, error) {
	base := r.sb.Select(
		"s.id", "s.user_id", "s.roll_number", "s.department_id", "s.semester", "s.batch", "s.credits_earned",
		"u.email", "u.first_name", "u.last_name", "u.status",
	).From("students s").Join("users u ON u.id = s.user_id")
	count := r.sb.Select("COUNT(*)").From("students s").Join("users u ON u.id = s.user_id")

	where := sq.And{}
	if filter.DepartmentID > 0 {
		where = append(where, sq.Eq{"s.department_id": filter.DepartmentID})
	}
	if filter.Semester > 0 {
		where = append(where, sq.Eq{"s.semester": filter.Semester})
	}
	if filter.Batch != "" {
		where = append(where, sq.Eq{"s.batch": filter.Batch})
	}
	if filter.Search != "" {
		pattern := "%" + strings.TrimSpace(filter.Search) + "%"
		where = append(where, sq.Or{
			sq.ILike{"u.first_name": pattern},
			sq.ILike{"u.last_name": pattern},
			sq.ILike{"s.roll_number": pattern},
		})
	}
	if courseIDs != nil {
		where = append(where, sq.Expr(
			"EXISTS (SELECT 1 FROM enrollments e WHERE e.student_id = s.id AND e.course_id = ANY(?))",
			courseIDs,
		))
	}
	if len(where) > 0 {
		base = base.Where(where)
		count = count.Where(where)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	base = base.OrderBy("s.roll_number ASC").
		Limit(uint64(filter.Size)).
		Offset(uint64((filter.Page - 1) * filter.Size))

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		var s models.Student
		var u models.User
		err := rows.Scan(
			&s.ID, &s.UserID, &s.RollNumber, &s.DepartmentID, &s.Semester, &s.Batch, &s.CreditsEarned,
			&u.Email, &u.FirstName, &u.LastName, &u.Status,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning student: %w", err)
		}
		u.ID = s.UserID
		s.User = &u
		students = append(students, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return students, totalItems, nil
}

// Update updates the editable student profile fields
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE students
		SET department_id = $1, semester = $2, batch = $3, credits_earned = $4
		WHERE id = $5
	`, student.DepartmentID, student.Semester, student.Batch, student.CreditsEarned, student.ID)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDepartmentNotFound
		}
		return fmt.Errorf("error updating student: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// AddCredits increments a student's earned credits
func (r *StudentRepository) AddCredits(ctx context.Context, tx pgx.Tx, studentID int64, credits int) error {
	cmdTag, err := tx.Exec(ctx,
		`UPDATE students SET credits_earned = credits_earned + $1 WHERE id = $2`, credits, studentID)
	if err != nil {
		return fmt.Errorf("error adding credits: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// CountByDepartment returns student counts grouped by department
func (r *StudentRepository) CountByDepartment(ctx context.Context) (map[int64]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT department_id, COUNT(*) FROM students GROUP BY department_id`)
	if err != nil {
		return nil, fmt.Errorf("error counting students by department: %w", err)
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
