package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/db"
	"github.com/emre/campuserp/internal/pkg/apperrors"
	"github.com/emre/campuserp/internal/pkg/dberrors"
)

// EnrollmentRepository handles database operations for enrollments
type EnrollmentRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: pool,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanEnrollment(row pgx.Row) (*models.Enrollment, error) {
	var e models.Enrollment
	err := row.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.AcademicYear,
		&e.Status, &e.Grade, &e.EnrolledAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("error scanning enrollment: %w", err)
	}
	return &e, nil
}

// CreateWithCapacity enrolls a student while holding the course row lock,
// so concurrent enrollments cannot push the active count past the course
// capacity.
func (r *EnrollmentRepository) CreateWithCapacity(ctx context.Context, enrollment *models.Enrollment) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var maxEnrollment int
		err := tx.QueryRow(ctx,
			`SELECT max_enrollment FROM courses WHERE id = $1 FOR UPDATE`,
			enrollment.CourseID).Scan(&maxEnrollment)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrCourseNotFound
			}
			return fmt.Errorf("error locking course: %w", err)
		}

		var activeCount int
		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status = 'ACTIVE'`,
			enrollment.CourseID).Scan(&activeCount)
		if err != nil {
			return fmt.Errorf("error counting active enrollments: %w", err)
		}
		if maxEnrollment > 0 && activeCount >= maxEnrollment {
			return apperrors.ErrCourseFull
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO enrollments (student_id, course_id, academic_year, status)
			VALUES ($1, $2, $3, $4)
			RETURNING id, enrolled_at, updated_at
		`, enrollment.StudentID, enrollment.CourseID, enrollment.AcademicYear,
			enrollment.Status).Scan(&enrollment.ID, &enrollment.EnrolledAt, &enrollment.UpdatedAt)
		if err != nil {
			if dberrors.IsUniqueViolation(err) {
				return apperrors.ErrAlreadyEnrolled
			}
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrStudentNotFound
			}
			return fmt.Errorf("error creating enrollment: %w", err)
		}
		return nil
	})
}

// GetByID retrieves an enrollment by id
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	return scanEnrollment(r.db.QueryRow(ctx, `
		SELECT id, student_id, course_id, academic_year, status, grade, enrolled_at, updated_at
		FROM enrollments WHERE id = $1
	`, id))
}

// EnrollmentFilter narrows enrollment list queries
type EnrollmentFilter struct {
	StudentID    int64
	CourseID     int64
	AcademicYear string
	Status       string
	Page         int
	Size         int
}

// List retrieves enrollments narrowed by the caller's scope
func (r *EnrollmentRepository) List(ctx context.Context, sc scope.Scope, filter EnrollmentFilter) ([]*models.Enrollment, int64, error) {
	cols := scope.Columns{Student: "e.student_id", Course: "e.course_id"}

	base := r.sb.Select(
		"e.id", "e.student_id", "e.course_id", "e.academic_year",
		"e.status", "e.grade", "e.enrolled_at", "e.updated_at",
	).From("enrollments e")
	count := r.sb.Select("COUNT(*)").From("enrollments e")

	var err error
	if base, err = sc.Apply(base, cols); err != nil {
		return nil, 0, err
	}
	if count, err = sc.Apply(count, cols); err != nil {
		return nil, 0, err
	}

	where := sq.And{}
	if filter.StudentID > 0 {
		where = append(where, sq.Eq{"e.student_id": filter.StudentID})
	}
	if filter.CourseID > 0 {
		where = append(where, sq.Eq{"e.course_id": filter.CourseID})
	}
	if filter.AcademicYear != "" {
		where = append(where, sq.Eq{"e.academic_year": filter.AcademicYear})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"e.status": filter.Status})
	}
	if len(where) > 0 {
		base = base.Where(where)
		count = count.Where(where)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count enrollments query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count enrollments: %w", err)
	}

	base = base.OrderBy("e.enrolled_at DESC").
		Limit(uint64(filter.Size)).
		Offset(uint64((filter.Page - 1) * filter.Size))

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list enrollments query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, 0, err
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return enrollments, totalItems, nil
}

// UpdateStatus transitions an enrollment's lifecycle state
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE enrollments SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating enrollment status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrEnrollmentNotFound
	}
	return nil
}

// SubmitGrade records a final grade, flips the enrollment to COMPLETED or
// FAILED, and credits the student on a pass, all in one transaction.
func (r *EnrollmentRepository) SubmitGrade(ctx context.Context, id int64, grade string, passed bool, credits int) error {
	status := models.EnrollmentFailed
	if passed {
		status = models.EnrollmentCompleted
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var studentID int64
		err := tx.QueryRow(ctx, `
			UPDATE enrollments SET grade = $1, status = $2, updated_at = NOW()
			WHERE id = $3
			RETURNING student_id
		`, grade, status, id).Scan(&studentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrEnrollmentNotFound
			}
			return fmt.Errorf("error submitting grade: %w", err)
		}

		if passed && credits > 0 {
			_, err := tx.Exec(ctx,
				`UPDATE students SET credits_earned = credits_earned + $1 WHERE id = $2`,
				credits, studentID)
			if err != nil {
				return fmt.Errorf("error crediting student: %w", err)
			}
		}
		return nil
	})
}

// PassedCourseIDs returns, out of the given course ids, those the student
// has completed with a passing grade. Used for prerequisite checks.
func (r *EnrollmentRepository) PassedCourseIDs(ctx context.Context, studentID int64, courseIDs []int64) ([]int64, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	grades := make([]string, 0, len(models.PassingGrades))
	for g := range models.PassingGrades {
		grades = append(grades, g)
	}

	rows, err := r.db.Query(ctx, `
		SELECT course_id FROM enrollments
		WHERE student_id = $1 AND course_id = ANY($2)
		  AND status = 'COMPLETED' AND grade = ANY($3)
	`, studentID, courseIDs, grades)
	if err != nil {
		return nil, fmt.Errorf("error querying passed courses: %w", err)
	}
	return collectIDs(rows)
}

// CountActiveByStudent returns a student's number of active enrollments
func (r *EnrollmentRepository) CountActiveByStudent(ctx context.Context, studentID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE student_id = $1 AND status = 'ACTIVE'`,
		studentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting active enrollments: %w", err)
	}
	return count, nil
}

// ActiveCourseIDsByStudent returns the course ids of a student's active
// enrollments. Used for dashboards and timetable filtering.
func (r *EnrollmentRepository) ActiveCourseIDsByStudent(ctx context.Context, studentID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT course_id FROM enrollments WHERE student_id = $1 AND status = 'ACTIVE'`,
		studentID)
	if err != nil {
		return nil, fmt.Errorf("error querying active courses: %w", err)
	}
	return collectIDs(rows)
}

// ActiveStudentIDs returns the student ids actively enrolled in a course.
// Unpaginated: attendance sheets validate against the full roster.
func (r *EnrollmentRepository) ActiveStudentIDs(ctx context.Context, courseID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT student_id FROM enrollments WHERE course_id = $1 AND status = 'ACTIVE'`,
		courseID)
	if err != nil {
		return nil, fmt.Errorf("error querying course roster: %w", err)
	}
	return collectIDs(rows)
}

// CountActive returns the total number of active enrollments
func (r *EnrollmentRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE status = 'ACTIVE'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting active enrollments: %w", err)
	}
	return count, nil
}
