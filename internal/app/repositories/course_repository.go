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
	"github.com/emre/campuserp/internal/db"
	"github.com/emre/campuserp/internal/pkg/apperrors"
	"github.com/emre/campuserp/internal/pkg/dberrors"
)

// CourseRepository handles database operations for courses, their
// instructor assignments and prerequisite links
type CourseRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: pool,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create inserts a course with its instructor and prerequisite links in
// one transaction
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO courses (code, name, description, department_id, coordinator_id, credits, semester, max_enrollment)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`, strings.ToUpper(course.Code), course.Name, course.Description,
			course.DepartmentID, course.CoordinatorID, course.Credits,
			course.Semester, course.MaxEnrollment).Scan(&course.ID)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, "courses_code_key") {
				return apperrors.ErrCourseCodeExists
			}
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrDepartmentNotFound
			}
			return fmt.Errorf("error creating course: %w", err)
		}

		if err := r.replaceInstructors(ctx, tx, course.ID, course.InstructorIDs); err != nil {
			return err
		}
		return r.replacePrerequisites(ctx, tx, course.ID, course.PrerequisiteIDs)
	})
}

func (r *CourseRepository) replaceInstructors(ctx context.Context, tx pgx.Tx, courseID int64, facultyIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM course_instructors WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("error clearing instructors: %w", err)
	}
	for _, fid := range facultyIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO course_instructors (course_id, faculty_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			courseID, fid)
		if err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrFacultyNotFound
			}
			return fmt.Errorf("error assigning instructor: %w", err)
		}
	}
	return nil
}

func (r *CourseRepository) replacePrerequisites(ctx context.Context, tx pgx.Tx, courseID int64, prereqIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM course_prerequisites WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("error clearing prerequisites: %w", err)
	}
	for _, pid := range prereqIDs {
		if pid == courseID {
			continue
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO course_prerequisites (course_id, prerequisite_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			courseID, pid)
		if err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrCourseNotFound
			}
			return fmt.Errorf("error linking prerequisite: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a course with its instructor and prerequisite ids
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	var c models.Course
	err := r.db.QueryRow(ctx, `
		SELECT c.id, c.code, c.name, c.description, c.department_id, c.coordinator_id,
		       c.credits, c.semester, c.max_enrollment,
		       (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id AND e.status = 'ACTIVE')
		FROM courses c WHERE c.id = $1
	`, id).Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.DepartmentID,
		&c.CoordinatorID, &c.Credits, &c.Semester, &c.MaxEnrollment, &c.EnrolledCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error getting course: %w", err)
	}

	if err := r.loadLinks(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) loadLinks(ctx context.Context, c *models.Course) error {
	rows, err := r.db.Query(ctx,
		`SELECT faculty_id FROM course_instructors WHERE course_id = $1 ORDER BY faculty_id`, c.ID)
	if err != nil {
		return fmt.Errorf("error loading instructors: %w", err)
	}
	c.InstructorIDs, err = collectIDs(rows)
	if err != nil {
		return err
	}

	rows, err = r.db.Query(ctx,
		`SELECT prerequisite_id FROM course_prerequisites WHERE course_id = $1 ORDER BY prerequisite_id`, c.ID)
	if err != nil {
		return fmt.Errorf("error loading prerequisites: %w", err)
	}
	c.PrerequisiteIDs, err = collectIDs(rows)
	return err
}

func collectIDs(rows pgx.Rows) ([]int64, error) {
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetIDsByFaculty returns the ids of courses where the faculty member is
// coordinator or assigned instructor. Implements scope.CourseLookup.
func (r *CourseRepository) GetIDsByFaculty(ctx context.Context, facultyID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM courses WHERE coordinator_id = $1
		UNION
		SELECT course_id FROM course_instructors WHERE faculty_id = $1
	`, facultyID)
	if err != nil {
		return nil, fmt.Errorf("error querying faculty courses: %w", err)
	}
	return collectIDs(rows)
}

// CourseFilter narrows course list queries
type CourseFilter struct {
	DepartmentID int64
	Semester     int
	Search       string
	Page         int
	Size         int
}

// List retrieves courses with active-enrollment counts. Courses are visible
// to every authenticated role, so no scope predicate is applied here.
func (r *CourseRepository) List(ctx context.Context, filter CourseFilter) ([]*models.Course, int64, error) {
	base := r.sb.Select(
		"c.id", "c.code", "c.name", "c.description", "c.department_id", "c.coordinator_id",
		"c.credits", "c.semester", "c.max_enrollment",
		"(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id AND e.status = 'ACTIVE')",
	).From("courses c")
	count := r.sb.Select("COUNT(*)").From("courses c")

	where := sq.And{}
	if filter.DepartmentID > 0 {
		where = append(where, sq.Eq{"c.department_id": filter.DepartmentID})
	}
	if filter.Semester > 0 {
		where = append(where, sq.Eq{"c.semester": filter.Semester})
	}
	if filter.Search != "" {
		pattern := "%" + strings.TrimSpace(filter.Search) + "%"
		where = append(where, sq.Or{
			sq.ILike{"c.name": pattern},
			sq.ILike{"c.code": pattern},
		})
	}
	if len(where) > 0 {
		base = base.Where(where)
		count = count.Where(where)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count courses query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	base = base.OrderBy("c.code ASC").
		Limit(uint64(filter.Size)).
		Offset(uint64((filter.Page - 1) * filter.Size))

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		var c models.Course
		err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.DepartmentID,
			&c.CoordinatorID, &c.Credits, &c.Semester, &c.MaxEnrollment, &c.EnrolledCount)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return courses, totalItems, nil
}

// Update updates a course and replaces its instructor and prerequisite links
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `
			UPDATE courses
			SET name = $1, description = $2, coordinator_id = $3, credits = $4,
			    semester = $5, max_enrollment = $6
			WHERE id = $7
		`, course.Name, course.Description, course.CoordinatorID,
			course.Credits, course.Semester, course.MaxEnrollment, course.ID)
		if err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrFacultyNotFound
			}
			return fmt.Errorf("error updating course: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrCourseNotFound
		}

		if err := r.replaceInstructors(ctx, tx, course.ID, course.InstructorIDs); err != nil {
			return err
		}
		return r.replacePrerequisites(ctx, tx, course.ID, course.PrerequisiteIDs)
	})
}

// Delete removes a course. Fails with ErrCourseHasEnrollments when
// enrollment rows still reference it.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrCourseHasEnrollments
		}
		return fmt.Errorf("error deleting course: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// Count returns the total number of courses
func (r *CourseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting courses: %w", err)
	}
	return count, nil
}
