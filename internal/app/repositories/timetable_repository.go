package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/db"
	"github.com/emre/campuserp/internal/pkg/apperrors"
	"github.com/emre/campuserp/internal/pkg/dberrors"
)

// TimetableRepository handles database operations for timetables and their
// periods
type TimetableRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewTimetableRepository creates a new timetable repository
func NewTimetableRepository(pool *pgxpool.Pool) *TimetableRepository {
	return &TimetableRepository{
		db: pool,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanTimetable(row pgx.Row) (*models.Timetable, error) {
	var t models.Timetable
	err := row.Scan(&t.ID, &t.DepartmentID, &t.Semester, &t.AcademicYear,
		&t.Type, &t.Batch, &t.Version, &t.Status, &t.IsActive,
		&t.CreatedByID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTimetableNotFound
		}
		return nil, fmt.Errorf("error scanning timetable: %w", err)
	}
	return &t, nil
}

const timetableColumns = `id, department_id, semester, academic_year, type, batch, version, status, is_active, created_by_id, created_at, updated_at`

// Create inserts a draft timetable with its periods. The version is the
// next one for the (department, semester, year, type, batch) key.
func (r *TimetableRepository) Create(ctx context.Context, t *models.Timetable) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO timetables (department_id, semester, academic_year, type, batch, version, status, is_active, created_by_id)
			VALUES ($1, $2, $3, $4, $5,
				(SELECT COALESCE(MAX(version), 0) + 1 FROM timetables
				 WHERE department_id = $1 AND semester = $2 AND academic_year = $3 AND type = $4 AND batch = $5),
				$6, FALSE, $7)
			RETURNING id, version, created_at, updated_at
		`, t.DepartmentID, t.Semester, t.AcademicYear, t.Type, t.Batch,
			models.TimetableDraft, t.CreatedByID).Scan(&t.ID, &t.Version, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrDepartmentNotFound
			}
			return fmt.Errorf("error creating timetable: %w", err)
		}
		t.Status = models.TimetableDraft
		t.IsActive = false

		return r.insertPeriods(ctx, tx, t.ID, t.Periods)
	})
}

func (r *TimetableRepository) insertPeriods(ctx context.Context, tx pgx.Tx, timetableID int64, periods []models.Period) error {
	for i := range periods {
		p := &periods[i]
		err := tx.QueryRow(ctx, `
			INSERT INTO timetable_periods (timetable_id, day, start_time, end_time, course_id, faculty_id, room)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, timetableID, p.Day, p.StartTime, p.EndTime, p.CourseID, p.FacultyID, p.Room).Scan(&p.ID)
		if err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrCourseNotFound
			}
			return fmt.Errorf("error inserting period: %w", err)
		}
		p.TimetableID = timetableID
	}
	return nil
}

// GetByID retrieves a timetable with its periods
func (r *TimetableRepository) GetByID(ctx context.Context, id int64) (*models.Timetable, error) {
	t, err := scanTimetable(r.db.QueryRow(ctx,
		`SELECT `+timetableColumns+` FROM timetables WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadPeriods(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetActive retrieves the active timetable for one scheduling key
func (r *TimetableRepository) GetActive(ctx context.Context, departmentID int64, semester int, academicYear, ttType, batch string) (*models.Timetable, error) {
	t, err := scanTimetable(r.db.QueryRow(ctx, `
		SELECT `+timetableColumns+` FROM timetables
		WHERE department_id = $1 AND semester = $2 AND academic_year = $3
		  AND type = $4 AND batch = $5 AND is_active = TRUE
	`, departmentID, semester, academicYear, ttType, batch))
	if err != nil {
		return nil, err
	}
	if err := r.loadPeriods(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TimetableRepository) loadPeriods(ctx context.Context, t *models.Timetable) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, timetable_id, day, start_time, end_time, course_id, faculty_id, room
		FROM timetable_periods
		WHERE timetable_id = $1
		ORDER BY array_position(ARRAY['MONDAY','TUESDAY','WEDNESDAY','THURSDAY','FRIDAY','SATURDAY'], day), start_time
	`, t.ID)
	if err != nil {
		return fmt.Errorf("error loading periods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Period
		err := rows.Scan(&p.ID, &p.TimetableID, &p.Day, &p.StartTime,
			&p.EndTime, &p.CourseID, &p.FacultyID, &p.Room)
		if err != nil {
			return fmt.Errorf("error scanning period: %w", err)
		}
		t.Periods = append(t.Periods, p)
	}
	return rows.Err()
}

// TimetableFilter narrows timetable list queries
type TimetableFilter struct {
	DepartmentID int64
	Semester     int
	AcademicYear string
	Status       string
	ActiveOnly   bool
	Page         int
	Size         int
}

// List retrieves timetables without their periods
func (r *TimetableRepository) List(ctx context.Context, filter TimetableFilter) ([]*models.Timetable, int64, error) {
	base := r.sb.Select(
		"id", "department_id", "semester", "academic_year", "type", "batch",
		"version", "status", "is_active", "created_by_id", "created_at", "updated_at",
	).From("timetables")
	count := r.sb.Select("COUNT(*)").From("timetables")

	where := sq.And{}
	if filter.DepartmentID > 0 {
		where = append(where, sq.Eq{"department_id": filter.DepartmentID})
	}
	if filter.Semester > 0 {
		where = append(where, sq.Eq{"semester": filter.Semester})
	}
	if filter.AcademicYear != "" {
		where = append(where, sq.Eq{"academic_year": filter.AcademicYear})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}
	if filter.ActiveOnly {
		where = append(where, sq.Eq{"is_active": true})
	}
	if len(where) > 0 {
		base = base.Where(where)
		count = count.Where(where)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count timetables query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count timetables: %w", err)
	}

	base = base.OrderBy("created_at DESC").
		Limit(uint64(filter.Size)).
		Offset(uint64((filter.Page - 1) * filter.Size))

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list timetables query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query timetables: %w", err)
	}
	defer rows.Close()

	var timetables []*models.Timetable
	for rows.Next() {
		t, err := scanTimetable(rows)
		if err != nil {
			return nil, 0, err
		}
		timetables = append(timetables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return timetables, totalItems, nil
}

// ReplacePeriods swaps the period set of a draft timetable
func (r *TimetableRepository) ReplacePeriods(ctx context.Context, timetableID int64, periods []models.Period) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var status models.TimetableStatus
		err := tx.QueryRow(ctx,
			`SELECT status FROM timetables WHERE id = $1 FOR UPDATE`,
			timetableID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrTimetableNotFound
			}
			return fmt.Errorf("error locking timetable: %w", err)
		}
		if status != models.TimetableDraft {
			return apperrors.ErrTimetableNotDraft
		}

		if _, err := tx.Exec(ctx, `DELETE FROM timetable_periods WHERE timetable_id = $1`, timetableID); err != nil {
			return fmt.Errorf("error clearing periods: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE timetables SET updated_at = NOW() WHERE id = $1`, timetableID); err != nil {
			return fmt.Errorf("error touching timetable: %w", err)
		}
		return r.insertPeriods(ctx, tx, timetableID, periods)
	})
}

// UpdateStatus moves a timetable along its lifecycle, verifying the
// expected current state under the row lock
func (r *TimetableRepository) UpdateStatus(ctx context.Context, id int64, from, to models.TimetableStatus) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		return r.updateStatusTx(ctx, tx, id, from, to)
	})
}

func (r *TimetableRepository) updateStatusTx(ctx context.Context, tx pgx.Tx, id int64, from, to models.TimetableStatus) error {
	var status models.TimetableStatus
	err := tx.QueryRow(ctx,
		`SELECT status FROM timetables WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrTimetableNotFound
		}
		return fmt.Errorf("error locking timetable: %w", err)
	}
	if status != from {
		switch from {
		case models.TimetableDraft:
			return apperrors.ErrTimetableNotDraft
		case models.TimetablePending:
			return apperrors.ErrTimetableNotPending
		}
		return apperrors.ErrTimetableNotDraft
	}

	_, err = tx.Exec(ctx,
		`UPDATE timetables SET status = $1, updated_at = NOW() WHERE id = $2`, to, id)
	if err != nil {
		return fmt.Errorf("error updating timetable status: %w", err)
	}
	return nil
}

// Approve activates a pending timetable and deactivates any other for the
// same key in one transaction, keeping at most one active per key.
func (r *TimetableRepository) Approve(ctx context.Context, id int64) (*models.Timetable, error) {
	var approved *models.Timetable
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		t, err := scanTimetable(tx.QueryRow(ctx,
			`SELECT `+timetableColumns+` FROM timetables WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if t.Status != models.TimetablePending {
			return apperrors.ErrTimetableNotPending
		}

		_, err = tx.Exec(ctx, `
			UPDATE timetables SET is_active = FALSE, updated_at = NOW()
			WHERE department_id = $1 AND semester = $2 AND academic_year = $3
			  AND type = $4 AND batch = $5 AND is_active = TRUE AND id <> $6
		`, t.DepartmentID, t.Semester, t.AcademicYear, t.Type, t.Batch, id)
		if err != nil {
			return fmt.Errorf("error deactivating previous timetable: %w", err)
		}

		err = tx.QueryRow(ctx, `
			UPDATE timetables SET status = $1, is_active = TRUE, updated_at = NOW()
			WHERE id = $2
			RETURNING updated_at
		`, models.TimetableApproved, id).Scan(&t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error approving timetable: %w", err)
		}

		t.Status = models.TimetableApproved
		t.IsActive = true
		approved = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// Delete removes a draft timetable and its periods
func (r *TimetableRepository) Delete(ctx context.Context, id int64) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var status models.TimetableStatus
		err := tx.QueryRow(ctx,
			`SELECT status FROM timetables WHERE id = $1 FOR UPDATE`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrTimetableNotFound
			}
			return fmt.Errorf("error locking timetable: %w", err)
		}
		if status != models.TimetableDraft {
			return apperrors.ErrTimetableNotDraft
		}

		if _, err := tx.Exec(ctx, `DELETE FROM timetables WHERE id = $1`, id); err != nil {
			return fmt.Errorf("error deleting timetable: %w", err)
		}
		return nil
	})
}

// FacultyConflicts finds slots where a faculty member appears in more than
// one active timetable at the same (day, start, end)
func (r *TimetableRepository) FacultyConflicts(ctx context.Context) ([]*models.FacultyConflict, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.faculty_id, p.day, p.start_time, p.end_time, array_agg(DISTINCT t.id ORDER BY t.id)
		FROM timetable_periods p
		JOIN timetables t ON t.id = p.timetable_id
		WHERE t.is_active = TRUE
		GROUP BY p.faculty_id, p.day, p.start_time, p.end_time
		HAVING COUNT(DISTINCT t.id) > 1
		ORDER BY p.faculty_id, p.day, p.start_time
	`)
	if err != nil {
		return nil, fmt.Errorf("error querying faculty conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []*models.FacultyConflict
	for rows.Next() {
		var c models.FacultyConflict
		err := rows.Scan(&c.FacultyID, &c.Day, &c.StartTime, &c.EndTime, &c.TimetableIDs)
		if err != nil {
			return nil, fmt.Errorf("error scanning conflict: %w", err)
		}
		conflicts = append(conflicts, &c)
	}
	return conflicts, rows.Err()
}

// PeriodsForCourses returns periods of active timetables limited to the
// given courses. Used for student and faculty schedule views.
func (r *TimetableRepository) PeriodsForCourses(ctx context.Context, courseIDs []int64) ([]models.Period, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.timetable_id, p.day, p.start_time, p.end_time, p.course_id, p.faculty_id, p.room
		FROM timetable_periods p
		JOIN timetables t ON t.id = p.timetable_id
		WHERE t.is_active = TRUE AND p.course_id = ANY($1)
		ORDER BY array_position(ARRAY['MONDAY','TUESDAY','WEDNESDAY','THURSDAY','FRIDAY','SATURDAY'], p.day), p.start_time
	`, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("error querying periods: %w", err)
	}
	defer rows.Close()

	var periods []models.Period
	for rows.Next() {
		var p models.Period
		err := rows.Scan(&p.ID, &p.TimetableID, &p.Day, &p.StartTime,
			&p.EndTime, &p.CourseID, &p.FacultyID, &p.Room)
		if err != nil {
			return nil, fmt.Errorf("error scanning period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}
