package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/db"
	"github.com/emre/campuserp/internal/pkg/apperrors"
	"github.com/emre/campuserp/internal/pkg/dberrors"
)

// AttendanceRepository handles database operations for attendance records
type AttendanceRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{
		db: pool,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// UpsertBatch writes one attendance sheet atomically. Marking the same
// (student, course, date, period) again overwrites the earlier status.
func (r *AttendanceRepository) UpsertBatch(ctx context.Context, records []*models.Attendance) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		for _, rec := range records {
			err := tx.QueryRow(ctx, `
				INSERT INTO attendance (student_id, course_id, date, period, status, marked_by_id, marked_at)
				VALUES ($1, $2, $3, $4, $5, $6, NOW())
				ON CONFLICT (student_id, course_id, date, period)
				DO UPDATE SET status = EXCLUDED.status, marked_by_id = EXCLUDED.marked_by_id, marked_at = NOW()
				RETURNING id, marked_at
			`, rec.StudentID, rec.CourseID, rec.Date, rec.Period,
				rec.Status, rec.MarkedByID).Scan(&rec.ID, &rec.MarkedAt)
			if err != nil {
				if dberrors.IsForeignKeyViolation(err) {
					return apperrors.ErrStudentNotFound
				}
				return fmt.Errorf("error upserting attendance: %w", err)
			}
		}
		return nil
	})
}

// AttendanceFilter narrows attendance list queries
type AttendanceFilter struct {
	StudentID int64
	CourseID  int64
	From      time.Time
	To        time.Time
	Page      int
	Size      int
}

// List retrieves attendance records narrowed by the caller's scope
func (r *AttendanceRepository) List(ctx context.Context, sc scope.Scope, filter AttendanceFilter) ([]*models.Attendance, int64, error) {
	cols := scope.Columns{Student: "a.student_id", Course: "a.course_id"}

	base := r.sb.Select(
		"a.id", "a.student_id", "a.course_id", "a.date", "a.period",
		"a.status", "a.marked_by_id", "a.marked_at",
	).From("attendance a")
	count := r.sb.Select("COUNT(*)").From("attendance a")

	var err error
	if base, err = sc.Apply(base, cols); err != nil {
		return nil, 0, err
	}
	if count, err = sc.Apply(count, cols); err != nil {
		return nil, 0, err
	}

	where := sq.And{}
	if filter.StudentID > 0 {
		where = append(where, sq.Eq{"a.student_id": filter.StudentID})
	}
	if filter.CourseID > 0 {
		where = append(where, sq.Eq{"a.course_id": filter.CourseID})
	}
	if !filter.From.IsZero() {
		where = append(where, sq.GtOrEq{"a.date": filter.From})
	}
	if !filter.To.IsZero() {
		where = append(where, sq.LtOrEq{"a.date": filter.To})
	}
	if len(where) > 0 {
		base = base.Where(where)
		count = count.Where(where)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count attendance query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	base = base.OrderBy("a.date DESC, a.period ASC").
		Limit(uint64(filter.Size)).
		Offset(uint64((filter.Page - 1) * filter.Size))

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list attendance query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []*models.Attendance
	for rows.Next() {
		var a models.Attendance
		err := rows.Scan(&a.ID, &a.StudentID, &a.CourseID, &a.Date, &a.Period,
			&a.Status, &a.MarkedByID, &a.MarkedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning attendance: %w", err)
		}
		records = append(records, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, totalItems, nil
}

// ReportRow is one aggregated attendance line for a student in a course
type ReportRow struct {
	StudentID    int64
	RollNumber   string
	StudentName  string
	TotalPeriods int64
	Present      int64
	Absent       int64
	Late         int64
	Excused      int64
}

// Report aggregates attendance per student for a course over a date range
func (r *AttendanceRepository) Report(ctx context.Context, courseID int64, from, to time.Time) ([]*ReportRow, error) {
	base := r.sb.Select(
		"a.student_id",
		"s.roll_number",
		"u.first_name || ' ' || u.last_name",
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE a.status = 'PRESENT')",
		"COUNT(*) FILTER (WHERE a.status = 'ABSENT')",
		"COUNT(*) FILTER (WHERE a.status = 'LATE')",
		"COUNT(*) FILTER (WHERE a.status = 'EXCUSED')",
	).From("attendance a").
		Join("students s ON s.id = a.student_id").
		Join("users u ON u.id = s.user_id").
		Where(sq.Eq{"a.course_id": courseID}).
		GroupBy("a.student_id", "s.roll_number", "u.first_name", "u.last_name").
		OrderBy("s.roll_number ASC")

	if !from.IsZero() {
		base = base.Where(sq.GtOrEq{"a.date": from})
	}
	if !to.IsZero() {
		base = base.Where(sq.LtOrEq{"a.date": to})
	}

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance report query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance report: %w", err)
	}
	defer rows.Close()

	var report []*ReportRow
	for rows.Next() {
		var row ReportRow
		err := rows.Scan(&row.StudentID, &row.RollNumber, &row.StudentName,
			&row.TotalPeriods, &row.Present, &row.Absent, &row.Late, &row.Excused)
		if err != nil {
			return nil, fmt.Errorf("error scanning report row: %w", err)
		}
		report = append(report, &row)
	}
	return report, rows.Err()
}

// StudentSummary returns a student's overall attendance counts, optionally
// limited to one course
func (r *AttendanceRepository) StudentSummary(ctx context.Context, studentID, courseID int64) (total, present int64, err error) {
	base := r.sb.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE status IN ('PRESENT', 'LATE', 'EXCUSED'))",
	).From("attendance").Where(sq.Eq{"student_id": studentID})
	if courseID > 0 {
		base = base.Where(sq.Eq{"course_id": courseID})
	}

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build attendance summary query: %w", err)
	}

	if err := r.db.QueryRow(ctx, querySQL, queryArgs...).Scan(&total, &present); err != nil {
		return 0, 0, fmt.Errorf("failed to query attendance summary: %w", err)
	}
	return total, present, nil
}
