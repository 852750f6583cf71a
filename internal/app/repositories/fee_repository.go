package repositories

import (
	"context"
	"errors"
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

// FeePayment is one recorded payment against a fee
type FeePayment struct {
	ID     int64     `json:"id"`
	FeeID  int64     `json:"feeId"`
	Amount float64   `json:"amount"`
	Method string    `json:"method"`
	PaidAt time.Time `json:"paidAt"`
}

// FeeRepository handles database operations for fees and payments
type FeeRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewFeeRepository creates a new fee repository
func NewFeeRepository(pool *pgxpool.Pool) *FeeRepository {
	return &FeeRepository{
		db: pool,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanFee(row pgx.Row) (*models.Fee, error) {
	var f models.Fee
	err := row.Scan(&f.ID, &f.StudentID, &f.Category, &f.Description,
		&f.AmountTotal, &f.AmountPaid, &f.DueDate, &f.AcademicYear,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFeeNotFound
		}
		return nil, fmt.Errorf("error scanning fee: %w", err)
	}
	return &f, nil
}

// Create inserts a fee row
func (r *FeeRepository) Create(ctx context.Context, fee *models.Fee) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO fees (student_id, category, description, amount_total, amount_paid, due_date, academic_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, fee.StudentID, fee.Category, fee.Description, fee.AmountTotal,
		fee.AmountPaid, fee.DueDate, fee.AcademicYear).Scan(&fee.ID, &fee.CreatedAt, &fee.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrStudentNotFound
		}
		return fmt.Errorf("error creating fee: %w", err)
	}
	return nil
}

// GetByID retrieves a fee by id
func (r *FeeRepository) GetByID(ctx context.Context, id int64) (*models.Fee, error) {
	return scanFee(r.db.QueryRow(ctx, `
		SELECT id, student_id, category, description, amount_total, amount_paid, due_date, academic_year, created_at, updated_at
		FROM fees WHERE id = $1
	`, id))
}

// FeeFilter narrows fee list queries
type FeeFilter struct {
	StudentID    int64
	Category     string
	AcademicYear string
	Page         int
	Size         int
}

// List retrieves fees narrowed by the caller's scope
func (r *FeeRepository) List(ctx context.Context, sc scope.Scope, filter FeeFilter) ([]*models.Fee, int64, error) {
	cols := scope.Columns{Student: "student_id"}

	base := r.sb.Select(
		"id", "student_id", "category", "description", "amount_total",
		"amount_paid", "due_date", "academic_year", "created_at", "updated_at",
	).From("fees")
	count := r.sb.Select("COUNT(*)").From("fees")

	var err error
	if base, err = sc.Apply(base, cols); err != nil {
		return nil, 0, err
	}
	if count, err = sc.Apply(count, cols); err != nil {
		return nil, 0, err
	}

	where := sq.And{}
	if filter.StudentID > 0 {
		where = append(where, sq.Eq{"student_id": filter.StudentID})
	}
	if filter.Category != "" {
		where = append(where, sq.Eq{"category": filter.Category})
	}
	if filter.AcademicYear != "" {
		where = append(where, sq.Eq{"academic_year": filter.AcademicYear})
	}
	if len(where) > 0 {
		base = base.Where(where)
		count = count.Where(where)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count fees query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count fees: %w", err)
	}

	base = base.OrderBy("due_date DESC").
		Limit(uint64(filter.Size)).
		Offset(uint64((filter.Page - 1) * filter.Size))

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list fees query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query fees: %w", err)
	}
	defer rows.Close()

	var fees []*models.Fee
	for rows.Next() {
		fee, err := scanFee(rows)
		if err != nil {
			return nil, 0, err
		}
		fees = append(fees, fee)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return fees, totalItems, nil
}

// Pay applies a payment to a fee while holding the row lock. An overpayment
// caps the fee at fully paid and books the remainder as a negative
// EXCESS_CREDIT row, so the credit survives as its own ledger entry.
// Returns the updated fee.
func (r *FeeRepository) Pay(ctx context.Context, feeID int64, amount float64, method string) (*models.Fee, error) {
	var fee *models.Fee
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		fee, err = scanFee(tx.QueryRow(ctx, `
			SELECT id, student_id, category, description, amount_total, amount_paid, due_date, academic_year, created_at, updated_at
			FROM fees WHERE id = $1 FOR UPDATE
		`, feeID))
		if err != nil {
			return err
		}

		due := fee.AmountDue()
		if due <= 0 {
			return apperrors.ErrFeeAlreadyPaid
		}

		applied := amount
		excess := 0.0
		if amount > due {
			applied = due
			excess = amount - due
		}

		err = tx.QueryRow(ctx, `
			UPDATE fees SET amount_paid = amount_paid + $1, updated_at = NOW()
			WHERE id = $2
			RETURNING amount_paid, updated_at
		`, applied, feeID).Scan(&fee.AmountPaid, &fee.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error applying payment: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO fee_payments (fee_id, amount, method)
			VALUES ($1, $2, $3)
		`, feeID, amount, method)
		if err != nil {
			return fmt.Errorf("error recording payment: %w", err)
		}

		if excess > 0 {
			_, err = tx.Exec(ctx, `
				INSERT INTO fees (student_id, category, description, amount_total, amount_paid, due_date, academic_year)
				VALUES ($1, $2, $3, $4, 0, NOW(), $5)
			`, fee.StudentID, models.FeeExcessCredit,
				fmt.Sprintf("Excess credit from payment on fee #%d", feeID),
				-excess, fee.AcademicYear)
			if err != nil {
				return fmt.Errorf("error booking excess credit: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fee, nil
}

// Payments lists the recorded payments for a fee, newest first
func (r *FeeRepository) Payments(ctx context.Context, feeID int64) ([]*FeePayment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, fee_id, amount, method, paid_at
		FROM fee_payments WHERE fee_id = $1
		ORDER BY paid_at DESC
	`, feeID)
	if err != nil {
		return nil, fmt.Errorf("error querying payments: %w", err)
	}
	defer rows.Close()

	var payments []*FeePayment
	for rows.Next() {
		var p FeePayment
		if err := rows.Scan(&p.ID, &p.FeeID, &p.Amount, &p.Method, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("error scanning payment: %w", err)
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

// SummaryByStudent returns total charged, paid and outstanding for one
// student. Negative excess-credit rows reduce the totals.
func (r *FeeRepository) SummaryByStudent(ctx context.Context, studentID int64) (total, paid, due float64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_total), 0),
		       COALESCE(SUM(amount_paid), 0),
		       COALESCE(SUM(GREATEST(amount_total - amount_paid, 0)), 0)
		FROM fees WHERE student_id = $1
	`, studentID).Scan(&total, &paid, &due)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("error querying fee summary: %w", err)
	}
	return total, paid, due, nil
}

// Totals returns the system-wide billed, collected and outstanding sums
// plus the number of fees currently overdue
func (r *FeeRepository) Totals(ctx context.Context) (billed, collected, outstanding float64, overdueCount int64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_total), 0),
		       COALESCE(SUM(amount_paid), 0),
		       COALESCE(SUM(GREATEST(amount_total - amount_paid, 0)), 0),
		       COUNT(*) FILTER (WHERE amount_paid < amount_total AND amount_paid = 0 AND due_date < NOW())
		FROM fees
	`).Scan(&billed, &collected, &outstanding, &overdueCount)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("error querying fee totals: %w", err)
	}
	return billed, collected, outstanding, overdueCount, nil
}
