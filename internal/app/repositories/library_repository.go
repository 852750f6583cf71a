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
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/db"
	"github.com/emre/campuserp/internal/pkg/apperrors"
	"github.com/emre/campuserp/internal/pkg/dberrors"
)

// LibraryRepository handles database operations for the book catalog and
// borrow records
type LibraryRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewLibraryRepository creates a new library repository
func NewLibraryRepository(pool *pgxpool.Pool) *LibraryRepository {
	return &LibraryRepository{
		db: pool,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanBook(row pgx.Row) (*models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Category,
		&b.TotalCopies, &b.AvailableCopies, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBookNotFound
		}
		return nil, fmt.Errorf("error scanning book: %w", err)
	}
	return &b, nil
}

// CreateBook inserts a catalog item
func (r *LibraryRepository) CreateBook(ctx context.Context, book *models.Book) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO books (isbn, title, author, category, total_copies, available_copies)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, book.ISBN, book.Title, book.Author, book.Category,
		book.TotalCopies, book.AvailableCopies).Scan(&book.ID, &book.CreatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrBookAlreadyExists
		}
		return fmt.Errorf("error creating book: %w", err)
	}
	return nil
}

// GetBookByID retrieves a book by id
func (r *LibraryRepository) GetBookByID(ctx context.Context, id int64) (*models.Book, error) {
	return scanBook(r.db.QueryRow(ctx, `
		SELECT id, isbn, title, author, category, total_copies, available_copies, created_at
		FROM books WHERE id = $1
	`, id))
}

// BookFilter narrows catalog list queries
type BookFilter struct {
	Category  string
	Search    string
	Available bool
	Page      int
	Size      int
}

// ListBooks retrieves catalog items. The catalog is public to every
// authenticated role.
func (r *LibraryRepository) ListBooks(ctx context.Context, filter BookFilter) ([]*models.Book, int64, error) {
	base := r.sb.Select(
		"id", "isbn", "title", "author", "category",
		"total_copies", "available_copies", "created_at",
	).From("books")
	count := r.sb.Select("COUNT(*)").From("books")

	where := sq.And{}
	if filter.Category != "" {
		where = append(where, sq.Eq{"category": filter.Category})
	}
	if filter.Search != "" {
		pattern := "%" + strings.TrimSpace(filter.Search) + "%"
		where = append(where, sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"author": pattern},
			sq.ILike{"isbn": pattern},
		})
	}
	if filter.Available {
		where = append(where, sq.Gt{"available_copies": 0})
	}
	if len(where) > 0 {
		base = base.Where(where)
		count = count.Where(where)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count books query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	base = base.OrderBy("title ASC").
		Limit(uint64(filter.Size)).
		Offset(uint64((filter.Page - 1) * filter.Size))

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list books query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []*models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return books, totalItems, nil
}

// UpdateBook updates catalog metadata and the total copy count. Available
// copies shift by the same delta so active loans stay accounted for.
func (r *LibraryRepository) UpdateBook(ctx context.Context, book *models.Book) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var currentTotal, currentAvailable int
		err := tx.QueryRow(ctx,
			`SELECT total_copies, available_copies FROM books WHERE id = $1 FOR UPDATE`,
			book.ID).Scan(&currentTotal, &currentAvailable)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrBookNotFound
			}
			return fmt.Errorf("error locking book: %w", err)
		}

		delta := book.TotalCopies - currentTotal
		newAvailable := currentAvailable + delta
		if newAvailable < 0 {
			return apperrors.ErrBookUnavailable
		}
		book.AvailableCopies = newAvailable

		_, err = tx.Exec(ctx, `
			UPDATE books
			SET isbn = $1, title = $2, author = $3, category = $4,
			    total_copies = $5, available_copies = $6
			WHERE id = $7
		`, book.ISBN, book.Title, book.Author, book.Category,
			book.TotalCopies, newAvailable, book.ID)
		if err != nil {
			if dberrors.IsUniqueViolation(err) {
				return apperrors.ErrBookAlreadyExists
			}
			return fmt.Errorf("error updating book: %w", err)
		}
		return nil
	})
}

// DeleteBook removes a catalog item. Fails when borrow records reference it.
func (r *LibraryRepository) DeleteBook(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrBookHasLoans
		}
		return fmt.Errorf("error deleting book: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrBookNotFound
	}
	return nil
}

func scanBorrowRecord(row pgx.Row) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.BookID, &rec.BorrowedAt,
		&rec.DueDate, &rec.ReturnedAt, &rec.RenewalCount, &rec.Status, &rec.Fine)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBorrowNotFound
		}
		return nil, fmt.Errorf("error scanning borrow record: %w", err)
	}
	return &rec, nil
}

// Borrow checks out a copy. The conditional decrement only succeeds while a
// copy is on the shelf, so two simultaneous borrows cannot oversubscribe
// the stock. Eligibility counts run inside the same transaction.
func (r *LibraryRepository) Borrow(ctx context.Context, studentID, bookID int64, dueDate time.Time, borrowLimit int) (*models.BorrowRecord, error) {
	var record *models.BorrowRecord
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var activeLoans, overdueLoans, sameBook int64
		err := tx.QueryRow(ctx, `
			SELECT COUNT(*),
			       COUNT(*) FILTER (WHERE due_date < NOW()),
			       COUNT(*) FILTER (WHERE book_id = $2)
			FROM borrow_records
			WHERE student_id = $1 AND status = 'ACTIVE'
		`, studentID, bookID).Scan(&activeLoans, &overdueLoans, &sameBook)
		if err != nil {
			return fmt.Errorf("error checking borrow eligibility: %w", err)
		}
		if overdueLoans > 0 {
			return apperrors.ErrOverdueLoansExist
		}
		if sameBook > 0 {
			return apperrors.ErrAlreadyBorrowed
		}
		if activeLoans >= int64(borrowLimit) {
			return apperrors.ErrBorrowLimitReached
		}

		cmdTag, err := tx.Exec(ctx, `
			UPDATE books SET available_copies = available_copies - 1
			WHERE id = $1 AND available_copies > 0
		`, bookID)
		if err != nil {
			return fmt.Errorf("error decrementing copies: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, bookID).Scan(&exists); err != nil {
				return fmt.Errorf("error checking book: %w", err)
			}
			if !exists {
				return apperrors.ErrBookNotFound
			}
			return apperrors.ErrBookUnavailable
		}

		record = &models.BorrowRecord{
			StudentID: studentID,
			BookID:    bookID,
			DueDate:   dueDate,
			Status:    models.BorrowActive,
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO borrow_records (student_id, book_id, due_date, status)
			VALUES ($1, $2, $3, $4)
			RETURNING id, borrowed_at
		`, studentID, bookID, dueDate, models.BorrowActive).Scan(&record.ID, &record.BorrowedAt)
		if err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrStudentNotFound
			}
			return fmt.Errorf("error creating borrow record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Return closes a loan, restores the copy and stores the computed fine.
// Returning an already returned loan fails with ErrAlreadyReturned.
func (r *LibraryRepository) Return(ctx context.Context, recordID int64, returnedAt time.Time, fine float64) (*models.BorrowRecord, error) {
	var record *models.BorrowRecord
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		record, err = scanBorrowRecord(tx.QueryRow(ctx, `
			SELECT id, student_id, book_id, borrowed_at, due_date, returned_at, renewal_count, status, fine
			FROM borrow_records WHERE id = $1 FOR UPDATE
		`, recordID))
		if err != nil {
			return err
		}
		if record.Status == models.BorrowReturned {
			return apperrors.ErrAlreadyReturned
		}

		_, err = tx.Exec(ctx, `
			UPDATE borrow_records
			SET status = $1, returned_at = $2, fine = $3
			WHERE id = $4
		`, models.BorrowReturned, returnedAt, fine, recordID)
		if err != nil {
			return fmt.Errorf("error closing loan: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE books SET available_copies = available_copies + 1
			WHERE id = $1 AND available_copies < total_copies
		`, record.BookID)
		if err != nil {
			return fmt.Errorf("error restoring copy: %w", err)
		}

		record.Status = models.BorrowReturned
		record.ReturnedAt = &returnedAt
		record.Fine = fine
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Renew extends an active loan by the given duration. Overdue loans and
// loans at the renewal limit are rejected.
func (r *LibraryRepository) Renew(ctx context.Context, recordID int64, extendBy time.Duration, renewalLimit int, now time.Time) (*models.BorrowRecord, error) {
	var record *models.BorrowRecord
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		record, err = scanBorrowRecord(tx.QueryRow(ctx, `
			SELECT id, student_id, book_id, borrowed_at, due_date, returned_at, renewal_count, status, fine
			FROM borrow_records WHERE id = $1 FOR UPDATE
		`, recordID))
		if err != nil {
			return err
		}
		if record.Status == models.BorrowReturned {
			return apperrors.ErrAlreadyReturned
		}
		if record.IsOverdue(now) {
			return apperrors.ErrRenewOverdueLoan
		}
		if record.RenewalCount >= renewalLimit {
			return apperrors.ErrRenewalLimitReached
		}

		newDue := record.DueDate.Add(extendBy)
		_, err = tx.Exec(ctx, `
			UPDATE borrow_records
			SET due_date = $1, renewal_count = renewal_count + 1
			WHERE id = $2
		`, newDue, recordID)
		if err != nil {
			return fmt.Errorf("error renewing loan: %w", err)
		}

		record.DueDate = newDue
		record.RenewalCount++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetBorrowRecord retrieves a loan by id
func (r *LibraryRepository) GetBorrowRecord(ctx context.Context, id int64) (*models.BorrowRecord, error) {
	return scanBorrowRecord(r.db.QueryRow(ctx, `
		SELECT id, student_id, book_id, borrowed_at, due_date, returned_at, renewal_count, status, fine
		FROM borrow_records WHERE id = $1
	`, id))
}

// BorrowFilter narrows loan list queries
type BorrowFilter struct {
	StudentID int64
	BookID    int64
	Status    string
	Overdue   bool
	Page      int
	Size      int
}

// ListBorrowRecords retrieves loans narrowed by the caller's scope.
// Borrow records carry no course linkage, so a faculty caller fails closed.
func (r *LibraryRepository) ListBorrowRecords(ctx context.Context, sc scope.Scope, filter BorrowFilter) ([]*models.BorrowRecord, int64, error) {
	cols := scope.Columns{Student: "br.student_id", Library: true}

	base := r.sb.Select(
		"br.id", "br.student_id", "br.book_id", "br.borrowed_at", "br.due_date",
		"br.returned_at", "br.renewal_count", "br.status", "br.fine",
	).From("borrow_records br")
	count := r.sb.Select("COUNT(*)").From("borrow_records br")

	var err error
	if base, err = sc.Apply(base, cols); err != nil {
		return nil, 0, err
	}
	if count, err = sc.Apply(count, cols); err != nil {
		return nil, 0, err
	}

	where := sq.And{}
	if filter.StudentID > 0 {
		where = append(where, sq.Eq{"br.student_id": filter.StudentID})
	}
	if filter.BookID > 0 {
		where = append(where, sq.Eq{"br.book_id": filter.BookID})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"br.status": filter.Status})
	}
	if filter.Overdue {
		where = append(where, sq.Eq{"br.status": models.BorrowActive})
		where = append(where, sq.Expr("br.due_date < NOW()"))
	}
	if len(where) > 0 {
		base = base.Where(where)
		count = count.Where(where)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count loans query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count loans: %w", err)
	}

	base = base.OrderBy("br.borrowed_at DESC").
		Limit(uint64(filter.Size)).
		Offset(uint64((filter.Page - 1) * filter.Size))

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list loans query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var records []*models.BorrowRecord
	for rows.Next() {
		rec, err := scanBorrowRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, totalItems, nil
}

// CountActiveLoans returns the number of active loans system-wide
func (r *LibraryRepository) CountActiveLoans(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM borrow_records WHERE status = 'ACTIVE'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting active loans: %w", err)
	}
	return count, nil
}
