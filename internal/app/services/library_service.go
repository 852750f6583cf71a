package services

import (
	"context"
	"fmt"
	"time"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/config"
	"github.com/emre/campuserp/internal/pkg/apperrors"
)

// LibraryStore persists the catalog and loans. Borrow runs the
// eligibility checks and the stock decrement in one transaction.
type LibraryStore interface {
	CreateBook(ctx context.Context, book *models.Book) error
	GetBookByID(ctx context.Context, id int64) (*models.Book, error)
	ListBooks(ctx context.Context, filter repositories.BookFilter) ([]*models.Book, int64, error)
	UpdateBook(ctx context.Context, book *models.Book) error
	DeleteBook(ctx context.Context, id int64) error
	Borrow(ctx context.Context, studentID, bookID int64, dueDate time.Time, borrowLimit int) (*models.BorrowRecord, error)
	GetBorrowRecord(ctx context.Context, id int64) (*models.BorrowRecord, error)
	Return(ctx context.Context, recordID int64, returnedAt time.Time, fine float64) (*models.BorrowRecord, error)
	Renew(ctx context.Context, recordID int64, extendBy time.Duration, renewalLimit int, now time.Time) (*models.BorrowRecord, error)
	ListBorrowRecords(ctx context.Context, sc scope.Scope, filter repositories.BorrowFilter) ([]*models.BorrowRecord, int64, error)
}

// FineBiller records library fines as fee charges
type FineBiller interface {
	Create(ctx context.Context, fee *models.Fee) error
}

// LibraryService handles the book catalog and loan lifecycle
type LibraryService struct {
	libraryRepo LibraryStore
	studentRepo StudentGetter
	feeRepo     FineBiller
	cfg         config.LibraryConfig
}

// NewLibraryService creates a new library service
func NewLibraryService(
	libraryRepo LibraryStore,
	studentRepo StudentGetter,
	feeRepo FineBiller,
	cfg config.LibraryConfig,
) *LibraryService {
	return &LibraryService{
		libraryRepo: libraryRepo,
		studentRepo: studentRepo,
		feeRepo:     feeRepo,
		cfg:         cfg,
	}
}

// CreateBook adds a catalog item with all copies on the shelf
func (s *LibraryService) CreateBook(ctx context.Context, req *dto.CreateBookRequest) (*models.Book, error) {
	book := &models.Book{
		ISBN:            req.ISBN,
		Title:           req.Title,
		Author:          req.Author,
		Category:        req.Category,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
	}
	if err := s.libraryRepo.CreateBook(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook retrieves one catalog item
func (s *LibraryService) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	return s.libraryRepo.GetBookByID(ctx, id)
}

// ListBooks retrieves catalog items with filtering and pagination
func (s *LibraryService) ListBooks(ctx context.Context, filter repositories.BookFilter) ([]*models.Book, int64, error) {
	return s.libraryRepo.ListBooks(ctx, filter)
}

// UpdateBook updates catalog metadata and copy counts
func (s *LibraryService) UpdateBook(ctx context.Context, id int64, req *dto.UpdateBookRequest) (*models.Book, error) {
	book, err := s.libraryRepo.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}

	book.Title = req.Title
	book.Author = req.Author
	book.Category = req.Category
	book.TotalCopies = req.TotalCopies
	if err := s.libraryRepo.UpdateBook(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a catalog item without loan history
func (s *LibraryService) DeleteBook(ctx context.Context, id int64) error {
	return s.libraryRepo.DeleteBook(ctx, id)
}

// Borrow checks out a copy. Students borrow for themselves; librarians and
// admins name the student. Eligibility (limit, overdue loans, duplicate
// title) and the stock decrement run in one transaction.
func (s *LibraryService) Borrow(ctx context.Context, sc scope.Scope, req *dto.BorrowRequest) (*models.BorrowRecord, error) {
	studentID := req.StudentID
	switch sc.Kind {
	case scope.KindStudent:
		studentID = sc.StudentID
	case scope.KindAdmin, scope.KindLibrarian:
		if studentID == 0 {
			return nil, apperrors.NewValidationError("studentId is required")
		}
	default:
		return nil, apperrors.ErrPermissionDenied
	}

	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}

	dueDate := time.Now().AddDate(0, 0, s.cfg.LoanDays)
	return s.libraryRepo.Borrow(ctx, studentID, req.BookID, dueDate, s.cfg.BorrowLimit)
}

// Return closes a loan. An overdue return computes the fine from whole
// days late and bills it as a library-fine fee.
func (s *LibraryService) Return(ctx context.Context, sc scope.Scope, borrowID int64) (*dto.ReturnResult, error) {
	record, err := s.libraryRepo.GetBorrowRecord(ctx, borrowID)
	if err != nil {
		return nil, err
	}
	if !sc.AllowsBorrower(record.StudentID) {
		return nil, apperrors.ErrBorrowNotFound
	}

	now := time.Now()
	fine := record.FineAt(now, s.cfg.FinePerDay)
	daysOverdue := record.DaysOverdue(now)

	returned, err := s.libraryRepo.Return(ctx, borrowID, now, fine)
	if err != nil {
		return nil, err
	}

	if fine > 0 {
		book, bookErr := s.libraryRepo.GetBookByID(ctx, returned.BookID)
		description := "Late return fine"
		if bookErr == nil {
			description = fmt.Sprintf("Late return fine: %s (%d days)", book.Title, daysOverdue)
		}
		fee := &models.Fee{
			StudentID:    returned.StudentID,
			Category:     models.FeeLibraryFine,
			Description:  description,
			AmountTotal:  fine,
			DueDate:      now.AddDate(0, 0, 30),
			AcademicYear: academicYearAt(now),
		}
		if err := s.feeRepo.Create(ctx, fee); err != nil {
			return nil, err
		}
	}

	return &dto.ReturnResult{
		BorrowID:    returned.ID,
		IsOverdue:   daysOverdue > 0,
		DaysOverdue: daysOverdue,
		Fine:        fine,
	}, nil
}

// academicYearAt derives the YYYY-YYYY academic year containing t, with
// the year boundary in July.
func academicYearAt(t time.Time) string {
	year := t.Year()
	if t.Month() < time.July {
		return fmt.Sprintf("%d-%d", year-1, year)
	}
	return fmt.Sprintf("%d-%d", year, year+1)
}

// Renew extends a loan by the configured loan period
func (s *LibraryService) Renew(ctx context.Context, sc scope.Scope, borrowID int64) (*models.BorrowRecord, error) {
	record, err := s.libraryRepo.GetBorrowRecord(ctx, borrowID)
	if err != nil {
		return nil, err
	}
	if !sc.AllowsBorrower(record.StudentID) {
		return nil, apperrors.ErrBorrowNotFound
	}

	extend := time.Duration(s.cfg.LoanDays) * 24 * time.Hour
	return s.libraryRepo.Renew(ctx, borrowID, extend, s.cfg.RenewalLimit, time.Now())
}

// ListLoans retrieves borrow records narrowed by the caller's scope
func (s *LibraryService) ListLoans(ctx context.Context, sc scope.Scope, filter repositories.BorrowFilter) ([]*models.BorrowRecord, int64, error) {
	return s.libraryRepo.ListBorrowRecords(ctx, sc, filter)
}
