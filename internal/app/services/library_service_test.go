package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/config"
	"github.com/emre/campuserp/internal/pkg/apperrors"
)

// fakeLibraryStore mimics the loan transaction: it checks the borrow
// limit, overdue loans and duplicate titles against its in-memory records
// the way the row-locked insert does.
type fakeLibraryStore struct {
	nextID  int64
	records map[int64]*models.BorrowRecord
	books   map[int64]*models.Book
}

func newFakeLibraryStore() *fakeLibraryStore {
	return &fakeLibraryStore{
		records: make(map[int64]*models.BorrowRecord),
		books:   make(map[int64]*models.Book),
	}
}

func (f *fakeLibraryStore) CreateBook(ctx context.Context, book *models.Book) error {
	f.nextID++
	book.ID = f.nextID
	f.books[book.ID] = book
	return nil
}

func (f *fakeLibraryStore) GetBookByID(ctx context.Context, id int64) (*models.Book, error) {
	book, ok := f.books[id]
	if !ok {
		return nil, apperrors.ErrBookNotFound
	}
	return book, nil
}

func (f *fakeLibraryStore) ListBooks(ctx context.Context, filter repositories.BookFilter) ([]*models.Book, int64, error) {
	return nil, 0, nil
}

func (f *fakeLibraryStore) UpdateBook(ctx context.Context, book *models.Book) error { return nil }

func (f *fakeLibraryStore) DeleteBook(ctx context.Context, id int64) error { return nil }

func (f *fakeLibraryStore) Borrow(ctx context.Context, studentID, bookID int64, dueDate time.Time, borrowLimit int) (*models.BorrowRecord, error) {
	now := time.Now()
	active := 0
	for _, r := range f.records {
		if r.StudentID != studentID || r.Status != models.BorrowActive {
			continue
		}
		if r.BookID == bookID {
			return nil, apperrors.ErrAlreadyBorrowed
		}
		if r.IsOverdue(now) {
			return nil, apperrors.ErrOverdueLoansExist
		}
		active++
	}
	if active >= borrowLimit {
		return nil, apperrors.ErrBorrowLimitReached
	}

	f.nextID++
	record := &models.BorrowRecord{
		ID:         f.nextID,
		StudentID:  studentID,
		BookID:     bookID,
		BorrowedAt: now,
		DueDate:    dueDate,
		Status:     models.BorrowActive,
	}
	f.records[record.ID] = record
	return record, nil
}

func (f *fakeLibraryStore) GetBorrowRecord(ctx context.Context, id int64) (*models.BorrowRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, apperrors.ErrBorrowNotFound
	}
	return record, nil
}

func (f *fakeLibraryStore) Return(ctx context.Context, recordID int64, returnedAt time.Time, fine float64) (*models.BorrowRecord, error) {
	record, ok := f.records[recordID]
	if !ok || record.Status != models.BorrowActive {
		return nil, apperrors.ErrBorrowNotFound
	}
	record.Status = models.BorrowReturned
	record.ReturnedAt = &returnedAt
	record.Fine = fine
	return record, nil
}

func (f *fakeLibraryStore) Renew(ctx context.Context, recordID int64, extendBy time.Duration, renewalLimit int, now time.Time) (*models.BorrowRecord, error) {
	record, ok := f.records[recordID]
	if !ok || record.Status != models.BorrowActive {
		return nil, apperrors.ErrBorrowNotFound
	}
	if record.RenewalCount >= renewalLimit {
		return nil, apperrors.ErrRenewalLimitReached
	}
	record.RenewalCount++
	record.DueDate = record.DueDate.Add(extendBy)
	return record, nil
}

func (f *fakeLibraryStore) ListBorrowRecords(ctx context.Context, sc scope.Scope, filter repositories.BorrowFilter) ([]*models.BorrowRecord, int64, error) {
	return nil, 0, nil
}

type fakeFineBiller struct{ fees []*models.Fee }

func (f *fakeFineBiller) Create(ctx context.Context, fee *models.Fee) error {
	f.fees = append(f.fees, fee)
	return nil
}

func libraryService(store *fakeLibraryStore, biller *fakeFineBiller) *LibraryService {
	cfg := config.LibraryConfig{BorrowLimit: 5, LoanDays: 14, RenewalLimit: 2, FinePerDay: 2.5}
	return NewLibraryService(store, fakeStudentGetter{}, biller, cfg)
}

func TestBorrowLimitBoundary(t *testing.T) {
	store := newFakeLibraryStore()
	svc := libraryService(store, &fakeFineBiller{})
	librarian := scope.Scope{Kind: scope.KindLibrarian}

	for bookID := int64(1); bookID <= 5; bookID++ {
		_, err := svc.Borrow(context.Background(), librarian, &dto.BorrowRequest{StudentID: 1, BookID: bookID})
		require.NoError(t, err, "loan %d should fit under the limit", bookID)
	}

	_, err := svc.Borrow(context.Background(), librarian, &dto.BorrowRequest{StudentID: 1, BookID: 6})
	assert.ErrorIs(t, err, apperrors.ErrBorrowLimitReached)

	// another student is unaffected
	_, err = svc.Borrow(context.Background(), librarian, &dto.BorrowRequest{StudentID: 2, BookID: 6})
	assert.NoError(t, err)
}

func TestBorrowBlockedByOverdueLoan(t *testing.T) {
	store := newFakeLibraryStore()
	svc := libraryService(store, &fakeFineBiller{})
	librarian := scope.Scope{Kind: scope.KindLibrarian}

	store.records[1] = &models.BorrowRecord{
		ID: 1, StudentID: 1, BookID: 1,
		DueDate: time.Now().AddDate(0, 0, -3),
		Status:  models.BorrowActive,
	}

	_, err := svc.Borrow(context.Background(), librarian, &dto.BorrowRequest{StudentID: 1, BookID: 2})
	assert.ErrorIs(t, err, apperrors.ErrOverdueLoansExist)
}

func TestBorrowRejectsDuplicateTitle(t *testing.T) {
	store := newFakeLibraryStore()
	svc := libraryService(store, &fakeFineBiller{})
	librarian := scope.Scope{Kind: scope.KindLibrarian}

	_, err := svc.Borrow(context.Background(), librarian, &dto.BorrowRequest{StudentID: 1, BookID: 3})
	require.NoError(t, err)

	_, err = svc.Borrow(context.Background(), librarian, &dto.BorrowRequest{StudentID: 1, BookID: 3})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyBorrowed)
}

func TestBorrowStudentScopeForcesOwnID(t *testing.T) {
	store := newFakeLibraryStore()
	svc := libraryService(store, &fakeFineBiller{})
	sc := scope.Scope{Kind: scope.KindStudent, UserID: 5, StudentID: 42}

	record, err := svc.Borrow(context.Background(), sc, &dto.BorrowRequest{StudentID: 7, BookID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(42), record.StudentID)
}

func TestReturnFreesBorrowSlot(t *testing.T) {
	store := newFakeLibraryStore()
	svc := libraryService(store, &fakeFineBiller{})
	librarian := scope.Scope{Kind: scope.KindLibrarian}

	var last *models.BorrowRecord
	for bookID := int64(1); bookID <= 5; bookID++ {
		record, err := svc.Borrow(context.Background(), librarian, &dto.BorrowRequest{StudentID: 1, BookID: bookID})
		require.NoError(t, err)
		last = record
	}
	_, err := svc.Borrow(context.Background(), librarian, &dto.BorrowRequest{StudentID: 1, BookID: 6})
	require.ErrorIs(t, err, apperrors.ErrBorrowLimitReached)

	_, err = svc.Return(context.Background(), librarian, last.ID)
	require.NoError(t, err)

	_, err = svc.Borrow(context.Background(), librarian, &dto.BorrowRequest{StudentID: 1, BookID: 6})
	assert.NoError(t, err)
}

func TestReturnBillsOverdueFine(t *testing.T) {
	store := newFakeLibraryStore()
	biller := &fakeFineBiller{}
	svc := libraryService(store, biller)
	librarian := scope.Scope{Kind: scope.KindLibrarian}

	store.books[1] = &models.Book{ID: 1, Title: "Structure and Interpretation"}
	store.records[1] = &models.BorrowRecord{
		ID: 1, StudentID: 1, BookID: 1,
		DueDate: time.Now().AddDate(0, 0, -3),
		Status:  models.BorrowActive,
	}

	result, err := svc.Return(context.Background(), librarian, 1)
	require.NoError(t, err)

	assert.True(t, result.IsOverdue)
	assert.Equal(t, 3, result.DaysOverdue)
	assert.InDelta(t, 7.5, result.Fine, 0.001)

	require.Len(t, biller.fees, 1)
	fee := biller.fees[0]
	assert.Equal(t, int64(1), fee.StudentID)
	assert.Equal(t, models.FeeLibraryFine, fee.Category)
	assert.InDelta(t, 7.5, fee.AmountTotal, 0.001)
}

func TestReturnOnTimeBillsNothing(t *testing.T) {
	store := newFakeLibraryStore()
	biller := &fakeFineBiller{}
	svc := libraryService(store, biller)
	librarian := scope.Scope{Kind: scope.KindLibrarian}

	store.records[1] = &models.BorrowRecord{
		ID: 1, StudentID: 1, BookID: 1,
		DueDate: time.Now().AddDate(0, 0, 7),
		Status:  models.BorrowActive,
	}

	result, err := svc.Return(context.Background(), librarian, 1)
	require.NoError(t, err)

	assert.False(t, result.IsOverdue)
	assert.Zero(t, result.Fine)
	assert.Empty(t, biller.fees)
}

func TestReturnDeniedForForeignStudent(t *testing.T) {
	store := newFakeLibraryStore()
	svc := libraryService(store, &fakeFineBiller{})

	store.records[1] = &models.BorrowRecord{
		ID: 1, StudentID: 7, BookID: 1,
		DueDate: time.Now().AddDate(0, 0, 7),
		Status:  models.BorrowActive,
	}

	sc := scope.Scope{Kind: scope.KindStudent, StudentID: 42}
	_, err := svc.Return(context.Background(), sc, 1)
	assert.ErrorIs(t, err, apperrors.ErrBorrowNotFound)

	_, err = svc.Return(context.Background(), scope.Scope{Kind: scope.KindLibrarian}, 1)
	assert.NoError(t, err)
}

func TestRenewLimitBoundary(t *testing.T) {
	store := newFakeLibraryStore()
	svc := libraryService(store, &fakeFineBiller{})
	librarian := scope.Scope{Kind: scope.KindLibrarian}

	store.records[1] = &models.BorrowRecord{
		ID: 1, StudentID: 1, BookID: 1,
		DueDate: time.Now().AddDate(0, 0, 7),
		Status:  models.BorrowActive,
	}

	for i := 0; i < 2; i++ {
		_, err := svc.Renew(context.Background(), librarian, 1)
		require.NoError(t, err)
	}

	_, err := svc.Renew(context.Background(), librarian, 1)
	assert.ErrorIs(t, err, apperrors.ErrRenewalLimitReached)
}
