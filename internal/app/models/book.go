package models

import "time"

// Book is a library catalog item with copy counts
type Book struct {
	ID              int64  `json:"id" db:"id"`
	ISBN            string `json:"isbn" db:"isbn"`
	Title           string `json:"title" db:"title"`
	Author          string `json:"author" db:"author"`
	Category        string `json:"category" db:"category"`
	TotalCopies     int    `json:"totalCopies" db:"total_copies"`
	AvailableCopies int    `json:"availableCopies" db:"available_copies"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// BorrowStatus is the lifecycle state of a loan
type BorrowStatus string

const (
	BorrowActive   BorrowStatus = "ACTIVE"
	BorrowReturned BorrowStatus = "RETURNED"
)

// BorrowRecord ties a student to a book copy with loan dates, renewal count
// and fine derivation computed at return time.
type BorrowRecord struct {
	ID           int64        `json:"id" db:"id"`
	StudentID    int64        `json:"studentId" db:"student_id"`
	BookID       int64        `json:"bookId" db:"book_id"`
	BorrowedAt   time.Time    `json:"borrowedAt" db:"borrowed_at"`
	DueDate      time.Time    `json:"dueDate" db:"due_date"`
	ReturnedAt   *time.Time   `json:"returnedAt,omitempty" db:"returned_at"`
	RenewalCount int          `json:"renewalCount" db:"renewal_count"`
	Status       BorrowStatus `json:"status" db:"status"`
	Fine         float64      `json:"fine" db:"fine"`

	Student *Student `json:"student,omitempty"`
	Book    *Book    `json:"book,omitempty"`
}

// IsOverdue reports whether an active loan is past its due date at time now.
func (r *BorrowRecord) IsOverdue(now time.Time) bool {
	return r.Status == BorrowActive && now.After(r.DueDate)
}

// DaysOverdue returns the number of whole days the loan is past due at
// time now; zero when not overdue.
func (r *BorrowRecord) DaysOverdue(now time.Time) int {
	if !now.After(r.DueDate) {
		return 0
	}
	return int(now.Sub(r.DueDate).Hours() / 24)
}

// FineAt computes the fine at return time: days late times the per-day rate.
func (r *BorrowRecord) FineAt(now time.Time, perDayRate float64) float64 {
	return float64(r.DaysOverdue(now)) * perDayRate
}
