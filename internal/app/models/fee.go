package models

import "time"

// FeeStatus is derived from amounts and the due date, never stored as input
type FeeStatus string

const (
	FeePaid    FeeStatus = "PAID"
	FeePartial FeeStatus = "PARTIAL"
	FeeOverdue FeeStatus = "OVERDUE"
	FeePending FeeStatus = "PENDING"
)

// FeeCategory enumerates charge kinds. Excess credit rows carry a negative
// amount and offset future charges.
type FeeCategory string

const (
	FeeTuition      FeeCategory = "TUITION"
	FeeHostel       FeeCategory = "HOSTEL"
	FeeLibraryFine  FeeCategory = "LIBRARY_FINE"
	FeeExam         FeeCategory = "EXAM"
	FeeExcessCredit FeeCategory = "EXCESS_CREDIT"
)

// Fee is one charge instance for a student. Due is always total minus paid,
// floored at zero.
type Fee struct {
	ID           int64       `json:"id" db:"id"`
	StudentID    int64       `json:"studentId" db:"student_id"`
	Category     FeeCategory `json:"category" db:"category"`
	Description  string      `json:"description" db:"description"`
	AmountTotal  float64     `json:"amountTotal" db:"amount_total"`
	AmountPaid   float64     `json:"amountPaid" db:"amount_paid"`
	DueDate      time.Time   `json:"dueDate" db:"due_date"`
	AcademicYear string      `json:"academicYear" db:"academic_year"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`

	Student *Student `json:"student,omitempty"`
}

// AmountDue returns the outstanding amount, never negative.
func (f *Fee) AmountDue() float64 {
	due := f.AmountTotal - f.AmountPaid
	if due < 0 {
		return 0
	}
	return due
}

// Status derives the fee status from amounts and the due date at time now.
func (f *Fee) Status(now time.Time) FeeStatus {
	switch {
	case f.AmountPaid >= f.AmountTotal:
		return FeePaid
	case f.AmountPaid > 0:
		return FeePartial
	case now.After(f.DueDate):
		return FeeOverdue
	default:
		return FeePending
	}
}
