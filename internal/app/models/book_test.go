package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBorrowRecordIsOverdue(t *testing.T) {
	due := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)

	active := &BorrowRecord{Status: BorrowActive, DueDate: due}
	assert.False(t, active.IsOverdue(due.AddDate(0, 0, -1)))
	assert.False(t, active.IsOverdue(due))
	assert.True(t, active.IsOverdue(due.AddDate(0, 0, 1)))

	returned := &BorrowRecord{Status: BorrowReturned, DueDate: due}
	assert.False(t, returned.IsOverdue(due.AddDate(0, 0, 30)))
}

func TestBorrowRecordDaysOverdue(t *testing.T) {
	due := time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)
	rec := &BorrowRecord{Status: BorrowActive, DueDate: due}

	assert.Equal(t, 0, rec.DaysOverdue(due))
	assert.Equal(t, 0, rec.DaysOverdue(due.Add(12*time.Hour)))
	assert.Equal(t, 1, rec.DaysOverdue(due.Add(24*time.Hour)))
	assert.Equal(t, 7, rec.DaysOverdue(due.AddDate(0, 0, 7)))
}

func TestBorrowRecordFineAt(t *testing.T) {
	due := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
	rec := &BorrowRecord{Status: BorrowActive, DueDate: due}

	assert.Equal(t, 0.0, rec.FineAt(due, 2.5))
	assert.Equal(t, 2.5, rec.FineAt(due.AddDate(0, 0, 1), 2.5))
	assert.Equal(t, 25.0, rec.FineAt(due.AddDate(0, 0, 10), 2.5))
}
