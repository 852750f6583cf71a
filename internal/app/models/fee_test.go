package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeeAmountDue(t *testing.T) {
	fee := &Fee{AmountTotal: 1000, AmountPaid: 400}
	assert.Equal(t, 600.0, fee.AmountDue())

	fee.AmountPaid = 1000
	assert.Equal(t, 0.0, fee.AmountDue())

	// Overpayment never reports negative due.
	fee.AmountPaid = 1200
	assert.Equal(t, 0.0, fee.AmountDue())
}

func TestFeeStatus(t *testing.T) {
	due := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	beforeDue := due.AddDate(0, 0, -10)
	afterDue := due.AddDate(0, 0, 10)

	tests := []struct {
		name string
		paid float64
		now  time.Time
		want FeeStatus
	}{
		{"unpaid before due date", 0, beforeDue, FeePending},
		{"unpaid after due date", 0, afterDue, FeeOverdue},
		{"partially paid before due date", 400, beforeDue, FeePartial},
		{"partial payment masks overdue", 400, afterDue, FeePartial},
		{"fully paid", 1000, afterDue, FeePaid},
		{"overpaid", 1200, afterDue, FeePaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee := &Fee{AmountTotal: 1000, AmountPaid: tt.paid, DueDate: due}
			assert.Equal(t, tt.want, fee.Status(tt.now))
		})
	}
}

func TestExcessCreditFeeIsPaid(t *testing.T) {
	// Credit rows carry a negative total and zero paid; they must never
	// surface as overdue.
	fee := &Fee{
		Category:    FeeExcessCredit,
		AmountTotal: -250,
		AmountPaid:  0,
		DueDate:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, FeePaid, fee.Status(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0.0, fee.AmountDue())
}
