package dto

import "github.com/emre/campuserp/internal/app/models"

// CreateFeeRequest creates a charge for a student
type CreateFeeRequest struct {
	StudentID    int64              `json:"studentId" binding:"required,min=1"`
	Category     models.FeeCategory `json:"category" binding:"required,oneof=TUITION HOSTEL LIBRARY_FINE EXAM"`
	Description  string             `json:"description" binding:"required"`
	AmountTotal  float64            `json:"amountTotal" binding:"required,gt=0"`
	DueDate      string             `json:"dueDate" binding:"required"` // YYYY-MM-DD
	AcademicYear string             `json:"academicYear" binding:"required"`
}

// PayFeeRequest records a payment against a fee
type PayFeeRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Method string  `json:"method" binding:"required"`
}

// FeeView is a fee with its derived fields attached
type FeeView struct {
	models.Fee
	AmountDue float64          `json:"amountDue"`
	Status    models.FeeStatus `json:"status"`
}

// FeeSummary is the fee collection aggregation
type FeeSummary struct {
	TotalBilled      float64 `json:"totalBilled"`
	TotalCollected   float64 `json:"totalCollected"`
	TotalOutstanding float64 `json:"totalOutstanding"`
	OverdueCount     int64   `json:"overdueCount"`
}
