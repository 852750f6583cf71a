package services

import (
	"context"
	"time"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/pkg/apperrors"
)

// FeeService handles fee billing and payment operations
type FeeService struct {
	feeRepo     *repositories.FeeRepository
	studentRepo *repositories.StudentRepository
}

// NewFeeService creates a new fee service
func NewFeeService(feeRepo *repositories.FeeRepository, studentRepo *repositories.StudentRepository) *FeeService {
	return &FeeService{
		feeRepo:     feeRepo,
		studentRepo: studentRepo,
	}
}

func toFeeView(fee *models.Fee, now time.Time) *dto.FeeView {
	return &dto.FeeView{
		Fee:       *fee,
		AmountDue: fee.AmountDue(),
		Status:    fee.Status(now),
	}
}

// Create bills a student
func (s *FeeService) Create(ctx context.Context, req *dto.CreateFeeRequest) (*dto.FeeView, error) {
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, apperrors.NewValidationError("dueDate must be YYYY-MM-DD")
	}
	if _, err := s.studentRepo.GetByID(ctx, req.StudentID); err != nil {
		return nil, err
	}

	fee := &models.Fee{
		StudentID:    req.StudentID,
		Category:     req.Category,
		Description:  req.Description,
		AmountTotal:  req.AmountTotal,
		DueDate:      dueDate,
		AcademicYear: req.AcademicYear,
	}
	if err := s.feeRepo.Create(ctx, fee); err != nil {
		return nil, err
	}
	return toFeeView(fee, time.Now()), nil
}

// Get retrieves one fee, limited to records the caller's scope allows
func (s *FeeService) Get(ctx context.Context, sc scope.Scope, id int64) (*dto.FeeView, error) {
	fee, err := s.feeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sc.AllowsStudent(fee.StudentID) {
		return nil, apperrors.ErrFeeNotFound
	}
	return toFeeView(fee, time.Now()), nil
}

// List retrieves fees narrowed by the caller's scope, with derived status
// attached to each row
func (s *FeeService) List(ctx context.Context, sc scope.Scope, filter repositories.FeeFilter) ([]*dto.FeeView, int64, error) {
	fees, total, err := s.feeRepo.List(ctx, sc, filter)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	views := make([]*dto.FeeView, 0, len(fees))
	for _, fee := range fees {
		views = append(views, toFeeView(fee, now))
	}
	return views, total, nil
}

// Pay applies a payment. Students pay only their own fees; overpayment
// books an excess credit row.
func (s *FeeService) Pay(ctx context.Context, sc scope.Scope, feeID int64, req *dto.PayFeeRequest) (*dto.FeeView, error) {
	fee, err := s.feeRepo.GetByID(ctx, feeID)
	if err != nil {
		return nil, err
	}
	if !sc.AllowsStudent(fee.StudentID) {
		return nil, apperrors.ErrFeeNotFound
	}

	updated, err := s.feeRepo.Pay(ctx, feeID, req.Amount, req.Method)
	if err != nil {
		return nil, err
	}
	return toFeeView(updated, time.Now()), nil
}

// Payments lists the recorded payments for a fee
func (s *FeeService) Payments(ctx context.Context, sc scope.Scope, feeID int64) ([]*repositories.FeePayment, error) {
	fee, err := s.feeRepo.GetByID(ctx, feeID)
	if err != nil {
		return nil, err
	}
	if !sc.AllowsStudent(fee.StudentID) {
		return nil, apperrors.ErrFeeNotFound
	}
	return s.feeRepo.Payments(ctx, feeID)
}

// Summary aggregates fee collection. Admins see the system totals; a
// student sees their own.
func (s *FeeService) Summary(ctx context.Context, sc scope.Scope) (*dto.FeeSummary, error) {
	if sc.Kind == scope.KindStudent {
		total, paid, due, err := s.feeRepo.SummaryByStudent(ctx, sc.StudentID)
		if err != nil {
			return nil, err
		}
		return &dto.FeeSummary{
			TotalBilled:      total,
			TotalCollected:   paid,
			TotalOutstanding: due,
		}, nil
	}

	billed, collected, outstanding, overdueCount, err := s.feeRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.FeeSummary{
		TotalBilled:      billed,
		TotalCollected:   collected,
		TotalOutstanding: outstanding,
		OverdueCount:     overdueCount,
	}, nil
}
