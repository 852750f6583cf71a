package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/campuserp/internal/app/audit"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/services"
	"github.com/emre/campuserp/internal/middleware"
	"github.com/emre/campuserp/internal/pkg/helpers"
)

// FeeController handles fee charges and payments
type FeeController struct {
	feeService *services.FeeService
}

// NewFeeController creates a new FeeController
func NewFeeController(feeService *services.FeeService) *FeeController {
	return &FeeController{feeService: feeService}
}

// CreateFee creates a charge for a student
func (c *FeeController) CreateFee(ctx *gin.Context) {
	var req dto.CreateFeeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	fee, err := c.feeService.Create(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "fee.create", "fee", fee.ID,
		fmt.Sprintf("Created %s charge of %.2f for student %d", fee.Category, fee.AmountTotal, fee.StudentID))
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(fee, "Fee created"))
}

// GetFee retrieves a fee with its derived status
func (c *FeeController) GetFee(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	fee, err := c.feeService.Get(ctx, middleware.GetScope(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(fee, "Fee retrieved"))
}

// ListFees retrieves fees narrowed by the caller's scope
func (c *FeeController) ListFees(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := repositories.FeeFilter{
		StudentID:    queryInt64(ctx, "studentId"),
		Category:     ctx.Query("category"),
		AcademicYear: ctx.Query("academicYear"),
		Page:         page,
		Size:         size,
	}

	fees, totalItems, err := c.feeService.List(ctx, middleware.GetScope(ctx), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(fees, "Fees retrieved", pagination))
}

// PayFee records a payment against a fee. Overpayment becomes an excess
// credit entry.
func (c *FeeController) PayFee(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.PayFeeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	fee, err := c.feeService.Pay(ctx, middleware.GetScope(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "fee.pay", "fee", id, fmt.Sprintf("Recorded %s payment of %.2f", req.Method, req.Amount))
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(fee, "Payment recorded"))
}

// ListPayments retrieves a fee's payment history
func (c *FeeController) ListPayments(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	payments, err := c.feeService.Payments(ctx, middleware.GetScope(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(payments, "Payments retrieved"))
}

// Summary returns the fee aggregation for the caller: a student sees
// their own totals, staff see collection-wide totals
func (c *FeeController) Summary(ctx *gin.Context) {
	summary, err := c.feeService.Summary(ctx, middleware.GetScope(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(summary, "Fee summary retrieved"))
}
