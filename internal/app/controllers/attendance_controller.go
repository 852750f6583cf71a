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

// AttendanceController handles attendance marking and reporting
type AttendanceController struct {
	attendanceService *services.AttendanceService
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(attendanceService *services.AttendanceService) *AttendanceController {
	return &AttendanceController{attendanceService: attendanceService}
}

// Mark records a full attendance sheet for one course, date and period.
// Re-marking the same sheet overwrites the previous statuses.
func (c *AttendanceController) Mark(ctx *gin.Context) {
	var req dto.MarkAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	records, err := c.attendanceService.Mark(ctx, middleware.GetScope(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "attendance.mark", "course", req.CourseID,
		fmt.Sprintf("Marked attendance for %s period %d (%d students)", req.Date, req.Period, len(req.Entries)))
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(records, "Attendance marked"))
}

// ListAttendance retrieves attendance records narrowed by the caller's
// scope
func (c *AttendanceController) ListAttendance(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := repositories.AttendanceFilter{
		StudentID: queryInt64(ctx, "studentId"),
		CourseID:  queryInt64(ctx, "courseId"),
		From:      queryDate(ctx, "from"),
		To:        queryDate(ctx, "to"),
		Page:      page,
		Size:      size,
	}

	records, totalItems, err := c.attendanceService.List(ctx, middleware.GetScope(ctx), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(records, "Attendance retrieved", pagination))
}

// Report aggregates per-student attendance for a course over a date range
func (c *AttendanceController) Report(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}

	report, err := c.attendanceService.Report(ctx, middleware.GetScope(ctx), courseID,
		queryDate(ctx, "from"), queryDate(ctx, "to"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report, "Attendance report generated"))
}
