package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/campuserp/internal/app/audit"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/services"
	"github.com/emre/campuserp/internal/middleware"
	"github.com/emre/campuserp/internal/pkg/helpers"
)

// TimetableController handles timetable drafting, approval and schedules
type TimetableController struct {
	timetableService *services.TimetableService
}

// NewTimetableController creates a new TimetableController
func NewTimetableController(timetableService *services.TimetableService) *TimetableController {
	return &TimetableController{timetableService: timetableService}
}

// CreateTimetable creates a draft timetable with the next version number
// for its department, semester, year, type and batch
func (c *TimetableController) CreateTimetable(ctx *gin.Context) {
	var req dto.CreateTimetableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	createdBy := ctx.GetInt64(middleware.ContextUserID)
	timetable, err := c.timetableService.Create(ctx, createdBy, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "timetable.create", "timetable", timetable.ID, "Created draft timetable")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(timetable, "Timetable created"))
}

// GetTimetable retrieves a timetable with its periods
func (c *TimetableController) GetTimetable(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	timetable, err := c.timetableService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(timetable, "Timetable retrieved"))
}

// ListTimetables retrieves timetables with filtering and pagination
func (c *TimetableController) ListTimetables(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := repositories.TimetableFilter{
		DepartmentID: queryInt64(ctx, "departmentId"),
		Semester:     queryInt(ctx, "semester"),
		AcademicYear: ctx.Query("academicYear"),
		Status:       ctx.Query("status"),
		ActiveOnly:   ctx.Query("active") == "true",
		Page:         page,
		Size:         size,
	}

	timetables, totalItems, err := c.timetableService.List(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(timetables, "Timetables retrieved", pagination))
}

// UpdateTimetable replaces a draft timetable's periods
func (c *TimetableController) UpdateTimetable(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateTimetableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	timetable, err := c.timetableService.Update(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "timetable.update", "timetable", id, "Replaced timetable periods")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(timetable, "Timetable updated"))
}

// SubmitTimetable moves a draft into the approval queue
func (c *TimetableController) SubmitTimetable(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.timetableService.SubmitForApproval(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "timetable.submit", "timetable", id, "Submitted timetable for approval")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Timetable submitted for approval"))
}

// ApproveTimetable approves a pending timetable and makes it the single
// active one for its key
func (c *TimetableController) ApproveTimetable(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	timetable, err := c.timetableService.Approve(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "timetable.approve", "timetable", id, "Approved and activated timetable")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(timetable, "Timetable approved"))
}

// RejectTimetable sends a pending timetable back to draft
func (c *TimetableController) RejectTimetable(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.timetableService.Reject(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "timetable.reject", "timetable", id, "Rejected timetable back to draft")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Timetable rejected"))
}

// DeleteTimetable removes a draft timetable
func (c *TimetableController) DeleteTimetable(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.timetableService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "timetable.delete", "timetable", id, "Deleted draft timetable")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Timetable deleted"))
}

// FacultyConflicts lists faculty double-booked across active timetables
func (c *TimetableController) FacultyConflicts(ctx *gin.Context) {
	conflicts, err := c.timetableService.FacultyConflicts(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(conflicts, "Conflicts retrieved"))
}

// MySchedule returns the caller's personal weekly schedule derived from
// active timetables
func (c *TimetableController) MySchedule(ctx *gin.Context) {
	periods, err := c.timetableService.MySchedule(ctx, middleware.GetScope(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(periods, "Schedule retrieved"))
}
