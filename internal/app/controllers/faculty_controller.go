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

// FacultyController handles faculty profile and dashboard endpoints
type FacultyController struct {
	facultyService *services.FacultyService
}

// NewFacultyController creates a new FacultyController
func NewFacultyController(facultyService *services.FacultyService) *FacultyController {
	return &FacultyController{facultyService: facultyService}
}

// ListFaculty retrieves faculty profiles with filtering and pagination
func (c *FacultyController) ListFaculty(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := repositories.FacultyFilter{
		DepartmentID: queryInt64(ctx, "departmentId"),
		Designation:  ctx.Query("designation"),
		Search:       ctx.Query("search"),
		Page:         page,
		Size:         size,
	}

	members, totalItems, err := c.facultyService.List(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(members, "Faculty retrieved", pagination))
}

// GetFaculty retrieves a single faculty profile
func (c *FacultyController) GetFaculty(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	member, err := c.facultyService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(member, "Faculty member retrieved"))
}

// UpdateFaculty updates a faculty member's professional fields
func (c *FacultyController) UpdateFaculty(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req services.UpdateFacultyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	member, err := c.facultyService.Update(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "faculty.update", "faculty", id, "Updated faculty profile "+member.EmployeeID)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(member, "Faculty member updated"))
}

// Dashboard returns the authenticated faculty member's dashboard
func (c *FacultyController) Dashboard(ctx *gin.Context) {
	dashboard, err := c.facultyService.Dashboard(ctx, middleware.GetScope(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dashboard, "Dashboard retrieved"))
}
