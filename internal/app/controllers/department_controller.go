package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/campuserp/internal/app/audit"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/services"
	"github.com/emre/campuserp/internal/middleware"
	"github.com/emre/campuserp/internal/pkg/helpers"
)

// DepartmentController handles department management
type DepartmentController struct {
	departmentService *services.DepartmentService
}

// NewDepartmentController creates a new DepartmentController
func NewDepartmentController(departmentService *services.DepartmentService) *DepartmentController {
	return &DepartmentController{departmentService: departmentService}
}

// CreateDepartment creates a department
func (c *DepartmentController) CreateDepartment(ctx *gin.Context) {
	var req dto.CreateDepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	department, err := c.departmentService.Create(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "department.create", "department", department.ID, "Created department "+department.Code)
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(department, "Department created"))
}

// GetDepartment retrieves a department by ID
func (c *DepartmentController) GetDepartment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	department, err := c.departmentService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(department, "Department retrieved"))
}

// ListDepartments retrieves departments with optional name/code search
func (c *DepartmentController) ListDepartments(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	departments, totalItems, err := c.departmentService.List(ctx, ctx.Query("search"), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(departments, "Departments retrieved", pagination))
}

// UpdateDepartment updates a department's editable fields
func (c *DepartmentController) UpdateDepartment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateDepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	department, err := c.departmentService.Update(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "department.update", "department", id, "Updated department "+department.Code)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(department, "Department updated"))
}

// DeleteDepartment removes a department without dependent rows
func (c *DepartmentController) DeleteDepartment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.departmentService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "department.delete", "department", id, "Deleted department")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Department deleted"))
}
