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

// StudentController handles student profile and dashboard endpoints
type StudentController struct {
	studentService *services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

// ListStudents retrieves student profiles visible to the caller. Faculty
// see only students enrolled in their courses; students see themselves.
func (c *StudentController) ListStudents(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := repositories.StudentFilter{
		DepartmentID: queryInt64(ctx, "departmentId"),
		Semester:     queryInt(ctx, "semester"),
		Batch:        ctx.Query("batch"),
		Search:       ctx.Query("search"),
		Page:         page,
		Size:         size,
	}

	students, totalItems, err := c.studentService.List(ctx, middleware.GetScope(ctx), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(students, "Students retrieved", pagination))
}

// GetStudent retrieves a single student profile
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.Get(ctx, middleware.GetScope(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, "Student retrieved"))
}

// UpdateStudent updates a student's academic fields
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req services.UpdateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	student, err := c.studentService.Update(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "student.update", "student", id, "Updated student profile "+student.RollNumber)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, "Student updated"))
}

// Dashboard returns the authenticated student's self-service dashboard
func (c *StudentController) Dashboard(ctx *gin.Context) {
	dashboard, err := c.studentService.Dashboard(ctx, middleware.GetScope(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dashboard, "Dashboard retrieved"))
}
