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

// CourseController handles the course catalog
type CourseController struct {
	courseService *services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService *services.CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

// CreateCourse creates a course offering
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	course, err := c.courseService.Create(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "course.create", "course", course.ID, "Created course "+course.Code)
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(course, "Course created"))
}

// GetCourse retrieves a course with its enrollment count and links
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	course, err := c.courseService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course, "Course retrieved"))
}

// ListCourses retrieves courses with filtering and pagination
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := repositories.CourseFilter{
		DepartmentID: queryInt64(ctx, "departmentId"),
		Semester:     queryInt(ctx, "semester"),
		Search:       ctx.Query("search"),
		Page:         page,
		Size:         size,
	}

	courses, totalItems, err := c.courseService.List(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(courses, "Courses retrieved", pagination))
}

// UpdateCourse updates a course. Faculty may only update courses they
// coordinate or teach.
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	course, err := c.courseService.Update(ctx, middleware.GetScope(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "course.update", "course", id, "Updated course "+course.Code)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course, "Course updated"))
}

// DeleteCourse removes a course without enrollments
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.courseService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "course.delete", "course", id, "Deleted course")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Course deleted"))
}
