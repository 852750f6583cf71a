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

// EnrollmentController handles course enrollment and grading
type EnrollmentController struct {
	enrollmentService *services.EnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService *services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{enrollmentService: enrollmentService}
}

// Enroll registers a student into a course, checking prerequisites and
// capacity
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	var req dto.CreateEnrollmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	enrollment, err := c.enrollmentService.Enroll(ctx, middleware.GetScope(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "enrollment.create", "enrollment", enrollment.ID,
		fmt.Sprintf("Enrolled student %d into course %d", enrollment.StudentID, enrollment.CourseID))
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(enrollment, "Enrollment created"))
}

// GetEnrollment retrieves a single enrollment visible to the caller
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	enrollment, err := c.enrollmentService.Get(ctx, middleware.GetScope(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(enrollment, "Enrollment retrieved"))
}

// ListEnrollments retrieves enrollments narrowed by the caller's scope
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := repositories.EnrollmentFilter{
		StudentID:    queryInt64(ctx, "studentId"),
		CourseID:     queryInt64(ctx, "courseId"),
		AcademicYear: ctx.Query("academicYear"),
		Status:       ctx.Query("status"),
		Page:         page,
		Size:         size,
	}

	enrollments, totalItems, err := c.enrollmentService.List(ctx, middleware.GetScope(ctx), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(enrollments, "Enrollments retrieved", pagination))
}

// UpdateStatus changes an enrollment's status. Students may only withdraw
// their own active enrollments.
func (c *EnrollmentController) UpdateStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateEnrollmentStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	enrollment, err := c.enrollmentService.UpdateStatus(ctx, middleware.GetScope(ctx), id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "enrollment.status", "enrollment", id, fmt.Sprintf("Set enrollment status to %s", req.Status))
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(enrollment, "Enrollment status updated"))
}

// SubmitGrade records a grade; a passing grade completes the enrollment
// and credits the student
func (c *EnrollmentController) SubmitGrade(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SubmitGradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	enrollment, err := c.enrollmentService.SubmitGrade(ctx, middleware.GetScope(ctx), id, req.Grade)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "enrollment.grade", "enrollment", id, fmt.Sprintf("Submitted grade %s", req.Grade))
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(enrollment, "Grade submitted"))
}
