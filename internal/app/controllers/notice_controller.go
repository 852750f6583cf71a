package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emre/campuserp/internal/app/audit"
	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/services"
	"github.com/emre/campuserp/internal/middleware"
	"github.com/emre/campuserp/internal/pkg/helpers"
)

// NoticeController handles the notice board
type NoticeController struct {
	noticeService *services.NoticeService
}

// NewNoticeController creates a new NoticeController
func NewNoticeController(noticeService *services.NoticeService) *NoticeController {
	return &NoticeController{noticeService: noticeService}
}

// CreateNotice publishes an announcement. The request is multipart so an
// attachment can ride along with the payload fields.
func (c *NoticeController) CreateNotice(ctx *gin.Context) {
	input, errDetail := parseNoticeForm(ctx)
	if errDetail != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errDetail))
		return
	}

	// The attachment is optional; FormFile errors just mean none was sent.
	if file, err := ctx.FormFile("attachment"); err == nil {
		input.Attachment = file
	}

	authorID := ctx.GetInt64(middleware.ContextUserID)
	notice, err := c.noticeService.Create(ctx, authorID, input)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "notice.create", "notice", notice.ID, "Published notice "+notice.Title)
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(notice, "Notice published"))
}

// parseNoticeForm reads the shared multipart fields of a notice payload
func parseNoticeForm(ctx *gin.Context) (*services.CreateNoticeInput, *dto.ErrorDetail) {
	title := ctx.PostForm("title")
	body := ctx.PostForm("body")
	if title == "" || body == "" {
		return nil, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Title and body are required")
	}

	input := &services.CreateNoticeInput{
		Title:    title,
		Body:     body,
		Priority: models.NoticePriority(ctx.PostForm("priority")),
	}

	for _, role := range ctx.PostFormArray("targetRoles") {
		input.TargetRoles = append(input.TargetRoles, models.Role(role))
	}
	for _, raw := range ctx.PostFormArray("targetDepartmentIds") {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			return nil, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid target department ID").WithDetails(raw)
		}
		input.TargetDepts = append(input.TargetDepts, id)
	}

	if raw := ctx.PostForm("expiresAt"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "expiresAt must be RFC3339")
		}
		input.ExpiresAt = &t
	}

	return input, nil
}

// ListNotices retrieves notices addressed to the caller; administrators
// see every notice regardless of status or targeting
func (c *NoticeController) ListNotices(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := repositories.NoticeFilter{
		Priority: ctx.Query("priority"),
		Status:   ctx.Query("status"),
		Search:   ctx.Query("search"),
		Page:     page,
		Size:     size,
	}

	notices, totalItems, err := c.noticeService.List(ctx, middleware.GetScope(ctx), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(notices, "Notices retrieved", pagination))
}

// GetNotice retrieves a notice and records the view
func (c *NoticeController) GetNotice(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	notice, err := c.noticeService.Get(ctx, middleware.GetScope(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(notice, "Notice retrieved"))
}

// MarkRead logs that the caller read a notice
func (c *NoticeController) MarkRead(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.noticeService.MarkRead(ctx, middleware.GetScope(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Notice marked as read"))
}

// Stats returns a notice's view log for its author or an administrator
func (c *NoticeController) Stats(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	stats, err := c.noticeService.Stats(ctx, middleware.GetScope(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats, "Notice statistics retrieved"))
}

// UpdateNotice edits an announcement. Faculty may only edit their own.
func (c *NoticeController) UpdateNotice(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateNoticeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	input := &services.UpdateNoticeInput{
		Title:       req.Title,
		Body:        req.Body,
		Priority:    req.Priority,
		TargetRoles: req.TargetRoles,
		TargetDepts: req.TargetDepts,
	}
	if req.ExpiresAt != nil {
		t, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "expiresAt must be RFC3339")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		input.ExpiresAt = &t
	}

	notice, err := c.noticeService.Update(ctx, middleware.GetScope(ctx), id, input)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "notice.update", "notice", id, "Updated notice "+notice.Title)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(notice, "Notice updated"))
}

// ArchiveNotice takes a notice off the board without deleting it
func (c *NoticeController) ArchiveNotice(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.noticeService.Archive(ctx, middleware.GetScope(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "notice.archive", "notice", id, "Archived notice")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Notice archived"))
}

// DeleteNotice removes a notice and its attachment
func (c *NoticeController) DeleteNotice(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.noticeService.Delete(ctx, middleware.GetScope(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "notice.delete", "notice", id, "Deleted notice")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Notice deleted"))
}
