package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/services"
	"github.com/emre/campuserp/internal/middleware"
	"github.com/emre/campuserp/internal/pkg/helpers"
)

// AuditController exposes the audit trail to administrators
type AuditController struct {
	auditService *services.AuditService
}

// NewAuditController creates a new AuditController
func NewAuditController(auditService *services.AuditService) *AuditController {
	return &AuditController{auditService: auditService}
}

// ListAuditLogs retrieves audit entries newest first
func (c *AuditController) ListAuditLogs(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := repositories.AuditFilter{
		ActorID:      queryInt64(ctx, "actorId"),
		Action:       ctx.Query("action"),
		ResourceType: ctx.Query("resourceType"),
		From:         queryDate(ctx, "from"),
		To:           queryDate(ctx, "to"),
		Page:         page,
		Size:         size,
	}

	entries, totalItems, err := c.auditService.List(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(entries, "Audit log retrieved", pagination))
}
