package dto

import "github.com/emre/campuserp/internal/app/models"

// CreateNoticeRequest publishes an announcement
type CreateNoticeRequest struct {
	Title       string                `json:"title" binding:"required"`
	Body        string                `json:"body" binding:"required"`
	Priority    models.NoticePriority `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	TargetRoles []models.Role         `json:"targetRoles"`
	TargetDepts []int64               `json:"targetDepartmentIds"`
	ExpiresAt   *string               `json:"expiresAt"` // RFC3339
}

// UpdateNoticeRequest updates an announcement
type UpdateNoticeRequest struct {
	Title       string                `json:"title" binding:"required"`
	Body        string                `json:"body" binding:"required"`
	Priority    models.NoticePriority `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	TargetRoles []models.Role         `json:"targetRoles"`
	TargetDepts []int64               `json:"targetDepartmentIds"`
	ExpiresAt   *string               `json:"expiresAt"`
}

// NoticeStats summarizes a notice's view log
type NoticeStats struct {
	NoticeID  int64               `json:"noticeId"`
	ViewCount int64               `json:"viewCount"`
	Views     []models.NoticeView `json:"views"`
}
