// Package audit records sensitive actions as append-only log entries. The
// middleware makes the write a cross-cutting concern: controllers declare
// the entry on the request context and the middleware persists it after a
// successful mutating response, so no handler can forget the log.
package audit

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/pkg/logger"
)

// Recorder persists audit log entries
type Recorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

const contextKey = "auditEntry"

// Set declares the audit entry for the current request. Only the last call
// per request is recorded.
func Set(c *gin.Context, action, resourceType string, resourceID int64, description string) {
	c.Set(contextKey, &models.AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Description:  description,
	})
}

// Middleware persists the declared audit entry after a successful mutating
// response. The write runs detached from the request: a failure is logged
// and never blocks or fails the primary response.
func Middleware(recorder Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == "GET" || c.Writer.Status() >= 400 {
			return
		}

		value, exists := c.Get(contextKey)
		if !exists {
			return
		}
		entry, ok := value.(*models.AuditLog)
		if !ok {
			return
		}

		if userID, exists := c.Get("userID"); exists {
			if id, ok := userID.(int64); ok {
				entry.ActorID = id
			}
		}
		if role, exists := c.Get("role"); exists {
			if r, ok := role.(string); ok {
				entry.ActorRole = models.Role(r)
			}
		}
		entry.IPAddress = c.ClientIP()
		entry.UserAgent = c.Request.UserAgent()
		entry.CreatedAt = time.Now()

		go func(entry *models.AuditLog) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := recorder.Record(ctx, entry); err != nil {
				logger.Error().Err(err).
					Str("action", entry.Action).
					Str("resourceType", entry.ResourceType).
					Int64("resourceId", entry.ResourceID).
					Msg("Failed to write audit log entry")
			}
		}(entry)
	}
}
