package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aishe-survey-api/internal/models"
)

// ContextAuditActionKey lets a handler refine the audited action when
// one route covers several (lock vs. unlock).
const ContextAuditActionKey = "auditAction"

// AuditRecorder persists audit trail entries.
type AuditRecorder interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// SetAuditAction overrides the action recorded for the current request.
func SetAuditAction(c *gin.Context, action string) {
	c.Set(ContextAuditActionKey, action)
}

// Audit records an audit trail entry after successful requests. Failed
// requests are not recorded; they changed nothing.
func Audit(recorder AuditRecorder, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		act := action
		if override := c.GetString(ContextAuditActionKey); override != "" {
			act = override
		}

		var userID *string
		if claims := CurrentUser(c); claims != nil {
			userID = &claims.UserID
		}

		var resourceID *string
		if id := c.Param("id"); id != "" {
			resourceID = &id
		}

		detail, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		_ = recorder.Create(c.Request.Context(), &models.AuditLog{
			UserID:     userID,
			Action:     act,
			Resource:   resource,
			ResourceID: resourceID,
			Detail:     detail,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		})
	}
}
