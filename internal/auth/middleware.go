// Package auth holds the gin middleware protecting the /api surface: an
// X-API-Key credential check against the key store, and a best-effort audit
// trail of authenticated requests.
package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"fundholdings/internal/models"
	"fundholdings/internal/repository"
	"fundholdings/internal/service"
)

const HeaderAPIKey = "X-API-Key"

const (
	ctxKeyID  = "auth_key_id"
	ctxUserID = "auth_user_id"
)

// RequireAPIKeyMiddleware validates the X-API-Key header for /api routes.
// Infra endpoints (health, swagger) stay open; admin endpoints are expected
// to be shielded at the deployment level.
func RequireAPIKeyMiddleware(keys *service.APIKeyService, disabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if disabled || !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}
		raw := strings.TrimSpace(c.GetHeader(HeaderAPIKey))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key is required"})
			return
		}
		key, err := keys.Verify(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "credential check failed"})
			return
		}
		if key == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or inactive API key"})
			return
		}
		c.Set(ctxKeyID, key.KeyID)
		c.Set(ctxUserID, key.UserID)
		c.Next()
	}
}

// AuditMiddleware records one api_logs row per authenticated /api request.
// Failures are logged and never surface to the caller.
func AuditMiddleware(repo repository.Repository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			return
		}
		userID := c.GetString(ctxUserID)
		if userID == "" {
			return
		}

		var params datatypes.JSON
		if query := c.Request.URL.Query(); len(query) > 0 {
			if raw, err := json.Marshal(query); err == nil {
				params = datatypes.JSON(raw)
			}
		}

		item := &models.APILog{
			KeyID:         c.GetString(ctxKeyID),
			UserID:        userID,
			Endpoint:      c.Request.URL.Path,
			Method:        strings.ToUpper(c.Request.Method),
			StatusCode:    c.Writer.Status(),
			Timestamp:     time.Now().UTC(),
			RequestParams: params,
			IPAddress:     c.ClientIP(),
		}
		if err := repo.InsertAPILog(c.Request.Context(), item); err != nil && logger != nil {
			logger.Debug("api audit log failed", zap.Error(err))
		}
	}
}
