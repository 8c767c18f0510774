package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fundholdings/internal/service"
)

type AdminKeyHandler struct {
	Keys   *service.APIKeyService
	Logger *zap.Logger
}

func (h *AdminKeyHandler) Register(r *gin.Engine) {
	group := r.Group("/admin/api-keys")
	group.POST("", h.createKey)
	group.GET("/:user_id", h.listKeys)
	group.DELETE("/:key_id", h.deactivateKey)
}

type createKeyRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	Description string `json:"description"`
}

// @Summary Create an API key
// @Tags admin
// @Param body body createKeyRequest true "key owner"
// @Success 200 {object} apiResponse
// @Router /admin/api-keys [post]
func (h *AdminKeyHandler) createKey(c *gin.Context) {
	if h.Keys == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	item, err := h.Keys.Create(c.Request.Context(), strings.TrimSpace(req.UserID), req.Description)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("create api key failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}

// @Summary List API keys for a user
// @Tags admin
// @Param user_id path string true "user id"
// @Success 200 {object} apiResponse
// @Router /admin/api-keys/{user_id} [get]
func (h *AdminKeyHandler) listKeys(c *gin.Context) {
	if h.Keys == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	items, err := h.Keys.ListByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list api keys failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

// @Summary Deactivate an API key
// @Tags admin
// @Param key_id path string true "key id"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /admin/api-keys/{key_id} [delete]
func (h *AdminKeyHandler) deactivateKey(c *gin.Context) {
	if h.Keys == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	ok, err := h.Keys.Deactivate(c.Request.Context(), c.Param("key_id"))
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("deactivate api key failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if !ok {
		Error(c, http.StatusNotFound, "API key not found", nil)
		return
	}
	Ok(c, gin.H{"message": "API key deactivated"}, nil)
}
