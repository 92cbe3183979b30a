package admin

import (
	"strings"

	"github.com/compoundrx/storefront/internal/http/response"
	"github.com/compoundrx/storefront/internal/models"

	"github.com/gin-gonic/gin"
)

// GetAdminSetting returns one config document. A missing key yields an
// empty document rather than an error.
func (h *Handler) GetAdminSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		respondError(c, response.CodeBadRequest, "setting key required", nil)
		return
	}
	value, err := h.SettingService.Get(key)
	if err != nil {
		respondError(c, response.CodeInternal, "setting fetch failed", err)
		return
	}
	response.Success(c, gin.H{"key": key, "value": value})
}

// UpdateAdminSetting merges the submitted fields into the stored document.
func (h *Handler) UpdateAdminSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		respondError(c, response.CodeBadRequest, "setting key required", nil)
		return
	}
	var value models.JSON
	if err := c.ShouldBindJSON(&value); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	merged, err := h.SettingService.Update(key, value)
	if err != nil {
		respondError(c, response.CodeInternal, "setting update failed", err)
		return
	}
	response.Success(c, gin.H{"key": key, "value": merged})
}
