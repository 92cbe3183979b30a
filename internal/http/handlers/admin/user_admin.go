package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/compoundrx/storefront/internal/http/response"
	"github.com/compoundrx/storefront/internal/repository"
	"github.com/compoundrx/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// UserStatusRequest enables or disables a customer account.
type UserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminUsers lists customer accounts.
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Status:   strings.TrimSpace(c.Query("status")),
	}

	users, total, err := h.UserAuthService.ListUsers(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "user fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, users, pagination)
}

// UpdateAdminUserStatus enables or disables a customer account. Disabling
// does not revoke already-issued tokens; the auth middleware rejects
// disabled accounts on every request.
func (h *Handler) UpdateAdminUserStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.UserAuthService.SetUserStatus(id, strings.TrimSpace(req.Status)); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "user not found", nil)
		case errors.Is(err, service.ErrUserStatusInvalid):
			respondError(c, response.CodeBadRequest, "invalid status", nil)
		default:
			respondError(c, response.CodeInternal, "user update failed", err)
		}
		return
	}
	response.Success(c, gin.H{"updated": true})
}
