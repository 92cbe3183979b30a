package admin

import (
	"errors"

	"github.com/compoundrx/storefront/internal/http/response"
	"github.com/compoundrx/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest signs an operator in.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest rotates the operator's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// AdminLogin signs an operator in and returns a bearer token.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	token, adminUser, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, "invalid username or password", nil)
			return
		}
		respondError(c, response.CodeInternal, "login failed", err)
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":       adminUser.ID,
			"username": adminUser.Username,
		},
	})
}

// GetAdminMe returns the signed-in operator's profile.
func (h *Handler) GetAdminMe(c *gin.Context) {
	aid, ok := getAdminID(c)
	if !ok {
		return
	}
	adminUser, err := h.AuthService.GetAdmin(aid)
	if err != nil {
		respondError(c, response.CodeInternal, "profile fetch failed", err)
		return
	}
	if adminUser == nil {
		respondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return
	}
	response.Success(c, gin.H{
		"id":       adminUser.ID,
		"username": adminUser.Username,
	})
}

// ChangeAdminPassword rotates the signed-in operator's password.
func (h *Handler) ChangeAdminPassword(c *gin.Context) {
	aid, ok := getAdminID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.AuthService.ChangePassword(aid, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeBadRequest, "current password incorrect", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "password change failed", err)
		}
		return
	}
	response.Success(c, gin.H{"updated": true})
}
