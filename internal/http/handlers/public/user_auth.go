package public

import (
	"errors"

	"github.com/compoundrx/storefront/internal/http/response"
	"github.com/compoundrx/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest creates a customer account.
type UserRegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

// UserLoginRequest signs a customer in.
type UserLoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// UserChangePasswordRequest rotates the customer's password.
type UserChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// UserRegister creates an account and signs it in. A guest token presented
// on the request is folded into the new account.
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	user, err := h.UserAuthService.Register(req.Email, req.Password, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respondError(c, response.CodeBadRequest, "email already registered", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "registration failed", err)
		}
		return
	}

	token, _, err := h.UserAuthService.Login(user.Email, req.Password, false)
	if err != nil {
		respondError(c, response.CodeInternal, "registration failed", err)
		return
	}

	reconcile := h.mergeGuestState(c, user.ID)
	response.Success(c, gin.H{
		"token":     token,
		"user":      user,
		"reconcile": reconcile,
	})
}

// UserLogin signs a customer in. A guest token presented on the request is
// folded into the account before the response goes out.
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	token, user, err := h.UserAuthService.Login(req.Email, req.Password, req.RememberMe)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "invalid email or password", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeForbidden, "account disabled", nil)
		default:
			respondError(c, response.CodeInternal, "login failed", err)
		}
		return
	}

	reconcile := h.mergeGuestState(c, user.ID)
	response.Success(c, gin.H{
		"token":     token,
		"user":      user,
		"reconcile": reconcile,
	})
}

// mergeGuestState folds the presented guest document into the account.
// Login never fails because of a merge problem; a failed merge leaves the
// guest document in place for the next attempt.
func (h *Handler) mergeGuestState(c *gin.Context, userID uint) *service.ReconcileResult {
	token := guestToken(c)
	if token == "" {
		return nil
	}
	result, err := h.ReconcileService.Merge(c.Request.Context(), userID, token)
	if err != nil {
		requestLog(c).Warnw("guest_merge_failed",
			"user_id", userID,
			"error", err,
		)
	}
	return result
}

// GetMe returns the signed-in customer's profile.
func (h *Handler) GetMe(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUser(uid)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeUnauthorized, "unauthorized", nil)
			return
		}
		respondError(c, response.CodeInternal, "profile fetch failed", err)
		return
	}
	response.Success(c, user)
}

// ChangeUserPassword rotates the signed-in customer's password.
func (h *Handler) ChangeUserPassword(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req UserChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.UserAuthService.ChangePassword(uid, req.CurrentPassword, req.NewPassword); err != nil {
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
