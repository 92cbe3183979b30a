package public

import (
	"github.com/compoundrx/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// IssueGuestToken hands out a browsing token. An already-presented token is
// returned unchanged so a retrying client keeps its state.
func (h *Handler) IssueGuestToken(c *gin.Context) {
	token := h.GuestService.EnsureToken(guestToken(c))
	response.Success(c, gin.H{"token": token})
}

// GetGuestState returns the guest cart and favorites hydrated with current
// product data.
func (h *Handler) GetGuestState(c *gin.Context) {
	state, err := h.GuestService.GetState(c.Request.Context(), guestToken(c))
	if err != nil {
		respondGuestError(c, err)
		return
	}
	response.Success(c, state)
}

// AddGuestCartItem adds a product to the guest cart.
func (h *Handler) AddGuestCartItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.GuestService.AddCartItem(c.Request.Context(), guestToken(c), req.ProductID, req.Quantity); err != nil {
		respondGuestError(c, err)
		return
	}
	response.Success(c, gin.H{"added": true})
}

// SetGuestCartQuantity sets a guest cart line to an absolute quantity.
func (h *Handler) SetGuestCartQuantity(c *gin.Context) {
	productID, ok := parseProductIDParam(c)
	if !ok {
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.GuestService.SetCartQuantity(c.Request.Context(), guestToken(c), productID, req.Quantity); err != nil {
		respondGuestError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// DeleteGuestCartItem removes one guest cart line.
func (h *Handler) DeleteGuestCartItem(c *gin.Context) {
	productID, ok := parseProductIDParam(c)
	if !ok {
		return
	}
	if err := h.GuestService.RemoveCartItem(c.Request.Context(), guestToken(c), productID); err != nil {
		respondGuestError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// AddGuestFavorite marks a product as a guest favorite.
func (h *Handler) AddGuestFavorite(c *gin.Context) {
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.GuestService.AddFavorite(c.Request.Context(), guestToken(c), req.ProductID); err != nil {
		respondGuestError(c, err)
		return
	}
	response.Success(c, gin.H{"added": true})
}

// DeleteGuestFavorite removes a guest favorite.
func (h *Handler) DeleteGuestFavorite(c *gin.Context) {
	productID, ok := parseProductIDParam(c)
	if !ok {
		return
	}
	if err := h.GuestService.RemoveFavorite(c.Request.Context(), guestToken(c), productID); err != nil {
		respondGuestError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
