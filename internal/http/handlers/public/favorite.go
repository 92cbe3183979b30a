package public

import (
	"github.com/compoundrx/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// FavoriteRequest marks a product as a favorite.
type FavoriteRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// GetFavorites lists the user's favorites.
func (h *Handler) GetFavorites(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	items, err := h.FavoriteService.List(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "favorite fetch failed", err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

// AddFavorite marks a product as a favorite. Adding twice is a no-op.
func (h *Handler) AddFavorite(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.FavoriteService.Add(uid, req.ProductID); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"added": true})
}

// DeleteFavorite removes a favorite. Removing an absent one is a no-op.
func (h *Handler) DeleteFavorite(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := parseProductIDParam(c)
	if !ok {
		return
	}
	if err := h.FavoriteService.Remove(uid, productID); err != nil {
		respondError(c, response.CodeInternal, "favorite update failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
