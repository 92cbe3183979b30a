package admin

import (
	"github.com/compoundrx/storefront/internal/http/response"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryRequest creates or updates a category.
type CategoryRequest struct {
	Slug        string `json:"slug" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	SortOrder   int    `json:"sort_order"`
}

func (r CategoryRequest) toModel() *models.Category {
	return &models.Category{
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		Icon:        r.Icon,
		SortOrder:   r.SortOrder,
	}
}

var categoryErrorRules = []mappedHandlerError{
	{target: service.ErrCategoryNotFound, code: response.CodeNotFound, msg: "category not found"},
	{target: service.ErrSlugTaken, code: response.CodeBadRequest, msg: "slug already in use"},
	{target: service.ErrCategoryHasProducts, code: response.CodeBadRequest, msg: "category still has products"},
}

// GetAdminCategories lists all categories.
func (h *Handler) GetAdminCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "category fetch failed", err)
		return
	}
	response.Success(c, gin.H{"items": categories})
}

// CreateAdminCategory creates a category.
func (h *Handler) CreateAdminCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	category := req.toModel()
	if err := h.CategoryService.Create(category); err != nil {
		respondWithMappedError(c, err, categoryErrorRules, response.CodeInternal, "category create failed")
		return
	}
	response.Success(c, category)
}

// UpdateAdminCategory updates a category.
func (h *Handler) UpdateAdminCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	category := req.toModel()
	category.ID = id
	if err := h.CategoryService.Update(category); err != nil {
		respondWithMappedError(c, err, categoryErrorRules, response.CodeInternal, "category update failed")
		return
	}
	response.Success(c, category)
}

// DeleteAdminCategory deletes an empty category.
func (h *Handler) DeleteAdminCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.CategoryService.Delete(id); err != nil {
		respondWithMappedError(c, err, categoryErrorRules, response.CodeInternal, "category delete failed")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
