package admin

import (
	"errors"
	"strconv"

	"github.com/compoundrx/storefront/internal/http/response"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
	"github.com/compoundrx/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductRequest creates or updates a product.
type ProductRequest struct {
	CategoryID           uint               `json:"category_id" binding:"required"`
	Slug                 string             `json:"slug" binding:"required"`
	Name                 string             `json:"name" binding:"required"`
	Description          string             `json:"description"`
	DosageForm           string             `json:"dosage_form"`
	Strength             string             `json:"strength"`
	RequiresPrescription bool               `json:"requires_prescription"`
	Price                models.Money       `json:"price"`
	Images               models.StringArray `json:"images"`
	Tags                 models.StringArray `json:"tags"`
	StockTotal           int                `json:"stock_total"`
	IsActive             *bool              `json:"is_active"`
	SortOrder            int                `json:"sort_order"`
}

// StockAdjustRequest moves the stock total by a signed delta.
type StockAdjustRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func (r ProductRequest) toModel() *models.Product {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &models.Product{
		CategoryID:           r.CategoryID,
		Slug:                 r.Slug,
		Name:                 r.Name,
		Description:          r.Description,
		DosageForm:           r.DosageForm,
		Strength:             r.Strength,
		RequiresPrescription: r.RequiresPrescription,
		Price:                r.Price,
		Images:               r.Images,
		Tags:                 r.Tags,
		StockTotal:           r.StockTotal,
		IsActive:             active,
		SortOrder:            r.SortOrder,
	}
}

var productErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrCategoryNotFound, code: response.CodeBadRequest, msg: "category not found"},
	{target: service.ErrSlugTaken, code: response.CodeBadRequest, msg: "slug already in use"},
	{target: service.ErrStockInsufficient, code: response.CodeBadRequest, msg: "stock cannot go below committed units"},
}

// GetAdminProducts lists products, inactive ones included.
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ProductListFilter{
		Page:        page,
		PageSize:    pageSize,
		CategoryID:  c.Query("category_id"),
		Search:      c.Query("search"),
		StockStatus: c.Query("stock_status"),
	}

	products, total, err := h.ProductService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, products, pagination)
}

// GetAdminProduct returns one product.
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	product, err := h.ProductService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	response.Success(c, product)
}

// CreateAdminProduct creates a product.
func (h *Handler) CreateAdminProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product := req.toModel()
	if err := h.ProductService.Create(product); err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "product create failed")
		return
	}
	response.Success(c, product)
}

// UpdateAdminProduct updates a product. Stock counters are managed through
// the stock adjustment endpoint, not here.
func (h *Handler) UpdateAdminProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product := req.toModel()
	product.ID = id
	if err := h.ProductService.Update(product); err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "product update failed")
		return
	}
	response.Success(c, product)
}

// DeleteAdminProduct soft-deletes a product.
func (h *Handler) DeleteAdminProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.ProductService.Delete(id); err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "product delete failed")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// AdjustAdminProductStock moves the stock total by a signed delta. The
// total never drops below what pending and paid orders already hold.
func (h *Handler) AdjustAdminProductStock(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req StockAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.ProductService.AdjustStock(id, req.Delta)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "stock adjust failed")
		return
	}
	response.Success(c, product)
}
