package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/compoundrx/storefront/internal/constants"
	"github.com/compoundrx/storefront/internal/http/response"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
	"github.com/compoundrx/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// PublicProductView is a storefront product with derived stock info.
type PublicProductView struct {
	models.Product
	StockAvailable int    `json:"stock_available"` // -1 when untracked
	StockStatus    string `json:"stock_status"`
}

func (h *Handler) decorateProduct(p *models.Product) PublicProductView {
	available := p.StockAvailable()
	status := constants.ProductStockStatusUnlimited
	if p.StockTotal > 0 {
		switch {
		case available <= 0:
			status = constants.ProductStockStatusOutOfStock
		case available <= h.SettingService.GetLowStockThreshold():
			status = constants.ProductStockStatusLowStock
		default:
			status = constants.ProductStockStatusInStock
		}
	}
	return PublicProductView{Product: *p, StockAvailable: available, StockStatus: status}
}

// GetCategories lists the categories.
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "category fetch failed", err)
		return
	}
	response.Success(c, gin.H{"items": categories})
}

// GetProducts lists active products for the storefront.
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: c.Query("category_id"),
		Search:     strings.TrimSpace(c.Query("search")),
	}

	products, total, err := h.ProductService.ListPublic(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	decorated := make([]PublicProductView, 0, len(products))
	for i := range products {
		decorated = append(decorated, h.decorateProduct(&products[i]))
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, decorated, pagination)
}

// GetProductBySlug returns one active product.
func (h *Handler) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "slug required", nil)
		return
	}
	product, err := h.ProductService.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	response.Success(c, h.decorateProduct(product))
}
