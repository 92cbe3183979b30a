package service

import (
	"strings"

	"github.com/compoundrx/storefront/internal/logger"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
)

// ProductService manages the catalog.
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService builds a product service.
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{productRepo: productRepo, categoryRepo: categoryRepo}
}

// ListPublic returns the storefront catalog page: active products only.
func (s *ProductService) ListPublic(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.OnlyActive = true
	filter.WithCategory = true
	return s.productRepo.List(filter)
}

// GetBySlug returns one active product for the storefront.
func (s *ProductService) GetBySlug(slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrProductNotFound
	}
	product, err := s.productRepo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListAdmin returns a catalog page for the admin backend, inactive products
// included.
func (s *ProductService) ListAdmin(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.WithCategory = true
	return s.productRepo.List(filter)
}

// GetByID returns one product for the admin backend.
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create inserts a product after checking the category and slug.
func (s *ProductService) Create(product *models.Product) error {
	product.Slug = strings.TrimSpace(product.Slug)
	if product.Slug == "" || strings.TrimSpace(product.Name) == "" {
		return ErrProductNotFound
	}

	category, err := s.categoryRepo.GetByID(product.CategoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}

	count, err := s.productRepo.CountBySlug(product.Slug, nil)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugTaken
	}

	if err := s.productRepo.Create(product); err != nil {
		logger.Errorw("product_create_failed", "slug", product.Slug, "error", err)
		return err
	}
	return nil
}

// Update rewrites a product after the same checks as Create.
func (s *ProductService) Update(product *models.Product) error {
	existing, err := s.productRepo.GetByID(product.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrProductNotFound
	}

	product.Slug = strings.TrimSpace(product.Slug)
	if product.Slug != "" && product.Slug != existing.Slug {
		count, err := s.productRepo.CountBySlug(product.Slug, &product.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrSlugTaken
		}
	}

	if product.CategoryID != 0 && product.CategoryID != existing.CategoryID {
		category, err := s.categoryRepo.GetByID(product.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return ErrCategoryNotFound
		}
	}

	// Stock counters move through the stock operations only.
	product.StockLocked = existing.StockLocked
	product.StockSold = existing.StockSold

	return s.productRepo.Update(product)
}

// Delete soft-deletes a product.
func (s *ProductService) Delete(id uint) error {
	existing, err := s.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrProductNotFound
	}
	return s.productRepo.Delete(id)
}

// AdjustStock moves the stock total by delta. Shrinking below what is
// already locked or sold is rejected by the guarded write.
func (s *ProductService) AdjustStock(id uint, delta int) (*models.Product, error) {
	if delta == 0 {
		return s.GetByID(id)
	}
	rows, err := s.productRepo.AdjustStockTotal(id, delta)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrStockInsufficient
	}
	logger.Infow("product_stock_adjusted", "product_id", id, "delta", delta)
	return s.GetByID(id)
}
