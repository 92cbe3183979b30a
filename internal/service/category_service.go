package service

import (
	"strings"

	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
)

// CategoryService manages catalog categories.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService builds a category service.
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// List returns all categories ordered by sort weight.
func (s *CategoryService) List() ([]models.Category, error) {
	return s.categoryRepo.List()
}

// GetByID returns one category.
func (s *CategoryService) GetByID(id uint) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// Create inserts a category after checking the slug.
func (s *CategoryService) Create(category *models.Category) error {
	category.Slug = strings.TrimSpace(category.Slug)
	if category.Slug == "" || strings.TrimSpace(category.Name) == "" {
		return ErrCategoryNotFound
	}
	count, err := s.categoryRepo.CountBySlug(category.Slug, nil)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugTaken
	}
	return s.categoryRepo.Create(category)
}

// Update rewrites a category after checking the slug.
func (s *CategoryService) Update(category *models.Category) error {
	existing, err := s.categoryRepo.GetByID(category.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCategoryNotFound
	}
	category.Slug = strings.TrimSpace(category.Slug)
	if category.Slug != "" && category.Slug != existing.Slug {
		count, err := s.categoryRepo.CountBySlug(category.Slug, &category.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrSlugTaken
		}
	}
	return s.categoryRepo.Update(category)
}

// Delete removes an empty category. Categories still holding products are
// kept.
func (s *CategoryService) Delete(id uint) error {
	existing, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCategoryNotFound
	}
	count, err := s.categoryRepo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryHasProducts
	}
	return s.categoryRepo.Delete(id)
}
