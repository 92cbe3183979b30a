package service

import (
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
)

// FavoriteService manages a signed-in user's favorites.
type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
}

// NewFavoriteService builds a favorite service.
func NewFavoriteService(favoriteRepo repository.FavoriteRepository, productRepo repository.ProductRepository) *FavoriteService {
	return &FavoriteService{favoriteRepo: favoriteRepo, productRepo: productRepo}
}

// List returns the user's favorites with product info preloaded.
func (s *FavoriteService) List(userID uint) ([]models.Favorite, error) {
	return s.favoriteRepo.ListByUser(userID)
}

// Add marks a product as a favorite. Adding twice is a no-op.
func (s *FavoriteService) Add(userID, productID uint) error {
	if productID == 0 {
		return ErrProductNotFound
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return ErrProductNotAvailable
	}
	return s.favoriteRepo.Add(userID, productID)
}

// Remove drops a favorite. Removing an absent favorite is a no-op.
func (s *FavoriteService) Remove(userID, productID uint) error {
	if productID == 0 {
		return ErrProductNotFound
	}
	return s.favoriteRepo.Remove(userID, productID)
}
