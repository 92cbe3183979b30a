package repository

import (
	"github.com/compoundrx/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository is the favorites data access interface.
type FavoriteRepository interface {
	ListByUser(userID uint) ([]models.Favorite, error)
	Add(userID, productID uint) error
	Remove(userID, productID uint) error
	Exists(userID, productID uint) (bool, error)
	ClearByUser(userID uint) error
	WithTx(tx *gorm.DB) *GormFavoriteRepository
}

// GormFavoriteRepository is the GORM implementation.
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository builds a favorites repository.
func NewFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormFavoriteRepository) WithTx(tx *gorm.DB) *GormFavoriteRepository {
	if tx == nil {
		return r
	}
	return &GormFavoriteRepository{db: tx}
}

// ListByUser returns the user's favorites, newest first.
func (r *GormFavoriteRepository) ListByUser(userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	if err := r.db.Preload("Product").Where("user_id = ?", userID).Order("created_at desc").Find(&favorites).Error; err != nil {
		return nil, err
	}
	return favorites, nil
}

// Add inserts a favorite. Re-adding an existing pair is a no-op.
func (r *GormFavoriteRepository) Add(userID, productID uint) error {
	if userID == 0 || productID == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&models.Favorite{UserID: userID, ProductID: productID}).Error
}

// Remove deletes a favorite.
func (r *GormFavoriteRepository) Remove(userID, productID uint) error {
	return r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Favorite{}).Error
}

// Exists reports whether the pair is favorited.
func (r *GormFavoriteRepository) Exists(userID, productID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ClearByUser removes every favorite of a user.
func (r *GormFavoriteRepository) ClearByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Favorite{}).Error
}
