package service

import (
	"github.com/shopspring/decimal"

	"github.com/compoundrx/storefront/internal/logger"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
)

// CartService manages a signed-in user's cart.
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService builds a cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// CartSummary is a cart with derived totals.
type CartSummary struct {
	Items         []models.CartItem `json:"items"`
	TotalQuantity int               `json:"total_quantity"`
	TotalAmount   models.Money      `json:"total_amount"`
}

// GetCart returns the user's cart with totals computed from the stored
// price snapshots. Lines whose product vanished or was unlisted are left
// out of the view; the rows stay until the cart is cleared.
func (s *CartService) GetCart(userID uint) (*CartSummary, error) {
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		logger.Errorw("cart_list_failed", "user_id", userID, "error", err)
		return nil, err
	}

	summary := &CartSummary{Items: []models.CartItem{}}
	total := decimal.Zero
	for _, item := range items {
		if item.Product == nil || !item.Product.IsActive {
			continue
		}
		summary.Items = append(summary.Items, item)
		summary.TotalQuantity += item.Quantity
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	summary.TotalAmount = models.NewMoneyFromDecimal(total)
	return summary, nil
}

// AddItem increments the quantity for a product, inserting the cart line on
// first add. The write is a single upsert so concurrent adds for the same
// product never lose an increment.
func (s *CartService) AddItem(userID, productID uint, quantity int) error {
	if productID == 0 {
		return ErrInvalidCartItem
	}
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return ErrProductNotAvailable
	}

	return s.cartRepo.AddQuantity(&models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: product.Price,
	})
}

// SetQuantity replaces the quantity of an existing line. Zero or negative
// removes the line.
func (s *CartService) SetQuantity(userID, productID uint, quantity int) error {
	if productID == 0 {
		return ErrInvalidCartItem
	}
	if quantity <= 0 {
		return s.cartRepo.DeleteByUserAndProduct(userID, productID)
	}

	existing, err := s.cartRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrInvalidCartItem
	}
	return s.cartRepo.SetQuantity(userID, productID, quantity)
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(userID, productID uint) error {
	if productID == 0 {
		return ErrInvalidCartItem
	}
	return s.cartRepo.DeleteByUserAndProduct(userID, productID)
}

// ClearCart empties the user's cart.
func (s *CartService) ClearCart(userID uint) error {
	return s.cartRepo.ClearByUser(userID)
}
