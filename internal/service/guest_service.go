package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/compoundrx/storefront/internal/cache"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
)

// GuestService exposes cart and favorite operations for anonymous visitors.
// State lives in redis keyed by an opaque token the client presents in the
// X-Guest-Token header.
type GuestService struct {
	store       *cache.GuestStateStore
	productRepo repository.ProductRepository
}

// NewGuestService builds a guest service.
func NewGuestService(store *cache.GuestStateStore, productRepo repository.ProductRepository) *GuestService {
	return &GuestService{store: store, productRepo: productRepo}
}

// GuestCartLine is one hydrated guest cart line.
type GuestCartLine struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice models.Money    `json:"unit_price"`
	Product   *models.Product `json:"product,omitempty"`
}

// GuestStateView is the guest document hydrated with current product info.
// Lines whose product vanished or was unlisted are kept but carry no product,
// so the client can show them as unavailable.
type GuestStateView struct {
	Token         string          `json:"token"`
	Cart          []GuestCartLine `json:"cart"`
	Favorites     []uint          `json:"favorites"`
	TotalQuantity int             `json:"total_quantity"`
	TotalAmount   models.Money    `json:"total_amount"`
}

// EnsureToken returns the presented token, minting a new one when absent.
func (s *GuestService) EnsureToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.store.IssueToken()
	}
	return token
}

// GetState loads and hydrates the guest document.
func (s *GuestService) GetState(ctx context.Context, token string) (*GuestStateView, error) {
	state := s.store.Get(ctx, token)

	view := &GuestStateView{
		Token:     token,
		Cart:      []GuestCartLine{},
		Favorites: state.Favorites,
	}

	ids := make([]uint, 0, len(state.Cart))
	for _, entry := range state.Cart {
		ids = append(ids, entry.ProductID)
	}
	products := map[uint]*models.Product{}
	if len(ids) > 0 {
		list, err := s.productRepo.ListByIDs(ids)
		if err != nil {
			return nil, err
		}
		for i := range list {
			products[list[i].ID] = &list[i]
		}
	}

	total := decimal.Zero
	for _, entry := range state.Cart {
		line := GuestCartLine{
			ProductID: entry.ProductID,
			Quantity:  entry.Quantity,
			UnitPrice: entry.UnitPrice,
		}
		if p, ok := products[entry.ProductID]; ok && p.IsActive {
			line.Product = p
		}
		view.Cart = append(view.Cart, line)
		view.TotalQuantity += entry.Quantity
		total = total.Add(entry.UnitPrice.Mul(decimal.NewFromInt(int64(entry.Quantity))))
	}
	view.TotalAmount = models.NewMoneyFromDecimal(total)
	return view, nil
}

// AddCartItem validates the product and bumps its quantity in the guest cart.
func (s *GuestService) AddCartItem(ctx context.Context, token string, productID uint, quantity int) error {
	if token == "" {
		return ErrGuestTokenInvalid
	}
	if productID == 0 {
		return ErrInvalidCartItem
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return ErrProductNotAvailable
	}
	return s.store.AddCartItem(ctx, token, productID, quantity, product.Price)
}

// SetCartQuantity sets an absolute quantity in the guest cart.
func (s *GuestService) SetCartQuantity(ctx context.Context, token string, productID uint, quantity int) error {
	if token == "" {
		return ErrGuestTokenInvalid
	}
	if productID == 0 {
		return ErrInvalidCartItem
	}
	return s.store.SetCartQuantity(ctx, token, productID, quantity)
}

// RemoveCartItem deletes a guest cart line.
func (s *GuestService) RemoveCartItem(ctx context.Context, token string, productID uint) error {
	if token == "" {
		return ErrGuestTokenInvalid
	}
	return s.store.RemoveCartItem(ctx, token, productID)
}

// AddFavorite adds a product to the guest favorites set.
func (s *GuestService) AddFavorite(ctx context.Context, token string, productID uint) error {
	if token == "" {
		return ErrGuestTokenInvalid
	}
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
	return s.store.AddFavorite(ctx, token, productID)
}

// RemoveFavorite drops a product from the guest favorites set.
func (s *GuestService) RemoveFavorite(ctx context.Context, token string, productID uint) error {
	if token == "" {
		return ErrGuestTokenInvalid
	}
	return s.store.RemoveFavorite(ctx, token, productID)
}
