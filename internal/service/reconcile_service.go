package service

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/compoundrx/storefront/internal/cache"
	"github.com/compoundrx/storefront/internal/logger"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
)

// GuestStore is the slice of the guest state store reconciliation needs.
type GuestStore interface {
	Get(ctx context.Context, token string) *cache.GuestState
	Clear(ctx context.Context, token string) error
}

// ReconcileService folds a guest document into a signed-in account after
// login. All database writes run in one transaction, and the guest document
// is cleared only after that transaction commits, so a crash mid-merge
// leaves the guest state intact for a retry instead of half-applied.
type ReconcileService struct {
	guestStore  GuestStore
	cartRepo    repository.CartRepository
	favRepo     repository.FavoriteRepository
	productRepo repository.ProductRepository

	inFlight sync.Map // "userID:token" -> struct{}
}

// NewReconcileService builds a reconcile service.
func NewReconcileService(guestStore GuestStore, cartRepo repository.CartRepository, favRepo repository.FavoriteRepository, productRepo repository.ProductRepository) *ReconcileService {
	return &ReconcileService{
		guestStore:  guestStore,
		cartRepo:    cartRepo,
		favRepo:     favRepo,
		productRepo: productRepo,
	}
}

// ReconcileResult reports what a merge did.
type ReconcileResult struct {
	CartMerged      int  `json:"cart_merged"`      // cart lines folded into the account
	CartSkipped     int  `json:"cart_skipped"`     // lines dropped (product gone or unlisted)
	FavoritesMerged int  `json:"favorites_merged"` // favorites folded into the account
	GuestCleared    bool `json:"guest_cleared"`    // guest document wiped
}

// Merge folds the guest document identified by token into the user's
// account. Cart quantities add into existing lines through the same upsert
// the cart uses, so an account line's price snapshot survives the merge;
// favorites union. Concurrent merges for the same (user, token) pair are
// rejected so double-submitting a login cannot double the cart.
func (s *ReconcileService) Merge(ctx context.Context, userID uint, token string) (*ReconcileResult, error) {
	result := &ReconcileResult{}
	if userID == 0 || token == "" {
		return result, nil
	}

	guard := fmt.Sprintf("%d:%s", userID, token)
	if _, loaded := s.inFlight.LoadOrStore(guard, struct{}{}); loaded {
		return nil, ErrReconcileInFlight
	}
	defer s.inFlight.Delete(guard)

	state := s.guestStore.Get(ctx, token)
	if len(state.Cart) == 0 && len(state.Favorites) == 0 {
		return result, nil
	}

	available, err := s.availableProducts(state)
	if err != nil {
		return nil, err
	}

	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		favRepo := s.favRepo.WithTx(tx)

		for _, entry := range state.Cart {
			if entry.Quantity <= 0 {
				continue
			}
			if _, ok := available[entry.ProductID]; !ok {
				result.CartSkipped++
				continue
			}
			if err := cartRepo.AddQuantity(&models.CartItem{
				UserID:    userID,
				ProductID: entry.ProductID,
				Quantity:  entry.Quantity,
				UnitPrice: entry.UnitPrice,
			}); err != nil {
				return err
			}
			result.CartMerged++
		}

		for _, productID := range state.Favorites {
			if _, ok := available[productID]; !ok {
				continue
			}
			if err := favRepo.Add(userID, productID); err != nil {
				return err
			}
			result.FavoritesMerged++
		}
		return nil
	})
	if err != nil {
		logger.Errorw("guest_merge_failed", "user_id", userID, "error", err)
		return nil, err
	}

	if err := s.guestStore.Clear(ctx, token); err != nil {
		// The merge is committed. Leaving the document behind risks a
		// double-add on a later login, so surface the failure loudly.
		logger.Errorw("guest_clear_failed", "user_id", userID, "error", err)
		return result, err
	}
	result.GuestCleared = true

	logger.Infow("guest_merge_done",
		"user_id", userID,
		"cart_merged", result.CartMerged,
		"cart_skipped", result.CartSkipped,
		"favorites_merged", result.FavoritesMerged)
	return result, nil
}

func (s *ReconcileService) availableProducts(state *cache.GuestState) (map[uint]struct{}, error) {
	idSet := map[uint]struct{}{}
	ids := make([]uint, 0, len(state.Cart)+len(state.Favorites))
	for _, entry := range state.Cart {
		if _, seen := idSet[entry.ProductID]; !seen {
			idSet[entry.ProductID] = struct{}{}
			ids = append(ids, entry.ProductID)
		}
	}
	for _, id := range state.Favorites {
		if _, seen := idSet[id]; !seen {
			idSet[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return map[uint]struct{}{}, nil
	}

	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	available := make(map[uint]struct{}, len(products))
	for _, p := range products {
		if p.IsActive {
			available[p.ID] = struct{}{}
		}
	}
	return available, nil
}
