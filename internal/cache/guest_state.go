package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/compoundrx/storefront/internal/logger"
	"github.com/compoundrx/storefront/internal/models"

	"github.com/google/uuid"
)

// GuestCartEntry is one cart line in a guest document.
type GuestCartEntry struct {
	ProductID uint         `json:"product_id"`
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
	AddedAt   int64        `json:"added_at"`
}

// GuestState is the per-token document holding an anonymous visitor's cart
// and favorites. It survives page reloads but is invisible to other devices.
type GuestState struct {
	Cart      []GuestCartEntry `json:"cart"`
	Favorites []uint           `json:"favorites"`
	UpdatedAt int64            `json:"updated_at"`
}

// guestKV is the document storage slice the store needs. Production runs on
// the shared redis helpers.
type guestKV interface {
	getJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	del(ctx context.Context, key string) error
}

type redisGuestKV struct{}

func (redisGuestKV) getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	return GetJSON(ctx, key, dest)
}

func (redisGuestKV) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return SetJSON(ctx, key, value, ttl)
}

func (redisGuestKV) del(ctx context.Context, key string) error {
	return Del(ctx, key)
}

// GuestStateStore keeps guest carts and favorites in Redis keyed by an
// opaque token. Reads never fail: a missing or corrupt document comes back
// as an empty state so the storefront keeps working.
type GuestStateStore struct {
	ttl time.Duration
	kv  guestKV
}

// NewGuestStateStore builds a store with the given document TTL.
func NewGuestStateStore(ttl time.Duration) *GuestStateStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &GuestStateStore{ttl: ttl, kv: redisGuestKV{}}
}

// IssueToken mints a fresh guest token.
func (s *GuestStateStore) IssueToken() string {
	return uuid.NewString()
}

func guestStateKey(token string) string {
	return fmt.Sprintf("guest:state:%s", token)
}

// Get loads the document for a token. Corrupt payloads are dropped and an
// empty state returned.
func (s *GuestStateStore) Get(ctx context.Context, token string) *GuestState {
	state := &GuestState{}
	if token == "" {
		return state
	}
	found, err := s.kv.getJSON(ctx, guestStateKey(token), state)
	if err != nil {
		logger.Warnw("guest_state_read_failed", "token", token, "error", err)
		return &GuestState{}
	}
	if !found {
		return &GuestState{}
	}
	if state.Cart == nil {
		state.Cart = []GuestCartEntry{}
	}
	if state.Favorites == nil {
		state.Favorites = []uint{}
	}
	return state
}

func (s *GuestStateStore) save(ctx context.Context, token string, state *GuestState) error {
	state.UpdatedAt = time.Now().Unix()
	return s.kv.setJSON(ctx, guestStateKey(token), state, s.ttl)
}

// AddCartItem increments the quantity for a product, inserting the line on
// first add. The price snapshot of the first add wins.
func (s *GuestStateStore) AddCartItem(ctx context.Context, token string, productID uint, quantity int, unitPrice models.Money) error {
	if token == "" || productID == 0 {
		return nil
	}
	if quantity <= 0 {
		quantity = 1
	}
	state := s.Get(ctx, token)
	for i := range state.Cart {
		if state.Cart[i].ProductID == productID {
			state.Cart[i].Quantity += quantity
			return s.save(ctx, token, state)
		}
	}
	state.Cart = append(state.Cart, GuestCartEntry{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		AddedAt:   time.Now().Unix(),
	})
	return s.save(ctx, token, state)
}

// SetCartQuantity sets an absolute quantity. Zero or negative removes the line.
func (s *GuestStateStore) SetCartQuantity(ctx context.Context, token string, productID uint, quantity int) error {
	if token == "" || productID == 0 {
		return nil
	}
	state := s.Get(ctx, token)
	if quantity <= 0 {
		return s.removeCartLine(ctx, token, state, productID)
	}
	for i := range state.Cart {
		if state.Cart[i].ProductID == productID {
			state.Cart[i].Quantity = quantity
			return s.save(ctx, token, state)
		}
	}
	state.Cart = append(state.Cart, GuestCartEntry{
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now().Unix(),
	})
	return s.save(ctx, token, state)
}

// RemoveCartItem deletes a cart line.
func (s *GuestStateStore) RemoveCartItem(ctx context.Context, token string, productID uint) error {
	if token == "" || productID == 0 {
		return nil
	}
	return s.removeCartLine(ctx, token, s.Get(ctx, token), productID)
}

func (s *GuestStateStore) removeCartLine(ctx context.Context, token string, state *GuestState, productID uint) error {
	kept := state.Cart[:0]
	for _, entry := range state.Cart {
		if entry.ProductID != productID {
			kept = append(kept, entry)
		}
	}
	state.Cart = kept
	return s.save(ctx, token, state)
}

// ClearCart empties the cart while keeping favorites.
func (s *GuestStateStore) ClearCart(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	state := s.Get(ctx, token)
	state.Cart = []GuestCartEntry{}
	return s.save(ctx, token, state)
}

// AddFavorite adds a product to the favorites set.
func (s *GuestStateStore) AddFavorite(ctx context.Context, token string, productID uint) error {
	if token == "" || productID == 0 {
		return nil
	}
	state := s.Get(ctx, token)
	for _, id := range state.Favorites {
		if id == productID {
			return nil
		}
	}
	state.Favorites = append(state.Favorites, productID)
	return s.save(ctx, token, state)
}

// RemoveFavorite drops a product from the favorites set.
func (s *GuestStateStore) RemoveFavorite(ctx context.Context, token string, productID uint) error {
	if token == "" || productID == 0 {
		return nil
	}
	state := s.Get(ctx, token)
	kept := state.Favorites[:0]
	for _, id := range state.Favorites {
		if id != productID {
			kept = append(kept, id)
		}
	}
	state.Favorites = kept
	return s.save(ctx, token, state)
}

// Clear wipes the whole guest document. Called after a successful merge
// into a signed-in account.
func (s *GuestStateStore) Clear(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.kv.del(ctx, guestStateKey(token))
}
