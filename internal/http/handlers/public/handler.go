package public

import "github.com/compoundrx/storefront/internal/provider"

// Handler serves the storefront, guest and signed-in customer APIs.
type Handler struct {
	*provider.Container
}

// New creates the storefront handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
