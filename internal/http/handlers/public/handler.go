package public

import "github.com/hornada/hornada/internal/provider"

// Handler serves storefront and customer endpoints.
type Handler struct {
	*provider.Container
}

// New creates the storefront handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
