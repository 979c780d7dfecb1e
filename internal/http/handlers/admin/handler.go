package admin

import "github.com/hornada/hornada/internal/provider"

// Handler serves back-office endpoints.
type Handler struct {
	*provider.Container
}

// New creates the back-office handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
