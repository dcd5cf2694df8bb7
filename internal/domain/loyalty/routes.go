package loyalty

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns authenticated loyalty routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Post("/convert", h.Convert)
	r.Get("/conversions", h.ListConversions)

	return r
}
