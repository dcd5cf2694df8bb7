package reward

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns authenticated reward routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Post("/{id}/claim", h.Claim)
	r.Post("/claim-all", h.ClaimAll)

	return r
}
