package transfer

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns authenticated transfer routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Post("/", h.Initiate)
	r.Get("/", h.List)
	r.Post("/{id}/execute", h.Execute)

	return r
}
