package wallet

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns authenticated wallet routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/", h.Get)
	r.Get("/transactions", h.ListTransactions)

	return r
}
