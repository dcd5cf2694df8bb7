package admin

import "github.com/go-chi/chi/v5"

// Routes returns admin routes. Auth and role checks are applied by the caller.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/transactions", h.SearchTransactions)
	r.Post("/rewards", h.GrantReward)
	r.Post("/transfers/execute-pending", h.ExecutePendingTransfers)
	r.Post("/users/{id}/statement", h.ExportStatement)

	return r
}
