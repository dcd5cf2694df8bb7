package competition

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns authenticated competition routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/", h.ListActive)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/join", h.Join)
		r.Get("/eligibility", h.Eligibility)
		r.Get("/participants", h.ListParticipants)
	})

	return r
}

// AdminRoutes returns admin competition routes
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Patch("/status", h.SetStatus)
		r.Post("/score", h.RecordScore)
		r.Post("/award", h.AwardPrize)
	})

	return r
}
