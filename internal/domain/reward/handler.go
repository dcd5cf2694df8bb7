package reward

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shiebas/safa-connect-sub002/internal/middleware"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/response"
)

// Handler handles reward HTTP requests
type Handler struct {
	svc Service
}

// NewHandler creates reward handler
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /rewards
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	onlyClaimable := r.URL.Query().Get("claimable") == "true"

	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	rewards, err := h.svc.ListByUser(r.Context(), userID, onlyClaimable, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*RewardResponse, len(rewards))
	for i := range rewards {
		items[i] = ToResponse(&rewards[i])
	}

	response.WithMeta(w, items, response.Meta{
		Total:  len(items),
		Limit:  limit,
		Offset: offset,
	})
}

// Claim handles POST /rewards/{id}/claim
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid reward ID")
		return
	}

	userID := middleware.GetUserID(r.Context())

	rw, err := h.svc.Claim(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRewardNotFound):
			response.NotFound(w, "Reward not found")
		case errors.Is(err, ErrNotOwner):
			response.Forbidden(w, "Reward belongs to another user")
		case errors.Is(err, ErrAlreadyFinalized):
			response.Conflict(w, "Reward already claimed")
		case errors.Is(err, ErrExpired):
			response.Error(w, http.StatusGone, "EXPIRED", "Reward has expired")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, ToResponse(rw))
}

// ClaimAll handles POST /rewards/claim-all
func (h *Handler) ClaimAll(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	result, err := h.svc.ClaimAll(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, &BatchResultResponse{
		Claimed: result.Claimed,
		Skipped: result.Skipped,
		Errors:  result.Errors,
	})
}
