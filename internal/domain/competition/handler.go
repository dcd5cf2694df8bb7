package competition

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shiebas/safa-connect-sub002/internal/domain/wallet"
	"github.com/shiebas/safa-connect-sub002/internal/middleware"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/response"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/validator"
)

// Handler handles competition HTTP requests
type Handler struct {
	svc Service
}

// NewHandler creates competition handler
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// ListActive handles GET /competitions
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	competitions, err := h.svc.ListActive(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*CompetitionResponse, len(competitions))
	for i := range competitions {
		items[i] = ToResponse(&competitions[i])
	}

	response.WithMeta(w, items, response.Meta{Total: len(items), Limit: limit, Offset: offset})
}

// Get handles GET /competitions/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid competition ID")
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCompetitionNotFound) {
			response.NotFound(w, "Competition not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, ToResponse(c))
}

// Join handles POST /competitions/{id}/join
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid competition ID")
		return
	}

	userID := middleware.GetUserID(r.Context())

	p, err := h.svc.Join(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrCompetitionNotFound):
			response.NotFound(w, "Competition not found")
		case errors.Is(err, ErrNotActive):
			response.Conflict(w, "Competition is not accepting entries")
		case errors.Is(err, ErrCapacityExceeded):
			response.Conflict(w, "Competition is full")
		case errors.Is(err, ErrAlreadyJoined):
			response.Conflict(w, "Already joined this competition")
		case errors.Is(err, wallet.ErrInsufficientFunds):
			response.PaymentRequired(w, "Insufficient balance for entry fee")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, ToParticipationResponse(p))
}

// Eligibility handles GET /competitions/{id}/eligibility
func (h *Handler) Eligibility(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid competition ID")
		return
	}

	userID := middleware.GetUserID(r.Context())

	ok, err := h.svc.CanJoin(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, ErrCompetitionNotFound) {
			response.NotFound(w, "Competition not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]bool{"can_join": ok})
}

// ListParticipants handles GET /competitions/{id}/participants
func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid competition ID")
		return
	}

	limit, offset := listParams(r)

	participants, err := h.svc.ListParticipants(r.Context(), id, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*ParticipationResponse, len(participants))
	for i := range participants {
		items[i] = ToParticipationResponse(&participants[i])
	}

	response.WithMeta(w, items, response.Meta{Total: len(items), Limit: limit, Offset: offset})
}

// Create handles POST /admin/competitions
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	entryFee, err := decimal.NewFromString(req.EntryFee)
	if err != nil || entryFee.IsNegative() {
		response.BadRequest(w, "Invalid entry fee")
		return
	}

	prizePool := decimal.Zero
	if req.PrizePool != "" {
		prizePool, err = decimal.NewFromString(req.PrizePool)
		if err != nil || prizePool.IsNegative() {
			response.BadRequest(w, "Invalid prize pool")
			return
		}
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		response.BadRequest(w, "Invalid starts_at timestamp")
		return
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil || !endsAt.After(startsAt) {
		response.BadRequest(w, "Invalid ends_at timestamp")
		return
	}

	c, err := h.svc.Create(r.Context(), CreateParams{
		Name:            req.Name,
		CompType:        req.CompType,
		EntryFee:        entryFee,
		PrizePool:       prizePool,
		MaxParticipants: req.MaxParticipants,
		StartsAt:        startsAt,
		EndsAt:          endsAt,
		Rules:           req.Rules,
		OwnerID:         middleware.GetUserID(r.Context()),
	})
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, ToResponse(c))
}

// SetStatus handles PATCH /admin/competitions/{id}/status
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid competition ID")
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	c, err := h.svc.SetStatus(r.Context(), id, Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrCompetitionNotFound):
			response.NotFound(w, "Competition not found")
		case errors.Is(err, ErrInvalidTransition):
			response.Conflict(w, "Invalid status transition")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, ToResponse(c))
}

// RecordScore handles POST /admin/competitions/{id}/score
func (h *Handler) RecordScore(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid competition ID")
		return
	}

	var req RecordScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.svc.RecordScore(r.Context(), id, userID, req.Score); err != nil {
		if errors.Is(err, ErrParticipationNotFound) {
			response.NotFound(w, "Participation not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"status": "recorded"})
}

// AwardPrize handles POST /admin/competitions/{id}/award
func (h *Handler) AwardPrize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid competition ID")
		return
	}

	var req AwardPrizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.BadRequest(w, "Invalid amount")
		return
	}

	if err := h.svc.AwardPrize(r.Context(), id, userID, amount, req.Reason); err != nil {
		switch {
		case errors.Is(err, ErrCompetitionNotFound):
			response.NotFound(w, "Competition not found")
		case errors.Is(err, ErrParticipationNotFound):
			response.NotFound(w, "Participation not found")
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, "Amount must be greater than 0")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]string{"status": "awarded"})
}

func listParams(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0
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
	return limit, offset
}
