package loyalty

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shiebas/safa-connect-sub002/internal/middleware"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/response"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/validator"
)

// Handler handles loyalty HTTP requests
type Handler struct {
	svc Service
}

// NewHandler creates loyalty handler
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Convert handles POST /loyalty/convert
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())

	c, err := h.svc.Convert(r.Context(), userID, req.Points)
	if err != nil {
		switch {
		case errors.Is(err, ErrBelowMinimum):
			response.BadRequest(w, "Not enough points for a conversion")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, ToResponse(c))
}

// ListConversions handles GET /loyalty/conversions
func (h *Handler) ListConversions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

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

	conversions, err := h.svc.ListConversions(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*ConversionResponse, len(conversions))
	for i := range conversions {
		items[i] = ToResponse(&conversions[i])
	}

	response.WithMeta(w, items, response.Meta{Total: len(items), Limit: limit, Offset: offset})
}
