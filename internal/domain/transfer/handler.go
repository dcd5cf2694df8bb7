package transfer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shiebas/safa-connect-sub002/internal/domain/wallet"
	"github.com/shiebas/safa-connect-sub002/internal/middleware"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/response"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/validator"
)

// Handler handles transfer HTTP requests
type Handler struct {
	svc Service
}

// NewHandler creates transfer handler
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Initiate handles POST /transfers
func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req InitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	toUserID, err := uuid.Parse(req.ToUserID)
	if err != nil {
		response.BadRequest(w, "Invalid recipient ID")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.BadRequest(w, "Invalid amount")
		return
	}

	fromUserID := middleware.GetUserID(r.Context())

	t, err := h.svc.Initiate(r.Context(), fromUserID, toUserID, amount, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, "Amount must be greater than 0")
		case errors.Is(err, ErrSelfTransfer):
			response.BadRequest(w, "Cannot transfer to your own wallet")
		case errors.Is(err, ErrRecipientNotFound):
			response.NotFound(w, "Recipient not found")
		case errors.Is(err, wallet.ErrWalletNotFound):
			response.NotFound(w, "Wallet not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, ToResponse(t))
}

// Execute handles POST /transfers/{id}/execute
func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transfer ID")
		return
	}

	// Only a party to the transfer may execute it.
	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTransferNotFound) {
			response.NotFound(w, "Transfer not found")
			return
		}
		response.InternalError(w)
		return
	}
	userID := middleware.GetUserID(r.Context())
	if t.FromUserID != userID && t.ToUserID != userID {
		response.Forbidden(w, "Not a party to this transfer")
		return
	}

	t, err = h.svc.Execute(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientFunds):
			// The transfer is now failed; report the outcome with the reason.
			response.JSON(w, http.StatusPaymentRequired, ToResponse(t))
		case errors.Is(err, ErrAlreadyFinalized):
			response.Conflict(w, "Transfer is already finalized")
		case errors.Is(err, ErrTransferNotFound):
			response.NotFound(w, "Transfer not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, ToResponse(t))
}

// List handles GET /transfers
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
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

	transfers, err := h.svc.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*TransferResponse, len(transfers))
	for i := range transfers {
		items[i] = ToResponse(&transfers[i])
	}

	response.WithMeta(w, items, response.Meta{
		Total:  len(items),
		Limit:  limit,
		Offset: offset,
	})
}
