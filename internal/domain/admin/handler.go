package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shiebas/safa-connect-sub002/internal/domain/reward"
	"github.com/shiebas/safa-connect-sub002/internal/domain/transfer"
	"github.com/shiebas/safa-connect-sub002/internal/domain/wallet"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/response"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/validator"
)

// Handler exposes the admin operations over existing domain services.
type Handler struct {
	walletSvc   wallet.Service
	rewardSvc   reward.Service
	transferSvc transfer.Service
	exportSvc   ExportService
}

// NewHandler creates admin handler
func NewHandler(walletSvc wallet.Service, rewardSvc reward.Service, transferSvc transfer.Service, exportSvc ExportService) *Handler {
	return &Handler{
		walletSvc:   walletSvc,
		rewardSvc:   rewardSvc,
		transferSvc: transferSvc,
		exportSvc:   exportSvc,
	}
}

// SearchTransactions handles GET /admin/transactions
func (h *Handler) SearchTransactions(w http.ResponseWriter, r *http.Request) {
	filters := wallet.SearchFilters{Limit: 50}

	q := r.URL.Query()
	if v := q.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(w, "Invalid user_id filter")
			return
		}
		filters.UserID = &id
	}
	if v := q.Get("kind"); v != "" {
		kind := wallet.TxKind(v)
		if !kind.Valid() {
			response.BadRequest(w, "Invalid kind filter")
			return
		}
		filters.Kind = &kind
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.BadRequest(w, "Invalid date_from filter")
			return
		}
		filters.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.BadRequest(w, "Invalid date_to filter")
			return
		}
		filters.DateTo = &t
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			filters.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filters.Offset = n
		}
	}

	txns, err := h.walletSvc.SearchTransactions(r.Context(), filters)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*wallet.TransactionResponse, len(txns))
	for i := range txns {
		items[i] = wallet.ToTransactionResponse(&txns[i])
	}

	response.WithMeta(w, items, response.Meta{Total: len(items), Limit: filters.Limit, Offset: filters.Offset})
}

// GrantReward handles POST /admin/rewards
func (h *Handler) GrantReward(w http.ResponseWriter, r *http.Request) {
	var req GrantRewardRequest
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

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil || !t.After(time.Now()) {
			response.BadRequest(w, "Invalid expires_at timestamp")
			return
		}
		expiresAt = &t
	}

	rw, err := h.rewardSvc.Grant(r.Context(), userID, reward.Kind(req.Kind), amount, req.Reason, expiresAt, req.Metadata)
	if err != nil {
		if errors.Is(err, reward.ErrInvalidAmount) {
			response.BadRequest(w, "Amount must be greater than 0")
			return
		}
		response.InternalError(w)
		return
	}

	response.Created(w, ToRewardResponse(rw))
}

// ExecutePendingTransfers handles POST /admin/transfers/execute-pending
func (h *Handler) ExecutePendingTransfers(w http.ResponseWriter, r *http.Request) {
	result, err := h.transferSvc.ExecuteAllPending(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, &BatchTransfersResponse{
		Completed: result.Completed,
		Failed:    result.Failed,
		Errors:    result.Errors,
	})
}

// ExportStatement handles POST /admin/users/{id}/statement
func (h *Handler) ExportStatement(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	url, err := h.exportSvc.ExportStatement(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrExportUnavailable):
			response.Error(w, http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "Statement export is not configured")
		case errors.Is(err, wallet.ErrWalletNotFound):
			response.NotFound(w, "Wallet not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, &StatementResponse{URL: url})
}
