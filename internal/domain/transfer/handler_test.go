package transfer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shiebas/safa-connect-sub002/internal/domain/wallet"
	"github.com/shiebas/safa-connect-sub002/internal/middleware"
)

type fakeTransferService struct {
	transfer *Transfer
	execErr  error
}

func (s *fakeTransferService) Initiate(ctx context.Context, fromUserID, toUserID uuid.UUID, amount decimal.Decimal, message string) (*Transfer, error) {
	return s.transfer, nil
}

func (s *fakeTransferService) Execute(ctx context.Context, id uuid.UUID) (*Transfer, error) {
	return s.transfer, s.execErr
}

func (s *fakeTransferService) Get(ctx context.Context, id uuid.UUID) (*Transfer, error) {
	if s.transfer == nil {
		return nil, ErrTransferNotFound
	}
	return s.transfer, nil
}

func (s *fakeTransferService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transfer, error) {
	return nil, nil
}

func (s *fakeTransferService) ExecuteAllPending(ctx context.Context) (*BatchResult, error) {
	return &BatchResult{}, nil
}

func executeRequest(t *testing.T, svc Service, transferID, callerID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Post("/transfers/{id}/execute", h.Execute)

	req := httptest.NewRequest(http.MethodPost, "/transfers/"+transferID.String()+"/execute", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, callerID))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestExecuteInsufficientFundsReturns402(t *testing.T) {
	sender := uuid.New()
	tr := &Transfer{
		ID:         uuid.New(),
		FromUserID: sender,
		ToUserID:   uuid.New(),
		Amount:     decimal.NewFromInt(1000),
		Status:     StatusFailed,
		CreatedAt:  time.Now(),
	}
	svc := &fakeTransferService{transfer: tr, execErr: wallet.ErrInsufficientFunds}

	rr := executeRequest(t, svc, tr.ID, sender)

	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestExecuteAlreadyFinalizedReturns409(t *testing.T) {
	sender := uuid.New()
	tr := &Transfer{
		ID:         uuid.New(),
		FromUserID: sender,
		ToUserID:   uuid.New(),
		Amount:     decimal.NewFromInt(10),
		Status:     StatusCompleted,
		CreatedAt:  time.Now(),
	}
	svc := &fakeTransferService{transfer: tr, execErr: ErrAlreadyFinalized}

	rr := executeRequest(t, svc, tr.ID, sender)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestExecuteByNonPartyForbidden(t *testing.T) {
	tr := &Transfer{
		ID:         uuid.New(),
		FromUserID: uuid.New(),
		ToUserID:   uuid.New(),
		Amount:     decimal.NewFromInt(10),
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}
	svc := &fakeTransferService{transfer: tr}

	rr := executeRequest(t, svc, tr.ID, uuid.New())

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}
