package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/shiebas/safa-connect-sub002/internal/domain/reward"
	"github.com/shiebas/safa-connect-sub002/internal/domain/user"
	"github.com/shiebas/safa-connect-sub002/internal/domain/wallet"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/jwt"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/password"
)

type fakeUserRepo struct {
	byEmail *user.User
	byID    *user.User
	created *user.User
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	r.created = u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if r.byID == nil {
		return nil, user.ErrUserNotFound
	}
	return r.byID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if r.byEmail == nil {
		return nil, user.ErrUserNotFound
	}
	return r.byEmail, nil
}

type fakeWalletService struct {
	ensured  []uuid.UUID
	credited []wallet.Entry
}

func (s *fakeWalletService) EnsureWallet(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, bool, error) {
	s.ensured = append(s.ensured, userID)
	return &wallet.Wallet{ID: uuid.New(), UserID: userID}, true, nil
}

func (s *fakeWalletService) Get(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	return nil, wallet.ErrWalletNotFound
}

func (s *fakeWalletService) CanAfford(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
	return false, nil
}

func (s *fakeWalletService) Credit(ctx context.Context, userID uuid.UUID, entry wallet.Entry) (*wallet.Transaction, error) {
	s.credited = append(s.credited, entry)
	return &wallet.Transaction{ID: uuid.New(), Kind: entry.Kind, Amount: entry.Amount}, nil
}

func (s *fakeWalletService) Debit(ctx context.Context, userID uuid.UUID, entry wallet.Entry) (*wallet.Transaction, error) {
	return nil, wallet.ErrInsufficientFunds
}

func (s *fakeWalletService) CreditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, entry wallet.Entry) (*wallet.Transaction, error) {
	return s.Credit(ctx, userID, entry)
}

func (s *fakeWalletService) DebitTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, entry wallet.Entry) (*wallet.Transaction, error) {
	return s.Debit(ctx, userID, entry)
}

func (s *fakeWalletService) PublishApplied(ctx context.Context, userID uuid.UUID, txns ...*wallet.Transaction) {
}

func (s *fakeWalletService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]wallet.Transaction, error) {
	return nil, nil
}

func (s *fakeWalletService) SearchTransactions(ctx context.Context, filters wallet.SearchFilters) ([]wallet.Transaction, error) {
	return nil, nil
}

type fakeRewardService struct {
	granted []*reward.Reward
}

func (s *fakeRewardService) Grant(ctx context.Context, userID uuid.UUID, kind reward.Kind, amount decimal.Decimal, reason string, expiresAt *time.Time, metadata map[string]string) (*reward.Reward, error) {
	rw := &reward.Reward{ID: uuid.New(), UserID: userID, Kind: kind, Amount: amount, Reason: reason}
	s.granted = append(s.granted, rw)
	return rw, nil
}

func (s *fakeRewardService) Claim(ctx context.Context, rewardID, userID uuid.UUID) (*reward.Reward, error) {
	return nil, reward.ErrRewardNotFound
}

func (s *fakeRewardService) ListByUser(ctx context.Context, userID uuid.UUID, onlyClaimable bool, limit, offset int) ([]reward.Reward, error) {
	return nil, nil
}

func (s *fakeRewardService) ClaimAll(ctx context.Context, userID uuid.UUID) (*reward.BatchResult, error) {
	return &reward.BatchResult{}, nil
}

func newTestService(users user.Repository, walletSvc wallet.Service, rewardSvc reward.Service) Service {
	jwtService := jwt.NewService("secret", time.Minute, time.Hour)
	return NewService(users, walletSvc, rewardSvc, jwtService, OnboardingConfig{
		WelcomeBonus:      decimal.NewFromInt(100),
		FirstUseReward:    decimal.NewFromInt(50),
		FirstUseRewardTTL: 720 * time.Hour,
	})
}

func TestRegisterProvisionsWalletAndBonus(t *testing.T) {
	repo := &fakeUserRepo{}
	walletSvc := &fakeWalletService{}
	rewardSvc := &fakeRewardService{}
	h := NewHandler(newTestService(repo, walletSvc, rewardSvc))

	body, _ := json.Marshal(RegisterRequest{
		Email:     "new@example.com",
		Password:  "password123",
		FirstName: "Thandi",
		LastName:  "Nkosi",
	})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	if repo.created == nil {
		t.Fatal("expected user to be created")
	}
	if len(walletSvc.ensured) != 1 {
		t.Fatalf("expected wallet provisioned once, got %d", len(walletSvc.ensured))
	}
	if len(walletSvc.credited) != 1 || walletSvc.credited[0].Kind != wallet.TxKindBonus {
		t.Fatalf("expected one welcome bonus credit, got %+v", walletSvc.credited)
	}
	if walletSvc.credited[0].Amount.String() != "100" {
		t.Fatalf("expected bonus 100, got %s", walletSvc.credited[0].Amount)
	}
	if len(rewardSvc.granted) != 1 || rewardSvc.granted[0].Kind != reward.KindFirstUse {
		t.Fatalf("expected one first-use reward grant, got %+v", rewardSvc.granted)
	}

	var out struct {
		Success bool `json:"success"`
		Data    struct {
			Tokens struct {
				AccessToken  string `json:"access_token"`
				RefreshToken string `json:"refresh_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Data.Tokens.AccessToken == "" || out.Data.Tokens.RefreshToken == "" {
		t.Fatal("expected tokens in response")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, _ := password.Hash("password123")
	u := &user.User{ID: uuid.New(), Email: "member@example.com", PasswordHash: hash, Role: user.RoleMember, CreatedAt: time.Now()}
	repo := &fakeUserRepo{byEmail: u, byID: u}
	h := NewHandler(newTestService(repo, &fakeWalletService{}, &fakeRewardService{}))

	body, _ := json.Marshal(LoginRequest{Email: u.Email, Password: "wrong-password"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestLoginSuccess(t *testing.T) {
	hash, _ := password.Hash("password123")
	u := &user.User{ID: uuid.New(), Email: "member@example.com", PasswordHash: hash, Role: user.RoleMember, CreatedAt: time.Now()}
	repo := &fakeUserRepo{byEmail: u, byID: u}
	h := NewHandler(newTestService(repo, &fakeWalletService{}, &fakeRewardService{}))

	body, _ := json.Marshal(LoginRequest{Email: u.Email, Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var out struct {
		Data struct {
			Tokens struct {
				AccessToken string `json:"access_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Data.Tokens.AccessToken == "" {
		t.Fatal("expected access token in response")
	}
}
