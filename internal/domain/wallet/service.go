package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// EventPublisher receives committed ledger changes for fan-out to clients.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, userID uuid.UUID, txn *Transaction)
}

// Service defines the wallet ledger operations.
type Service interface {
	// EnsureWallet returns the user's wallet, creating it if absent.
	EnsureWallet(ctx context.Context, userID uuid.UUID) (*Wallet, bool, error)

	// Get returns the user's wallet.
	Get(ctx context.Context, userID uuid.UUID) (*Wallet, error)

	// CanAfford reports whether the balance covers amount.
	CanAfford(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error)

	// Credit atomically increments the balance and appends a ledger row.
	Credit(ctx context.Context, userID uuid.UUID, entry Entry) (*Transaction, error)

	// Debit atomically decrements the balance and appends a ledger row.
	// Returns ErrInsufficientFunds when the balance cannot cover the amount.
	Debit(ctx context.Context, userID uuid.UUID, entry Entry) (*Transaction, error)

	// CreditTx / DebitTx run inside a caller-owned transaction so composite
	// operations (transfer, reward claim, competition join, loyalty conversion)
	// stay atomic with their own writes. The caller commits; it must then call
	// PublishApplied for the produced transactions.
	CreditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, entry Entry) (*Transaction, error)
	DebitTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, entry Entry) (*Transaction, error)

	// PublishApplied announces committed ledger rows to the event stream.
	PublishApplied(ctx context.Context, userID uuid.UUID, txns ...*Transaction)

	// ListTransactions returns the user's ledger, newest first.
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error)

	// SearchTransactions returns filtered transactions (admin use).
	SearchTransactions(ctx context.Context, filters SearchFilters) ([]Transaction, error)
}

type service struct {
	repo      Repository
	publisher EventPublisher
}

// NewService creates a new wallet service. publisher may be nil.
func NewService(repo Repository, publisher EventPublisher) Service {
	return &service{repo: repo, publisher: publisher}
}

func (s *service) EnsureWallet(ctx context.Context, userID uuid.UUID) (*Wallet, bool, error) {
	return s.repo.EnsureWallet(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) CanAfford(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
	w, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	return w.Balance.GreaterThanOrEqual(amount), nil
}

func (s *service) Credit(ctx context.Context, userID uuid.UUID, entry Entry) (*Transaction, error) {
	if !entry.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	txn, err := s.repo.Credit(ctx, userID, entry)
	if err != nil {
		return nil, err
	}

	s.PublishApplied(ctx, userID, txn)
	return txn, nil
}

func (s *service) Debit(ctx context.Context, userID uuid.UUID, entry Entry) (*Transaction, error) {
	if !entry.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	txn, err := s.repo.Debit(ctx, userID, entry)
	if err != nil {
		return nil, err
	}

	s.PublishApplied(ctx, userID, txn)
	return txn, nil
}

func (s *service) CreditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, entry Entry) (*Transaction, error) {
	return s.repo.CreditTx(ctx, tx, userID, entry)
}

func (s *service) DebitTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, entry Entry) (*Transaction, error) {
	return s.repo.DebitTx(ctx, tx, userID, entry)
}

func (s *service) PublishApplied(ctx context.Context, userID uuid.UUID, txns ...*Transaction) {
	if s.publisher == nil {
		return
	}
	for _, txn := range txns {
		if txn != nil {
			s.publisher.PublishLedgerEvent(ctx, userID, txn)
		}
	}
}

func (s *service) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error) {
	w, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 20
	}

	return s.repo.ListTransactions(ctx, w.ID, Pagination{Limit: limit, Offset: offset})
}

func (s *service) SearchTransactions(ctx context.Context, filters SearchFilters) ([]Transaction, error) {
	return s.repo.SearchTransactions(ctx, filters)
}
