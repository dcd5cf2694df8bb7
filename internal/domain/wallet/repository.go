package wallet

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const queryTimeout = 3 * time.Second

// Repository provides wallet and ledger persistence.
type Repository interface {
	EnsureWallet(ctx context.Context, userID uuid.UUID) (*Wallet, bool, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error)
	Credit(ctx context.Context, userID uuid.UUID, entry Entry) (*Transaction, error)
	Debit(ctx context.Context, userID uuid.UUID, entry Entry) (*Transaction, error)
	CreditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, entry Entry) (*Transaction, error)
	DebitTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, entry Entry) (*Transaction, error)
	ListTransactions(ctx context.Context, walletID uuid.UUID, pagination Pagination) ([]Transaction, error)
	SearchTransactions(ctx context.Context, filters SearchFilters) ([]Transaction, error)
}

// WalletRepository implements Repository on PostgreSQL.
type WalletRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// EnsureWallet returns the user's wallet, creating it if absent (atomic upsert).
// The second return value reports whether a new wallet was created.
func (r *WalletRepository) EnsureWallet(ctx context.Context, userID uuid.UUID) (*Wallet, bool, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var w Wallet
	err := r.db.GetContext(ctx2, &w, `
		INSERT INTO wallets (id, user_id, balance, lifetime_earned, lifetime_spent)
		VALUES ($1, $2, 0, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id, user_id, balance, lifetime_earned, lifetime_spent, created_at, updated_at
	`, uuid.New(), userID)
	if err == nil {
		return &w, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("%w: ensure wallet", ErrInternal)
	}

	// Conflict path: the wallet already exists.
	existing, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var w Wallet
	err := r.db.GetContext(ctx2, &w, `
		SELECT id, user_id, balance, lifetime_earned, lifetime_spent, created_at, updated_at
		FROM wallets WHERE user_id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("%w: get wallet", ErrInternal)
	}
	return &w, nil
}

// Credit atomically increments the balance and appends the ledger row.
func (r *WalletRepository) Credit(ctx context.Context, userID uuid.UUID, entry Entry) (*Transaction, error) {
	return r.applyOwnTx(ctx, userID, entry, true)
}

// Debit atomically decrements the balance and appends the ledger row.
// Returns ErrInsufficientFunds when the balance cannot cover the amount.
func (r *WalletRepository) Debit(ctx context.Context, userID uuid.UUID, entry Entry) (*Transaction, error) {
	return r.applyOwnTx(ctx, userID, entry, false)
}

// CreditTx credits within a caller-owned transaction (FOR UPDATE row lock).
// The caller is responsible for commit and rollback.
func (r *WalletRepository) CreditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, entry Entry) (*Transaction, error) {
	return r.apply(ctx, tx, userID, entry, true)
}

// DebitTx debits within a caller-owned transaction (FOR UPDATE row lock).
func (r *WalletRepository) DebitTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, entry Entry) (*Transaction, error) {
	return r.apply(ctx, tx, userID, entry, false)
}

func (r *WalletRepository) applyOwnTx(ctx context.Context, userID uuid.UUID, entry Entry, credit bool) (*Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	txn, err := r.apply(ctx2, tx, userID, entry, credit)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit tx", ErrInternal)
	}
	return txn, nil
}

// apply performs the balance mutation plus ledger append under a row lock.
// Both writes share the transaction: readers never see one without the other.
func (r *WalletRepository) apply(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, entry Entry, credit bool) (*Transaction, error) {
	if !entry.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !entry.Kind.Valid() || entry.Kind.IsCredit() != credit {
		return nil, ErrInvalidKind
	}

	var w Wallet
	err := tx.GetContext(ctx, &w, `
		SELECT id, user_id, balance, lifetime_earned, lifetime_spent, created_at, updated_at
		FROM wallets WHERE user_id = $1 FOR UPDATE
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("%w: lock wallet row", ErrInternal)
	}

	var balanceAfter decimal.Decimal
	if credit {
		balanceAfter = w.Balance.Add(entry.Amount)
		w.LifetimeEarned = w.LifetimeEarned.Add(entry.Amount)
	} else {
		if w.Balance.LessThan(entry.Amount) {
			return nil, ErrInsufficientFunds
		}
		balanceAfter = w.Balance.Sub(entry.Amount)
		w.LifetimeSpent = w.LifetimeSpent.Add(entry.Amount)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = $2, lifetime_earned = $3, lifetime_spent = $4, updated_at = now()
		WHERE id = $1
	`, w.ID, balanceAfter, w.LifetimeEarned, w.LifetimeSpent)
	if err != nil {
		return nil, fmt.Errorf("%w: update wallet balance", ErrInternal)
	}

	txn := &Transaction{
		ID:           uuid.New(),
		WalletID:     w.ID,
		Kind:         entry.Kind,
		Amount:       entry.Amount,
		Reason:       entry.Reason,
		BalanceAfter: balanceAfter,
		CreatedAt:    time.Now().UTC(),
	}
	if entry.RelatedUserID != nil {
		txn.RelatedUserID = uuid.NullUUID{UUID: *entry.RelatedUserID, Valid: true}
	}
	if len(entry.Metadata) > 0 {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal metadata", ErrInternal)
		}
		txn.Metadata = raw
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions (
			id, wallet_id, kind, amount, reason, balance_after, related_user_id, metadata, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, txn.ID, txn.WalletID, txn.Kind, txn.Amount, txn.Reason, txn.BalanceAfter, txn.RelatedUserID, txn.Metadata, txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: insert transaction", ErrInternal)
	}

	return txn, nil
}

func (r *WalletRepository) ListTransactions(ctx context.Context, walletID uuid.UUID, pagination Pagination) ([]Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	limit := pagination.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions := make([]Transaction, 0)
	err := r.db.SelectContext(ctx2, &transactions, `
		SELECT id, wallet_id, kind, amount, reason, balance_after, related_user_id, metadata, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, walletID, limit, pagination.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions", ErrInternal)
	}

	return transactions, nil
}

func (r *WalletRepository) SearchTransactions(ctx context.Context, filters SearchFilters) ([]Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	base := `
		SELECT t.id, t.wallet_id, t.kind, t.amount, t.reason, t.balance_after, t.related_user_id, t.metadata, t.created_at
		FROM wallet_transactions t
		JOIN wallets w ON w.id = t.wallet_id
		WHERE 1=1`
	args := make([]interface{}, 0, 6)
	idx := 1

	if filters.UserID != nil {
		base += fmt.Sprintf(" AND w.user_id = $%d", idx)
		args = append(args, *filters.UserID)
		idx++
	}
	if filters.Kind != nil && *filters.Kind != "" {
		base += fmt.Sprintf(" AND t.kind = $%d", idx)
		args = append(args, *filters.Kind)
		idx++
	}
	if filters.DateFrom != nil {
		base += fmt.Sprintf(" AND t.created_at >= $%d", idx)
		args = append(args, *filters.DateFrom)
		idx++
	}
	if filters.DateTo != nil {
		base += fmt.Sprintf(" AND t.created_at <= $%d", idx)
		args = append(args, *filters.DateTo)
		idx++
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	base = strings.TrimSpace(base) + fmt.Sprintf(" ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, filters.Offset)

	transactions := make([]Transaction, 0)
	if err := r.db.SelectContext(ctx2, &transactions, base, args...); err != nil {
		return nil, fmt.Errorf("%w: search transactions", ErrInternal)
	}

	return transactions, nil
}
