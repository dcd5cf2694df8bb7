package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

const selectColumns = `
	t.id, t.from_wallet_id, t.to_wallet_id, t.amount, t.status, t.message,
	t.created_at, t.completed_at,
	fw.user_id AS from_user_id, tw.user_id AS to_user_id
`

// Repository provides transfer persistence.
type Repository interface {
	Create(ctx context.Context, t *Transfer) error
	Get(ctx context.Context, id uuid.UUID) (*Transfer, error)
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Transfer, error)
	MarkCompletedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, pagination Pagination) ([]Transfer, error)
	ListPendingIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// TransferRepository implements Repository on PostgreSQL.
type TransferRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Create(ctx context.Context, t *Transfer) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO transfers (id, from_wallet_id, to_wallet_id, amount, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.FromWalletID, t.ToWalletID, t.Amount, t.Status, t.Message, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert transfer", ErrInternal)
	}
	return nil
}

func (r *TransferRepository) Get(ctx context.Context, id uuid.UUID) (*Transfer, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var t Transfer
	err := r.db.GetContext(ctx2, &t, `
		SELECT `+selectColumns+`
		FROM transfers t
		JOIN wallets fw ON fw.id = t.from_wallet_id
		JOIN wallets tw ON tw.id = t.to_wallet_id
		WHERE t.id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("%w: get transfer", ErrInternal)
	}
	return &t, nil
}

// GetForUpdate locks the transfer row for the duration of the caller's
// transaction. This is the double-execution guard: the second executor
// blocks here, then sees a non-pending status.
func (r *TransferRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Transfer, error) {
	var t Transfer
	err := tx.GetContext(ctx, &t, `
		SELECT `+selectColumns+`
		FROM transfers t
		JOIN wallets fw ON fw.id = t.from_wallet_id
		JOIN wallets tw ON tw.id = t.to_wallet_id
		WHERE t.id = $1
		FOR UPDATE OF t
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("%w: lock transfer row", ErrInternal)
	}
	return &t, nil
}

func (r *TransferRepository) MarkCompletedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE transfers
		SET status = 'completed', completed_at = now()
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return fmt.Errorf("%w: mark transfer completed", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		return ErrAlreadyFinalized
	}
	return nil
}

func (r *TransferRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `
		UPDATE transfers
		SET status = 'failed', completed_at = now()
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return fmt.Errorf("%w: mark transfer failed", ErrInternal)
	}
	return nil
}

func (r *TransferRepository) ListByUser(ctx context.Context, userID uuid.UUID, pagination Pagination) ([]Transfer, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	limit := pagination.Limit
	if limit <= 0 {
		limit = 20
	}

	transfers := make([]Transfer, 0)
	err := r.db.SelectContext(ctx2, &transfers, `
		SELECT `+selectColumns+`
		FROM transfers t
		JOIN wallets fw ON fw.id = t.from_wallet_id
		JOIN wallets tw ON tw.id = t.to_wallet_id
		WHERE fw.user_id = $1 OR tw.user_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, pagination.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list transfers", ErrInternal)
	}
	return transfers, nil
}

func (r *TransferRepository) ListPendingIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	ids := make([]uuid.UUID, 0)
	err := r.db.SelectContext(ctx2, &ids, `
		SELECT id FROM transfers
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list pending transfers", ErrInternal)
	}
	return ids, nil
}
