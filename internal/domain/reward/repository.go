package reward

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

// Repository provides reward persistence.
type Repository interface {
	Create(ctx context.Context, rw *Reward) error
	Get(ctx context.Context, id uuid.UUID) (*Reward, error)
	ClaimTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, onlyClaimable bool, pagination Pagination) ([]Reward, error)
	ListClaimableIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// RewardRepository implements Repository on PostgreSQL.
type RewardRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

func (r *RewardRepository) Create(ctx context.Context, rw *Reward) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO rewards (id, user_id, kind, amount, reason, metadata, claimed, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7, $8)
	`, rw.ID, rw.UserID, rw.Kind, rw.Amount, rw.Reason, rw.Metadata, rw.ExpiresAt, rw.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert reward", ErrInternal)
	}
	return nil
}

func (r *RewardRepository) Get(ctx context.Context, id uuid.UUID) (*Reward, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var rw Reward
	err := r.db.GetContext(ctx2, &rw, `
		SELECT id, user_id, kind, amount, reason, metadata, claimed, claimed_at, expires_at, created_at
		FROM rewards WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRewardNotFound
		}
		return nil, fmt.Errorf("%w: get reward", ErrInternal)
	}
	return &rw, nil
}

// ClaimTx flips claimed exactly once. The conditional UPDATE is the guard:
// of two concurrent claims only one sees rows=1, the other resolves to
// ErrAlreadyFinalized or ErrExpired.
func (r *RewardRepository) ClaimTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE rewards
		SET claimed = true, claimed_at = now()
		WHERE id = $1 AND claimed = false AND (expires_at IS NULL OR expires_at > now())
	`, id)
	if err != nil {
		return fmt.Errorf("%w: claim reward", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 1 {
		return nil
	}

	// Work out why the claim did not apply.
	var rw Reward
	err = tx.GetContext(ctx, &rw, `SELECT id, user_id, kind, amount, reason, metadata, claimed, claimed_at, expires_at, created_at FROM rewards WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRewardNotFound
		}
		return fmt.Errorf("%w: inspect reward", ErrInternal)
	}
	if rw.Claimed {
		return ErrAlreadyFinalized
	}
	return ErrExpired
}

func (r *RewardRepository) ListByUser(ctx context.Context, userID uuid.UUID, onlyClaimable bool, pagination Pagination) ([]Reward, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	limit := pagination.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, user_id, kind, amount, reason, metadata, claimed, claimed_at, expires_at, created_at
		FROM rewards
		WHERE user_id = $1`
	if onlyClaimable {
		query += ` AND claimed = false AND (expires_at IS NULL OR expires_at > now())`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rewards := make([]Reward, 0)
	if err := r.db.SelectContext(ctx2, &rewards, query, userID, limit, pagination.Offset); err != nil {
		return nil, fmt.Errorf("%w: list rewards", ErrInternal)
	}
	return rewards, nil
}

func (r *RewardRepository) ListClaimableIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ids := make([]uuid.UUID, 0)
	err := r.db.SelectContext(ctx2, &ids, `
		SELECT id FROM rewards
		WHERE user_id = $1 AND claimed = false AND (expires_at IS NULL OR expires_at > now())
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list claimable rewards", ErrInternal)
	}
	return ids, nil
}
