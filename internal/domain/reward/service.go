package reward

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/shiebas/safa-connect-sub002/internal/domain/wallet"
)

// BatchResult summarizes a ClaimAll run.
type BatchResult struct {
	Claimed int
	Skipped int
	Errors  int
}

// Service defines the reward issuer operations.
type Service interface {
	// Grant creates an unclaimed reward, optionally with an expiry.
	Grant(ctx context.Context, userID uuid.UUID, kind Kind, amount decimal.Decimal, reason string, expiresAt *time.Time, metadata map[string]string) (*Reward, error)

	// Claim converts a grant into a ledger credit exactly once. Two
	// concurrent claims of the same reward produce exactly one credit.
	Claim(ctx context.Context, rewardID, userID uuid.UUID) (*Reward, error)

	ListByUser(ctx context.Context, userID uuid.UUID, onlyClaimable bool, limit, offset int) ([]Reward, error)

	// ClaimAll claims every claimable reward of the user through the same
	// per-item Claim path.
	ClaimAll(ctx context.Context, userID uuid.UUID) (*BatchResult, error)
}

type service struct {
	db        *sqlx.DB
	repo      Repository
	walletSvc wallet.Service
}

// NewService creates a new reward service
func NewService(db *sqlx.DB, repo Repository, walletSvc wallet.Service) Service {
	return &service{db: db, repo: repo, walletSvc: walletSvc}
}

func (s *service) Grant(ctx context.Context, userID uuid.UUID, kind Kind, amount decimal.Decimal, reason string, expiresAt *time.Time, metadata map[string]string) (*Reward, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	rw := &Reward{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	if expiresAt != nil {
		rw.ExpiresAt = sql.NullTime{Time: *expiresAt, Valid: true}
	}
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal metadata", ErrInternal)
		}
		rw.Metadata = raw
	}

	if err := s.repo.Create(ctx, rw); err != nil {
		return nil, err
	}
	return rw, nil
}

func (s *service) Claim(ctx context.Context, rewardID, userID uuid.UUID) (*Reward, error) {
	rw, err := s.repo.Get(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	if rw.UserID != userID {
		return nil, ErrNotOwner
	}

	// The wallet may not exist yet for rewards granted before first use.
	if _, _, err := s.walletSvc.EnsureWallet(ctx, userID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	if err := s.repo.ClaimTx(ctx, tx, rewardID); err != nil {
		return nil, err
	}

	creditTxn, err := s.walletSvc.CreditTx(ctx, tx, userID, wallet.Entry{
		Kind:     wallet.TxKindEarned,
		Amount:   rw.Amount,
		Reason:   fmt.Sprintf("Reward: %s", rw.Reason),
		Metadata: map[string]string{"reward_id": rw.ID.String(), "reward_kind": string(rw.Kind)},
	})
	if err != nil {
		// Credit failed: the claim flip rolls back with it, the reward stays unclaimed.
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit tx", ErrInternal)
	}

	s.walletSvc.PublishApplied(ctx, userID, creditTxn)

	now := time.Now().UTC()
	rw.Claimed = true
	rw.ClaimedAt = sql.NullTime{Time: now, Valid: true}
	return rw, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, onlyClaimable bool, limit, offset int) ([]Reward, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, onlyClaimable, Pagination{Limit: limit, Offset: offset})
}

func (s *service) ClaimAll(ctx context.Context, userID uuid.UUID) (*BatchResult, error) {
	ids, err := s.repo.ListClaimableIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for _, id := range ids {
		_, err := s.Claim(ctx, id, userID)
		switch {
		case err == nil:
			result.Claimed++
		case errors.Is(err, ErrAlreadyFinalized), errors.Is(err, ErrExpired):
			result.Skipped++
		default:
			result.Errors++
			log.Error().Err(err).Str("reward_id", id.String()).Msg("Batch reward claim failed")
		}
	}
	return result, nil
}
