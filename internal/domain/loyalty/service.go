package loyalty

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/shiebas/safa-connect-sub002/internal/domain/wallet"
)

// Service defines the loyalty conversion operations.
type Service interface {
	// Convert exchanges points for coins at the configured rate. Fractional
	// coins are kept; only conversions below one full rate unit are rejected.
	Convert(ctx context.Context, userID uuid.UUID, points int64) (*Conversion, error)

	// Preview computes the coin amount for points without converting.
	Preview(points int64, rate int64) (decimal.Decimal, error)

	// ListConversions returns the user's conversion history, newest first.
	ListConversions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Conversion, error)
}

type service struct {
	db        *sqlx.DB
	repo      Repository
	walletSvc wallet.Service
	rate      int64
}

// NewService creates a loyalty service. rate is loyalty points per coin.
func NewService(db *sqlx.DB, repo Repository, walletSvc wallet.Service, rate int64) Service {
	if rate <= 0 {
		rate = 10
	}
	return &service{db: db, repo: repo, walletSvc: walletSvc, rate: rate}
}

func (s *service) Convert(ctx context.Context, userID uuid.UUID, points int64) (*Conversion, error) {
	coins, err := s.Preview(points, s.rate)
	if err != nil {
		return nil, err
	}

	if _, _, err := s.walletSvc.EnsureWallet(ctx, userID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	c := &Conversion{
		ID:          uuid.New(),
		UserID:      userID,
		Points:      points,
		Rate:        s.rate,
		Coins:       coins,
		ConvertedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateTx(ctx, tx, c); err != nil {
		return nil, err
	}

	txn, err := s.walletSvc.CreditTx(ctx, tx, userID, wallet.Entry{
		Kind:   wallet.TxKindLoyaltyConversion,
		Amount: coins,
		Reason: fmt.Sprintf("Loyalty conversion: %d points", points),
		Metadata: map[string]string{
			"conversion_id": c.ID.String(),
			"rate":          fmt.Sprintf("%d", s.rate),
		},
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit tx", ErrInternal)
	}

	s.walletSvc.PublishApplied(ctx, userID, txn)
	return c, nil
}

func (s *service) Preview(points int64, rate int64) (decimal.Decimal, error) {
	if rate <= 0 {
		return decimal.Zero, ErrInvalidRate
	}
	if points < rate {
		return decimal.Zero, ErrBelowMinimum
	}
	return decimal.NewFromInt(points).Div(decimal.NewFromInt(rate)), nil
}

func (s *service) ListConversions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, Pagination{Limit: limit, Offset: offset})
}
