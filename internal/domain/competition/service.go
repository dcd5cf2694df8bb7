package competition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/shiebas/safa-connect-sub002/internal/domain/wallet"
)

// CreateParams holds the fields for a new competition.
type CreateParams struct {
	Name              string
	CompType          string
	EntryFee          decimal.Decimal
	PrizePool         decimal.Decimal
	MaxParticipants   *int
	StartsAt          time.Time
	EndsAt            time.Time
	Rules             string
	PrizeDistribution []byte
	OwnerID           uuid.UUID
}

// Service defines the competition entry gate operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Competition, error)

	// SetStatus applies a lifecycle transition, rejecting disallowed ones.
	SetStatus(ctx context.Context, id uuid.UUID, to Status) (*Competition, error)

	Get(ctx context.Context, id uuid.UUID) (*Competition, error)
	ListActive(ctx context.Context, limit, offset int) ([]Competition, error)
	ListParticipants(ctx context.Context, competitionID uuid.UUID, limit, offset int) ([]Participation, error)

	// CanJoin reports whether the user could join right now: active, within
	// the window, not full, and the entry fee affordable.
	CanJoin(ctx context.Context, competitionID, userID uuid.UUID) (bool, error)

	// Join admits the user: entry-fee debit, participant counter increment
	// and participation insert are one atomic unit. All checks rerun under
	// the competition row lock. A duplicate join is rejected without charge.
	Join(ctx context.Context, competitionID, userID uuid.UUID) (*Participation, error)

	// RecordScore updates a participant's score.
	RecordScore(ctx context.Context, competitionID, userID uuid.UUID, score int64) error

	// AwardPrize credits a participant's wallet from the prize pool and
	// tracks it on the participation, atomically.
	AwardPrize(ctx context.Context, competitionID, userID uuid.UUID, amount decimal.Decimal, reason string) error
}

type service struct {
	db        *sqlx.DB
	repo      Repository
	walletSvc wallet.Service
}

// NewService creates a new competition service
func NewService(db *sqlx.DB, repo Repository, walletSvc wallet.Service) Service {
	return &service{db: db, repo: repo, walletSvc: walletSvc}
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Competition, error) {
	if params.EntryFee.IsNegative() || params.PrizePool.IsNegative() {
		return nil, ErrInvalidAmount
	}

	c := &Competition{
		ID:        uuid.New(),
		Name:      params.Name,
		CompType:  params.CompType,
		EntryFee:  params.EntryFee,
		PrizePool: params.PrizePool,
		StartsAt:  params.StartsAt,
		EndsAt:    params.EndsAt,
		Status:    StatusDraft,
		Rules:     params.Rules,
		OwnerID:   params.OwnerID,
		CreatedAt: time.Now().UTC(),
	}
	if params.MaxParticipants != nil {
		c.MaxParticipants = sql.NullInt32{Int32: int32(*params.MaxParticipants), Valid: true}
	}
	if len(params.PrizeDistribution) > 0 {
		c.PrizeDistribution = params.PrizeDistribution
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, to Status) (*Competition, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Status.CanTransitionTo(to) {
		return nil, ErrInvalidTransition
	}

	// Conditional on the status we read, so a concurrent transition loses.
	if err := s.repo.UpdateStatus(ctx, id, c.Status, to); err != nil {
		return nil, err
	}

	c.Status = to
	return c, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Competition, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) ListActive(ctx context.Context, limit, offset int) ([]Competition, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListActive(ctx, Pagination{Limit: limit, Offset: offset})
}

func (s *service) ListParticipants(ctx context.Context, competitionID uuid.UUID, limit, offset int) ([]Participation, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListParticipants(ctx, competitionID, Pagination{Limit: limit, Offset: offset})
}

func (s *service) CanJoin(ctx context.Context, competitionID, userID uuid.UUID) (bool, error) {
	c, err := s.repo.Get(ctx, competitionID)
	if err != nil {
		return false, err
	}

	if !c.AcceptsEntries(time.Now().UTC()) || c.IsFull() {
		return false, nil
	}

	if _, err := s.repo.GetParticipation(ctx, competitionID, userID); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrParticipationNotFound) {
		return false, err
	}

	if c.EntryFee.IsZero() {
		return true, nil
	}

	affordable, err := s.walletSvc.CanAfford(ctx, userID, c.EntryFee)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound) {
			return false, nil
		}
		return false, err
	}
	return affordable, nil
}

func (s *service) Join(ctx context.Context, competitionID, userID uuid.UUID) (*Participation, error) {
	if _, _, err := s.walletSvc.EnsureWallet(ctx, userID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	c, err := s.repo.GetForUpdate(ctx, tx, competitionID)
	if err != nil {
		return nil, err
	}

	// Re-check everything under the lock; the pre-commit world may have moved.
	if !c.AcceptsEntries(time.Now().UTC()) {
		return nil, ErrNotActive
	}
	if err := s.repo.IncrementParticipantsTx(ctx, tx, competitionID); err != nil {
		return nil, err
	}

	p := &Participation{
		ID:            uuid.New(),
		CompetitionID: competitionID,
		UserID:        userID,
		EntryFeePaid:  c.EntryFee,
		PrizesWon:     decimal.Zero,
		JoinedAt:      time.Now().UTC(),
	}
	if err := s.repo.CreateParticipationTx(ctx, tx, p); err != nil {
		return nil, err
	}

	var feeTxn *wallet.Transaction
	if c.EntryFee.IsPositive() {
		feeTxn, err = s.walletSvc.DebitTx(ctx, tx, userID, wallet.Entry{
			Kind:     wallet.TxKindGamingEntry,
			Amount:   c.EntryFee,
			Reason:   fmt.Sprintf("Entry fee for %s", c.Name),
			Metadata: map[string]string{"competition_id": c.ID.String()},
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit tx", ErrInternal)
	}

	if feeTxn != nil {
		s.walletSvc.PublishApplied(ctx, userID, feeTxn)
	}
	return p, nil
}

func (s *service) RecordScore(ctx context.Context, competitionID, userID uuid.UUID, score int64) error {
	return s.repo.UpdateScore(ctx, competitionID, userID, score)
}

func (s *service) AwardPrize(ctx context.Context, competitionID, userID uuid.UUID, amount decimal.Decimal, reason string) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	c, err := s.repo.Get(ctx, competitionID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	if err := s.repo.AddPrizeTx(ctx, tx, competitionID, userID, amount); err != nil {
		return err
	}

	prizeTxn, err := s.walletSvc.CreditTx(ctx, tx, userID, wallet.Entry{
		Kind:     wallet.TxKindGamingReward,
		Amount:   amount,
		Reason:   fmt.Sprintf("Prize: %s (%s)", reason, c.Name),
		Metadata: map[string]string{"competition_id": c.ID.String()},
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit tx", ErrInternal)
	}

	s.walletSvc.PublishApplied(ctx, userID, prizeTxn)
	return nil
}
