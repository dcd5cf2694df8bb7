package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/shiebas/safa-connect-sub002/internal/domain/wallet"
)

// BatchResult summarizes an ExecuteAllPending run.
type BatchResult struct {
	Completed int
	Failed    int
	Errors    int
}

// Service defines the transfer coordinator operations.
type Service interface {
	// Initiate creates a pending transfer. Rejects non-positive amounts and
	// self-transfers.
	Initiate(ctx context.Context, fromUserID, toUserID uuid.UUID, amount decimal.Decimal, message string) (*Transfer, error)

	// Execute settles a pending transfer: debit sender, credit recipient and
	// flip the status, all in one transaction. A transfer the sender cannot
	// afford is marked failed with no balance change; the returned error is
	// then wallet.ErrInsufficientFunds.
	Execute(ctx context.Context, id uuid.UUID) (*Transfer, error)

	Get(ctx context.Context, id uuid.UUID) (*Transfer, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transfer, error)

	// ExecuteAllPending settles every pending transfer through the same
	// per-item Execute path (admin batch).
	ExecuteAllPending(ctx context.Context) (*BatchResult, error)
}

type service struct {
	db        *sqlx.DB
	repo      Repository
	walletSvc wallet.Service
}

// NewService creates a new transfer service
func NewService(db *sqlx.DB, repo Repository, walletSvc wallet.Service) Service {
	return &service{db: db, repo: repo, walletSvc: walletSvc}
}

func (s *service) Initiate(ctx context.Context, fromUserID, toUserID uuid.UUID, amount decimal.Decimal, message string) (*Transfer, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if fromUserID == toUserID {
		return nil, ErrSelfTransfer
	}

	fromWallet, err := s.walletSvc.Get(ctx, fromUserID)
	if err != nil {
		return nil, err
	}

	// EnsureWallet fails on an unknown recipient (users FK violation).
	toWallet, _, err := s.walletSvc.EnsureWallet(ctx, toUserID)
	if err != nil {
		return nil, ErrRecipientNotFound
	}

	t := &Transfer{
		ID:           uuid.New(),
		FromWalletID: fromWallet.ID,
		ToWalletID:   toWallet.ID,
		Amount:       amount,
		Status:       StatusPending,
		Message:      message,
		CreatedAt:    time.Now().UTC(),
		FromUserID:   fromUserID,
		ToUserID:     toUserID,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Execute(ctx context.Context, id uuid.UUID) (*Transfer, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	t, err := s.repo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusPending {
		return t, ErrAlreadyFinalized
	}

	debitTxn, creditTxn, err := s.moveCoins(ctx, tx, t)
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			// Roll back the balance work, then record the terminal failure.
			tx.Rollback()
			if markErr := s.repo.MarkFailed(ctx, id); markErr != nil {
				return nil, markErr
			}
			t.Status = StatusFailed
			return t, wallet.ErrInsufficientFunds
		}
		return nil, err
	}

	if err := s.repo.MarkCompletedTx(ctx, tx, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit tx", ErrInternal)
	}

	t.Status = StatusCompleted
	s.walletSvc.PublishApplied(ctx, t.FromUserID, debitTxn)
	s.walletSvc.PublishApplied(ctx, t.ToUserID, creditTxn)

	return t, nil
}

// moveCoins debits the sender and credits the recipient inside tx. Wallet
// rows are locked in id order so two opposing transfers cannot deadlock.
func (s *service) moveCoins(ctx context.Context, tx *sqlx.Tx, t *Transfer) (debitTxn, creditTxn *wallet.Transaction, err error) {
	meta := map[string]string{"transfer_id": t.ID.String()}

	debit := func() error {
		debitTxn, err = s.walletSvc.DebitTx(ctx, tx, t.FromUserID, wallet.Entry{
			Kind:          wallet.TxKindTransferSent,
			Amount:        t.Amount,
			Reason:        fmt.Sprintf("Transfer to %s", t.ToUserID),
			RelatedUserID: &t.ToUserID,
			Metadata:      meta,
		})
		return err
	}
	credit := func() error {
		creditTxn, err = s.walletSvc.CreditTx(ctx, tx, t.ToUserID, wallet.Entry{
			Kind:          wallet.TxKindTransferReceived,
			Amount:        t.Amount,
			Reason:        fmt.Sprintf("Transfer from %s", t.FromUserID),
			RelatedUserID: &t.FromUserID,
			Metadata:      meta,
		})
		return err
	}

	// Deterministic lock order across both wallets.
	first, second := debit, credit
	if t.ToWalletID.String() < t.FromWalletID.String() {
		first, second = credit, debit
	}

	if err := first(); err != nil {
		return nil, nil, err
	}
	if err := second(); err != nil {
		return nil, nil, err
	}
	return debitTxn, creditTxn, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Transfer, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transfer, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, Pagination{Limit: limit, Offset: offset})
}

func (s *service) ExecuteAllPending(ctx context.Context) (*BatchResult, error) {
	ids, err := s.repo.ListPendingIDs(ctx, 0)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for _, id := range ids {
		_, err := s.Execute(ctx, id)
		switch {
		case err == nil:
			result.Completed++
		case errors.Is(err, wallet.ErrInsufficientFunds):
			result.Failed++
		case errors.Is(err, ErrAlreadyFinalized):
			// Settled concurrently, nothing to do.
		default:
			result.Errors++
			log.Error().Err(err).Str("transfer_id", id.String()).Msg("Batch transfer execution failed")
		}
	}
	return result, nil
}
