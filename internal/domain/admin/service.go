package admin

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shiebas/safa-connect-sub002/internal/domain/wallet"
	"github.com/shiebas/safa-connect-sub002/internal/pkg/storage"
)

// exportPageSize bounds each ledger page fetched during an export.
const exportPageSize = 500

// ExportService writes ledger statements to object storage.
type ExportService interface {
	// ExportStatement renders a user's full ledger as CSV, uploads it and
	// returns the public URL.
	ExportStatement(ctx context.Context, userID uuid.UUID) (string, error)
}

type exportService struct {
	walletSvc wallet.Service
	store     *storage.R2Storage
}

// NewExportService creates an export service. store may be nil when R2 is
// not configured; exports are then rejected.
func NewExportService(walletSvc wallet.Service, store *storage.R2Storage) ExportService {
	return &exportService{walletSvc: walletSvc, store: store}
}

func (s *exportService) ExportStatement(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.store == nil {
		return "", ErrExportUnavailable
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"transaction_id", "kind", "amount", "reason", "balance_after", "related_user_id", "created_at"}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("%w: write csv header", ErrInternal)
	}

	offset := 0
	for {
		txns, err := s.walletSvc.ListTransactions(ctx, userID, exportPageSize, offset)
		if err != nil {
			return "", err
		}

		for i := range txns {
			txn := &txns[i]
			related := ""
			if txn.RelatedUserID.Valid {
				related = txn.RelatedUserID.UUID.String()
			}
			record := []string{
				txn.ID.String(),
				string(txn.Kind),
				txn.Amount.String(),
				txn.Reason,
				txn.BalanceAfter.String(),
				related,
				txn.CreatedAt.Format(time.RFC3339),
			}
			if err := w.Write(record); err != nil {
				return "", fmt.Errorf("%w: write csv record", ErrInternal)
			}
		}

		if len(txns) < exportPageSize {
			break
		}
		offset += exportPageSize
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("%w: flush csv", ErrInternal)
	}

	key := fmt.Sprintf("statements/%s/%s.csv", userID, time.Now().UTC().Format("20060102-150405"))
	if err := s.store.Put(ctx, key, buf.Bytes(), "text/csv"); err != nil {
		return "", fmt.Errorf("%w: upload statement", ErrInternal)
	}

	return s.store.GetURL(key), nil
}
