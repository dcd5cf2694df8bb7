package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// TxKind defines supported ledger transaction kinds.
type TxKind string

const (
	TxKindEarned            TxKind = "earned"
	TxKindSpent             TxKind = "spent"
	TxKindTransferSent      TxKind = "transfer_sent"
	TxKindTransferReceived  TxKind = "transfer_received"
	TxKindRefund            TxKind = "refund"
	TxKindBonus             TxKind = "bonus"
	TxKindLoyaltyConversion TxKind = "loyalty_conversion"
	TxKindGamingReward      TxKind = "gaming_reward"
	TxKindGamingEntry       TxKind = "gaming_entry"
)

// Valid reports whether k is a known transaction kind.
func (k TxKind) Valid() bool {
	switch k {
	case TxKindEarned, TxKindSpent, TxKindTransferSent, TxKindTransferReceived,
		TxKindRefund, TxKindBonus, TxKindLoyaltyConversion, TxKindGamingReward, TxKindGamingEntry:
		return true
	}
	return false
}

// IsCredit reports whether k increases the balance.
func (k TxKind) IsCredit() bool {
	switch k {
	case TxKindEarned, TxKindTransferReceived, TxKindRefund, TxKindBonus,
		TxKindLoyaltyConversion, TxKindGamingReward:
		return true
	}
	return false
}

// Wallet is the per-user coin balance record.
// Invariant: Balance = LifetimeEarned - LifetimeSpent, Balance >= 0.
type Wallet struct {
	ID             uuid.UUID       `db:"id"`
	UserID         uuid.UUID       `db:"user_id"`
	Balance        decimal.Decimal `db:"balance"`
	LifetimeEarned decimal.Decimal `db:"lifetime_earned"`
	LifetimeSpent  decimal.Decimal `db:"lifetime_spent"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// Transaction is an immutable ledger row. BalanceAfter snapshots the wallet
// balance immediately after the row was applied.
type Transaction struct {
	ID            uuid.UUID       `db:"id"`
	WalletID      uuid.UUID       `db:"wallet_id"`
	Kind          TxKind          `db:"kind"`
	Amount        decimal.Decimal `db:"amount"`
	Reason        string          `db:"reason"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	RelatedUserID uuid.NullUUID   `db:"related_user_id"`
	Metadata      types.JSONText  `db:"metadata"`
	CreatedAt     time.Time       `db:"created_at"`
}

// Entry describes one balance change to apply.
type Entry struct {
	Kind          TxKind
	Amount        decimal.Decimal
	Reason        string
	RelatedUserID *uuid.UUID
	Metadata      map[string]string
}

// Pagination controls simple list pagination.
type Pagination struct {
	Limit  int
	Offset int
}

// SearchFilters provides admin-facing transaction filtering.
type SearchFilters struct {
	UserID   *uuid.UUID
	Kind     *TxKind
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}
