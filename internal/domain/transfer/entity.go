package transfer

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the transfer lifecycle state.
// Transitions: pending -> completed or pending -> failed, never reversed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Transfer is a request to move coins between two wallets.
type Transfer struct {
	ID           uuid.UUID       `db:"id"`
	FromWalletID uuid.UUID       `db:"from_wallet_id"`
	ToWalletID   uuid.UUID       `db:"to_wallet_id"`
	Amount       decimal.Decimal `db:"amount"`
	Status       Status          `db:"status"`
	Message      string          `db:"message"`
	CreatedAt    time.Time       `db:"created_at"`
	CompletedAt  sql.NullTime    `db:"completed_at"`

	// Joined from wallets for execution and display.
	FromUserID uuid.UUID `db:"from_user_id"`
	ToUserID   uuid.UUID `db:"to_user_id"`
}

// Pagination controls simple list pagination.
type Pagination struct {
	Limit  int
	Offset int
}
