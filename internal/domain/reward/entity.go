package reward

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Kind defines supported reward kinds.
type Kind string

const (
	KindFirstUse     Kind = "first_use"
	KindReferral     Kind = "referral"
	KindAchievement  Kind = "achievement"
	KindPromotion    Kind = "promotion"
	KindCompensation Kind = "compensation"
)

// Reward is a claimable coin grant, possibly time-limited.
// Once claimed it stays claimed; an expired reward can never be claimed.
type Reward struct {
	ID        uuid.UUID       `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	Kind      Kind            `db:"kind"`
	Amount    decimal.Decimal `db:"amount"`
	Reason    string          `db:"reason"`
	Metadata  types.JSONText  `db:"metadata"`
	Claimed   bool            `db:"claimed"`
	ClaimedAt sql.NullTime    `db:"claimed_at"`
	ExpiresAt sql.NullTime    `db:"expires_at"`
	CreatedAt time.Time       `db:"created_at"`
}

// Pagination controls simple list pagination.
type Pagination struct {
	Limit  int
	Offset int
}
