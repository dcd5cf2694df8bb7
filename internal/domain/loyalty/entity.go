package loyalty

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Conversion records a points-to-coins exchange. Rate is the number of
// loyalty points exchanged for one coin at the time of conversion.
type Conversion struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	Points      int64           `db:"points"`
	Rate        int64           `db:"rate"`
	Coins       decimal.Decimal `db:"coins"`
	ConvertedAt time.Time       `db:"converted_at"`
}

// Pagination controls simple list pagination.
type Pagination struct {
	Limit  int
	Offset int
}
