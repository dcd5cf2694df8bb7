package competition

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Status is the competition lifecycle state.
// Transitions: draft -> active -> {paused, completed, cancelled};
// paused -> active is the only cycle back.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusActive || next == StatusCancelled
	case StatusActive:
		return next == StatusPaused || next == StatusCompleted || next == StatusCancelled
	case StatusPaused:
		return next == StatusActive || next == StatusCompleted || next == StatusCancelled
	}
	return false
}

// Competition is a coin-gated contest with capped, fee-gated entry.
type Competition struct {
	ID                  uuid.UUID       `db:"id"`
	Name                string          `db:"name"`
	CompType            string          `db:"comp_type"`
	EntryFee            decimal.Decimal `db:"entry_fee"`
	PrizePool           decimal.Decimal `db:"prize_pool"`
	MaxParticipants     sql.NullInt32   `db:"max_participants"`
	CurrentParticipants int             `db:"current_participants"`
	StartsAt            time.Time       `db:"starts_at"`
	EndsAt              time.Time       `db:"ends_at"`
	Status              Status          `db:"status"`
	Rules               string          `db:"rules"`
	PrizeDistribution   types.JSONText  `db:"prize_distribution"`
	OwnerID             uuid.UUID       `db:"owner_id"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

// AcceptsEntries reports whether the competition can admit a participant now.
func (c *Competition) AcceptsEntries(now time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	if now.Before(c.StartsAt) || now.After(c.EndsAt) {
		return false
	}
	return true
}

// IsFull reports whether the participant cap is reached.
func (c *Competition) IsFull() bool {
	return c.MaxParticipants.Valid && c.CurrentParticipants >= int(c.MaxParticipants.Int32)
}

// Participation is a user's entry in a competition. Unique per (competition, user).
type Participation struct {
	ID            uuid.UUID       `db:"id"`
	CompetitionID uuid.UUID       `db:"competition_id"`
	UserID        uuid.UUID       `db:"user_id"`
	EntryFeePaid  decimal.Decimal `db:"entry_fee_paid"`
	Score         int64           `db:"score"`
	Rank          sql.NullInt32   `db:"rank"`
	PrizesWon     decimal.Decimal `db:"prizes_won"`
	JoinedAt      time.Time       `db:"joined_at"`
	CompletedAt   sql.NullTime    `db:"completed_at"`
}

// Pagination controls simple list pagination.
type Pagination struct {
	Limit  int
	Offset int
}
