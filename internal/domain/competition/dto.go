package competition

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest for admin competition creation
type CreateRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=255"`
	CompType        string `json:"comp_type" validate:"required,max=50"`
	EntryFee        string `json:"entry_fee" validate:"required"`
	PrizePool       string `json:"prize_pool,omitempty"`
	MaxParticipants *int   `json:"max_participants,omitempty" validate:"omitempty,min=1"`
	StartsAt        string `json:"starts_at" validate:"required"` // RFC3339
	EndsAt          string `json:"ends_at" validate:"required"`   // RFC3339
	Rules           string `json:"rules,omitempty"`
}

// SetStatusRequest for lifecycle transitions
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,competition_status"`
}

// RecordScoreRequest for score updates
type RecordScoreRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Score  int64  `json:"score"`
}

// AwardPrizeRequest for prize payouts
type AwardPrizeRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Amount string `json:"amount" validate:"required,amount"`
	Reason string `json:"reason" validate:"required,max=255"`
}

// CompetitionResponse for API responses
type CompetitionResponse struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	CompType            string    `json:"comp_type"`
	EntryFee            string    `json:"entry_fee"`
	PrizePool           string    `json:"prize_pool"`
	MaxParticipants     *int      `json:"max_participants,omitempty"`
	CurrentParticipants int       `json:"current_participants"`
	StartsAt            string    `json:"starts_at"`
	EndsAt              string    `json:"ends_at"`
	Status              string    `json:"status"`
	Rules               string    `json:"rules,omitempty"`
}

// ToResponse converts entity to response
func ToResponse(c *Competition) *CompetitionResponse {
	resp := &CompetitionResponse{
		ID:                  c.ID,
		Name:                c.Name,
		CompType:            c.CompType,
		EntryFee:            c.EntryFee.String(),
		PrizePool:           c.PrizePool.String(),
		CurrentParticipants: c.CurrentParticipants,
		StartsAt:            c.StartsAt.Format(time.RFC3339),
		EndsAt:              c.EndsAt.Format(time.RFC3339),
		Status:              string(c.Status),
		Rules:               c.Rules,
	}

	if c.MaxParticipants.Valid {
		max := int(c.MaxParticipants.Int32)
		resp.MaxParticipants = &max
	}

	return resp
}

// ParticipationResponse for API responses
type ParticipationResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	EntryFeePaid string    `json:"entry_fee_paid"`
	Score        int64     `json:"score"`
	Rank         *int      `json:"rank,omitempty"`
	PrizesWon    string    `json:"prizes_won"`
	JoinedAt     string    `json:"joined_at"`
}

// ToParticipationResponse converts entity to response
func ToParticipationResponse(p *Participation) *ParticipationResponse {
	resp := &ParticipationResponse{
		ID:           p.ID,
		UserID:       p.UserID,
		EntryFeePaid: p.EntryFeePaid.String(),
		Score:        p.Score,
		PrizesWon:    p.PrizesWon.String(),
		JoinedAt:     p.JoinedAt.Format(time.RFC3339),
	}

	if p.Rank.Valid {
		rank := int(p.Rank.Int32)
		resp.Rank = &rank
	}

	return resp
}
