package reward

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GrantRequest for admin-issued rewards
type GrantRequest struct {
	UserID    string            `json:"user_id" validate:"required,uuid"`
	Kind      string            `json:"kind" validate:"required,reward_kind"`
	Amount    string            `json:"amount" validate:"required,amount"`
	Reason    string            `json:"reason" validate:"required,max=255"`
	ExpiresAt string            `json:"expires_at,omitempty"` // RFC3339
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// RewardResponse for API responses
type RewardResponse struct {
	ID        uuid.UUID         `json:"id"`
	Kind      string            `json:"kind"`
	Amount    string            `json:"amount"`
	Reason    string            `json:"reason"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Claimed   bool              `json:"claimed"`
	ClaimedAt string            `json:"claimed_at,omitempty"`
	ExpiresAt string            `json:"expires_at,omitempty"`
	CreatedAt string            `json:"created_at"`
}

// ToResponse converts entity to response
func ToResponse(rw *Reward) *RewardResponse {
	resp := &RewardResponse{
		ID:        rw.ID,
		Kind:      string(rw.Kind),
		Amount:    rw.Amount.String(),
		Reason:    rw.Reason,
		Claimed:   rw.Claimed,
		CreatedAt: rw.CreatedAt.Format(time.RFC3339),
	}

	if rw.ClaimedAt.Valid {
		resp.ClaimedAt = rw.ClaimedAt.Time.Format(time.RFC3339)
	}
	if rw.ExpiresAt.Valid {
		resp.ExpiresAt = rw.ExpiresAt.Time.Format(time.RFC3339)
	}
	if len(rw.Metadata) > 0 {
		var meta map[string]string
		if err := json.Unmarshal(rw.Metadata, &meta); err == nil {
			resp.Metadata = meta
		}
	}

	return resp
}

// BatchResultResponse for claim-all responses
type BatchResultResponse struct {
	Claimed int `json:"claimed"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}
