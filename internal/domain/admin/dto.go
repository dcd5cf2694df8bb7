package admin

import (
	"time"

	"github.com/shiebas/safa-connect-sub002/internal/domain/reward"
)

// GrantRewardRequest for admin reward grants
type GrantRewardRequest struct {
	UserID    string            `json:"user_id" validate:"required,uuid"`
	Kind      string            `json:"kind" validate:"required,reward_kind"`
	Amount    string            `json:"amount" validate:"required,amount"`
	Reason    string            `json:"reason" validate:"required,max=255"`
	ExpiresAt string            `json:"expires_at,omitempty"` // RFC3339
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// RewardResponse for admin grant responses
type RewardResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Kind      string `json:"kind"`
	Amount    string `json:"amount"`
	Reason    string `json:"reason"`
	Claimed   bool   `json:"claimed"`
	ExpiresAt string `json:"expires_at,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ToRewardResponse converts entity to response
func ToRewardResponse(rw *reward.Reward) *RewardResponse {
	resp := &RewardResponse{
		ID:        rw.ID.String(),
		UserID:    rw.UserID.String(),
		Kind:      string(rw.Kind),
		Amount:    rw.Amount.String(),
		Reason:    rw.Reason,
		Claimed:   rw.Claimed,
		CreatedAt: rw.CreatedAt.Format(time.RFC3339),
	}
	if rw.ExpiresAt.Valid {
		resp.ExpiresAt = rw.ExpiresAt.Time.Format(time.RFC3339)
	}
	return resp
}

// BatchTransfersResponse summarizes an execute-pending run
type BatchTransfersResponse struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Errors    int `json:"errors"`
}

// StatementResponse returns the export location
type StatementResponse struct {
	URL string `json:"url"`
}
