package transfer

import (
	"time"

	"github.com/google/uuid"
)

// InitiateRequest for creating a transfer
type InitiateRequest struct {
	ToUserID string `json:"to_user_id" validate:"required,uuid"`
	Amount   string `json:"amount" validate:"required,amount"`
	Message  string `json:"message,omitempty" validate:"omitempty,max=255"`
}

// TransferResponse for API responses
type TransferResponse struct {
	ID          uuid.UUID `json:"id"`
	FromUserID  uuid.UUID `json:"from_user_id"`
	ToUserID    uuid.UUID `json:"to_user_id"`
	Amount      string    `json:"amount"`
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   string    `json:"created_at"`
	CompletedAt string    `json:"completed_at,omitempty"`
}

// ToResponse converts entity to response
func ToResponse(t *Transfer) *TransferResponse {
	resp := &TransferResponse{
		ID:         t.ID,
		FromUserID: t.FromUserID,
		ToUserID:   t.ToUserID,
		Amount:     t.Amount.String(),
		Status:     string(t.Status),
		Message:    t.Message,
		CreatedAt:  t.CreatedAt.Format(time.RFC3339),
	}

	if t.CompletedAt.Valid {
		resp.CompletedAt = t.CompletedAt.Time.Format(time.RFC3339)
	}

	return resp
}
