package wallet

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WalletResponse for API responses. Amounts travel as decimal strings.
type WalletResponse struct {
	ID             uuid.UUID `json:"id"`
	Balance        string    `json:"balance"`
	LifetimeEarned string    `json:"lifetime_earned"`
	LifetimeSpent  string    `json:"lifetime_spent"`
	CreatedAt      string    `json:"created_at"`
}

// ToWalletResponse converts entity to response
func ToWalletResponse(w *Wallet) *WalletResponse {
	return &WalletResponse{
		ID:             w.ID,
		Balance:        w.Balance.String(),
		LifetimeEarned: w.LifetimeEarned.String(),
		LifetimeSpent:  w.LifetimeSpent.String(),
		CreatedAt:      w.CreatedAt.Format(time.RFC3339),
	}
}

// TransactionResponse for API responses
type TransactionResponse struct {
	ID            uuid.UUID         `json:"id"`
	Kind          string            `json:"kind"`
	Amount        string            `json:"amount"`
	Reason        string            `json:"reason"`
	BalanceAfter  string            `json:"balance_after"`
	RelatedUserID string            `json:"related_user_id,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     string            `json:"created_at"`
}

// ToTransactionResponse converts entity to response
func ToTransactionResponse(t *Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:           t.ID,
		Kind:         string(t.Kind),
		Amount:       t.Amount.String(),
		Reason:       t.Reason,
		BalanceAfter: t.BalanceAfter.String(),
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	}

	if t.RelatedUserID.Valid {
		resp.RelatedUserID = t.RelatedUserID.UUID.String()
	}
	if len(t.Metadata) > 0 {
		var meta map[string]string
		if err := json.Unmarshal(t.Metadata, &meta); err == nil {
			resp.Metadata = meta
		}
	}

	return resp
}
