package loyalty

import (
	"time"

	"github.com/google/uuid"
)

// ConvertRequest for points-to-coins conversion
type ConvertRequest struct {
	Points int64 `json:"points" validate:"required,min=1"`
}

// ConversionResponse for API responses
type ConversionResponse struct {
	ID          uuid.UUID `json:"id"`
	Points      int64     `json:"points"`
	Rate        int64     `json:"rate"`
	Coins       string    `json:"coins"`
	ConvertedAt string    `json:"converted_at"`
}

// ToResponse converts entity to response
func ToResponse(c *Conversion) *ConversionResponse {
	return &ConversionResponse{
		ID:          c.ID,
		Points:      c.Points,
		Rate:        c.Rate,
		Coins:       c.Coins.String(),
		ConvertedAt: c.ConvertedAt.Format(time.RFC3339),
	}
}
