package loyalty

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

// Repository provides loyalty conversion persistence.
type Repository interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, c *Conversion) error
	ListByUser(ctx context.Context, userID uuid.UUID, pagination Pagination) ([]Conversion, error)
}

// ConversionRepository implements Repository on PostgreSQL.
type ConversionRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *ConversionRepository {
	return &ConversionRepository{db: db}
}

func (r *ConversionRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, c *Conversion) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO loyalty_conversions (id, user_id, points, rate, coins, converted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.UserID, c.Points, c.Rate, c.Coins, c.ConvertedAt)
	if err != nil {
		return fmt.Errorf("%w: insert conversion", ErrInternal)
	}
	return nil
}

func (r *ConversionRepository) ListByUser(ctx context.Context, userID uuid.UUID, pagination Pagination) ([]Conversion, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	limit := pagination.Limit
	if limit <= 0 {
		limit = 20
	}

	conversions := make([]Conversion, 0)
	err := r.db.SelectContext(ctx2, &conversions, `
		SELECT id, user_id, points, rate, coins, converted_at
		FROM loyalty_conversions
		WHERE user_id = $1
		ORDER BY converted_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, pagination.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list conversions", ErrInternal)
	}
	return conversions, nil
}
