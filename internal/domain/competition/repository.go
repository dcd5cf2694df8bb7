package competition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const queryTimeout = 3 * time.Second

const competitionColumns = `
	id, name, comp_type, entry_fee, prize_pool, max_participants, current_participants,
	starts_at, ends_at, status, rules, prize_distribution, owner_id, created_at, updated_at
`

const participationColumns = `
	id, competition_id, user_id, entry_fee_paid, score, rank, prizes_won, joined_at, completed_at
`

// Repository provides competition and participation persistence.
type Repository interface {
	Create(ctx context.Context, c *Competition) error
	Get(ctx context.Context, id uuid.UUID) (*Competition, error)
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Competition, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	IncrementParticipantsTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
	CreateParticipationTx(ctx context.Context, tx *sqlx.Tx, p *Participation) error
	GetParticipation(ctx context.Context, competitionID, userID uuid.UUID) (*Participation, error)
	ListActive(ctx context.Context, pagination Pagination) ([]Competition, error)
	ListParticipants(ctx context.Context, competitionID uuid.UUID, pagination Pagination) ([]Participation, error)
	UpdateScore(ctx context.Context, competitionID, userID uuid.UUID, score int64) error
	AddPrizeTx(ctx context.Context, tx *sqlx.Tx, competitionID, userID uuid.UUID, prize decimal.Decimal) error
}

// CompetitionRepository implements Repository on PostgreSQL.
type CompetitionRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

func (r *CompetitionRepository) Create(ctx context.Context, c *Competition) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO competitions (
			id, name, comp_type, entry_fee, prize_pool, max_participants, current_participants,
			starts_at, ends_at, status, rules, prize_distribution, owner_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, $10, $11, $12, $13, $13)
	`, c.ID, c.Name, c.CompType, c.EntryFee, c.PrizePool, c.MaxParticipants,
		c.StartsAt, c.EndsAt, c.Status, c.Rules, c.PrizeDistribution, c.OwnerID, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert competition", ErrInternal)
	}
	return nil
}

func (r *CompetitionRepository) Get(ctx context.Context, id uuid.UUID) (*Competition, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var c Competition
	err := r.db.GetContext(ctx2, &c, `SELECT `+competitionColumns+` FROM competitions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("%w: get competition", ErrInternal)
	}
	return &c, nil
}

// GetForUpdate locks the competition row so the capacity re-check, the
// counter increment and the participation insert see a stable row.
func (r *CompetitionRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Competition, error) {
	var c Competition
	err := tx.GetContext(ctx, &c, `SELECT `+competitionColumns+` FROM competitions WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("%w: lock competition row", ErrInternal)
	}
	return &c, nil
}

func (r *CompetitionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		UPDATE competitions SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return fmt.Errorf("%w: update competition status", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// IncrementParticipantsTx bumps the counter, re-checking the cap in SQL.
func (r *CompetitionRepository) IncrementParticipantsTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE competitions
		SET current_participants = current_participants + 1, updated_at = now()
		WHERE id = $1 AND (max_participants IS NULL OR current_participants < max_participants)
	`, id)
	if err != nil {
		return fmt.Errorf("%w: increment participants", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		return ErrCapacityExceeded
	}
	return nil
}

func (r *CompetitionRepository) CreateParticipationTx(ctx context.Context, tx *sqlx.Tx, p *Participation) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO participations (id, competition_id, user_id, entry_fee_paid, score, prizes_won, joined_at)
		VALUES ($1, $2, $3, $4, 0, 0, $5)
	`, p.ID, p.CompetitionID, p.UserID, p.EntryFeePaid, p.JoinedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyJoined
		}
		return fmt.Errorf("%w: insert participation", ErrInternal)
	}
	return nil
}

func (r *CompetitionRepository) GetParticipation(ctx context.Context, competitionID, userID uuid.UUID) (*Participation, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var p Participation
	err := r.db.GetContext(ctx2, &p, `
		SELECT `+participationColumns+` FROM participations
		WHERE competition_id = $1 AND user_id = $2
	`, competitionID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipationNotFound
		}
		return nil, fmt.Errorf("%w: get participation", ErrInternal)
	}
	return &p, nil
}

func (r *CompetitionRepository) ListActive(ctx context.Context, pagination Pagination) ([]Competition, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	limit := pagination.Limit
	if limit <= 0 {
		limit = 20
	}

	competitions := make([]Competition, 0)
	err := r.db.SelectContext(ctx2, &competitions, `
		SELECT `+competitionColumns+` FROM competitions
		WHERE status = 'active' AND ends_at > now()
		ORDER BY starts_at
		LIMIT $1 OFFSET $2
	`, limit, pagination.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list active competitions", ErrInternal)
	}
	return competitions, nil
}

func (r *CompetitionRepository) ListParticipants(ctx context.Context, competitionID uuid.UUID, pagination Pagination) ([]Participation, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	limit := pagination.Limit
	if limit <= 0 {
		limit = 50
	}

	participants := make([]Participation, 0)
	err := r.db.SelectContext(ctx2, &participants, `
		SELECT `+participationColumns+` FROM participations
		WHERE competition_id = $1
		ORDER BY score DESC, joined_at
		LIMIT $2 OFFSET $3
	`, competitionID, limit, pagination.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list participants", ErrInternal)
	}
	return participants, nil
}

func (r *CompetitionRepository) UpdateScore(ctx context.Context, competitionID, userID uuid.UUID, score int64) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		UPDATE participations SET score = $3
		WHERE competition_id = $1 AND user_id = $2
	`, competitionID, userID, score)
	if err != nil {
		return fmt.Errorf("%w: update score", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		return ErrParticipationNotFound
	}
	return nil
}

func (r *CompetitionRepository) AddPrizeTx(ctx context.Context, tx *sqlx.Tx, competitionID, userID uuid.UUID, prize decimal.Decimal) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE participations SET prizes_won = prizes_won + $3
		WHERE competition_id = $1 AND user_id = $2
	`, competitionID, userID, prize)
	if err != nil {
		return fmt.Errorf("%w: add prize", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		return ErrParticipationNotFound
	}
	return nil
}
