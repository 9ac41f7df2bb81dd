package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"betbot/internal/models"
)

// ErrDuplicateContest is returned when a contest already exists for the season.
// The unique constraint on season_id is the final arbiter under concurrency.
var ErrDuplicateContest = errors.New("contest already exists for season")

// Contests provides access to prediction contests and their participants.
type Contests struct {
	db *sqlx.DB
}

// NewContests creates a contest store backed by the given database.
func NewContests(db *sqlx.DB) *Contests {
	return &Contests{db: db}
}

// Latest returns the most recently created contest, or nil if none exist.
func (s *Contests) Latest(ctx context.Context) (*models.BetContest, error) {
	var c models.BetContest
	err := s.db.GetContext(ctx, &c,
		`SELECT id, season_id, created_by, created_at FROM bet_contests ORDER BY created_at DESC LIMIT 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest contest: %w", err)
	}
	return &c, nil
}

// ListBySeason returns contests bound to the given season.
func (s *Contests) ListBySeason(ctx context.Context, seasonID int64) ([]models.BetContest, error) {
	var contests []models.BetContest
	err := s.db.SelectContext(ctx, &contests,
		`SELECT id, season_id, created_by, created_at FROM bet_contests WHERE season_id = $1`,
		seasonID)
	if err != nil {
		return nil, fmt.Errorf("list contests by season: %w", err)
	}
	return contests, nil
}

// Insert adds a new contest and fills the generated ID.
// A concurrent insert for the same season yields ErrDuplicateContest.
func (s *Contests) Insert(ctx context.Context, c *models.BetContest) error {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO bet_contests (season_id, created_by)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		c.SeasonID, c.CreatedBy,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateContest
		}
		return fmt.Errorf("insert contest: %w", err)
	}
	return nil
}

// AddParticipant enrolls a user into a contest. Re-joining is a no-op.
func (s *Contests) AddParticipant(ctx context.Context, contestID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bet_contest_users (contest_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (contest_id, user_id) DO NOTHING`,
		contestID, userID)
	if err != nil {
		return fmt.Errorf("add contest participant: %w", err)
	}
	return nil
}
