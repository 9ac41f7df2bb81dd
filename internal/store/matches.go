package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"betbot/internal/models"
)

// Matches provides access to contest fixtures.
type Matches struct {
	db *sqlx.DB
}

// NewMatches creates a match store backed by the given database.
func NewMatches(db *sqlx.DB) *Matches {
	return &Matches{db: db}
}

// ListUpcomingByContest returns fixtures of a contest that start after now,
// ordered by start time.
func (s *Matches) ListUpcomingByContest(ctx context.Context, contestID int64, now time.Time) ([]models.Match, error) {
	var matches []models.Match
	err := s.db.SelectContext(ctx, &matches,
		`SELECT id, contest_id, label, starts_at
		 FROM matches
		 WHERE contest_id = $1 AND starts_at > $2
		 ORDER BY starts_at`,
		contestID, now)
	if err != nil {
		return nil, fmt.Errorf("list upcoming matches: %w", err)
	}
	return matches, nil
}

// Insert adds a fixture and fills the generated ID.
func (s *Matches) Insert(ctx context.Context, m *models.Match) error {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO matches (contest_id, label, starts_at)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		m.ContestID, m.Label, m.StartsAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}
