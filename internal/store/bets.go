package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"betbot/internal/models"
)

// Bets provides access to participant predictions.
type Bets struct {
	db *sqlx.DB
}

// NewBets creates a bet store backed by the given database.
func NewBets(db *sqlx.DB) *Bets {
	return &Bets{db: db}
}

// Upsert stores a prediction, replacing any earlier one for the same match.
func (s *Bets) Upsert(ctx context.Context, b *models.Bet) error {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO bets (user_id, match_id, home_score, away_score, raw_text)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, match_id) DO UPDATE
		 SET home_score = EXCLUDED.home_score,
		     away_score = EXCLUDED.away_score,
		     raw_text   = EXCLUDED.raw_text,
		     updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		b.UserID, b.MatchID, b.HomeScore, b.AwayScore, b.RawText,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert bet: %w", err)
	}
	return nil
}

// BetLine is a prediction joined with its match label for display.
type BetLine struct {
	models.Bet
	Label string `db:"label"`
}

// ListByUser returns a participant's predictions with match labels,
// ordered by kickoff time.
func (s *Bets) ListByUser(ctx context.Context, userID int64) ([]BetLine, error) {
	var lines []BetLine
	err := s.db.SelectContext(ctx, &lines,
		`SELECT b.id, b.user_id, b.match_id, b.home_score, b.away_score, b.raw_text,
		        b.created_at, b.updated_at, m.label
		 FROM bets b
		 JOIN matches m ON m.id = b.match_id
		 WHERE b.user_id = $1
		 ORDER BY m.starts_at, b.match_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list bets by user: %w", err)
	}
	return lines, nil
}
