package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"betbot/internal/models"
)

// Seasons provides access to league seasons.
type Seasons struct {
	db *sqlx.DB
}

// NewSeasons creates a season store backed by the given database.
func NewSeasons(db *sqlx.DB) *Seasons {
	return &Seasons{db: db}
}

const seasonColumns = `id, league_id, year, start_date, end_date, current, finished`

// LastByLeague returns the most recent season of a league, or nil if none exist.
func (s *Seasons) LastByLeague(ctx context.Context, leagueID int64) (*models.Season, error) {
	var season models.Season
	err := s.db.GetContext(ctx, &season,
		`SELECT `+seasonColumns+` FROM seasons WHERE league_id = $1 ORDER BY year DESC LIMIT 1`,
		leagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last season by league: %w", err)
	}
	return &season, nil
}

// Insert adds a new season and fills the generated ID.
func (s *Seasons) Insert(ctx context.Context, season *models.Season) error {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO seasons (league_id, year, start_date, end_date, current)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		season.LeagueID, season.Year, season.StartDate, season.EndDate, season.Current,
	).Scan(&season.ID)
	if err != nil {
		return fmt.Errorf("insert season: %w", err)
	}
	return nil
}

// Update applies only the given fields to the season row.
// An empty field map is a no-op.
func (s *Seasons) Update(ctx context.Context, id int64, fields map[string]any) error {
	set, args := buildSetClause(fields, 2)
	if set == "" {
		return nil
	}
	args = append([]any{id}, args...)
	_, err := s.db.ExecContext(ctx,
		`UPDATE seasons SET `+set+` WHERE id = $1`, args...)
	if err != nil {
		return fmt.Errorf("update season: %w", err)
	}
	return nil
}
