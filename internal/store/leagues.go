package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"betbot/internal/models"
)

// Leagues provides access to leagues mirrored from the stats provider.
type Leagues struct {
	db *sqlx.DB
}

// NewLeagues creates a league store backed by the given database.
func NewLeagues(db *sqlx.DB) *Leagues {
	return &Leagues{db: db}
}

const leagueColumns = `id, api_id, country, name, logo_url, country_local, name_local`

// GetByCountryAndName returns the league matching country and name, or nil if absent.
func (s *Leagues) GetByCountryAndName(ctx context.Context, country, name string) (*models.League, error) {
	var l models.League
	err := s.db.GetContext(ctx, &l,
		`SELECT `+leagueColumns+` FROM leagues WHERE country = $1 AND name = $2`, country, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get league: %w", err)
	}
	return &l, nil
}

// Insert adds a new league and fills the generated ID.
func (s *Leagues) Insert(ctx context.Context, l *models.League) error {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO leagues (api_id, country, name, logo_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		l.APIID, l.Country, l.Name, l.LogoURL,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("insert league: %w", err)
	}
	return nil
}

// Update applies only the given fields to the league row.
// An empty field map is a no-op.
func (s *Leagues) Update(ctx context.Context, id int64, fields map[string]any) error {
	set, args := buildSetClause(fields, 2)
	if set == "" {
		return nil
	}
	args = append([]any{id}, args...)
	_, err := s.db.ExecContext(ctx,
		`UPDATE leagues SET `+set+` WHERE id = $1`, args...)
	if err != nil {
		return fmt.Errorf("update league: %w", err)
	}
	return nil
}
