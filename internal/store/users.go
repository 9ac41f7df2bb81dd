package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"betbot/internal/models"
)

// Users provides access to registered participants.
type Users struct {
	db *sqlx.DB
}

// NewUsers creates a user store backed by the given database.
func NewUsers(db *sqlx.DB) *Users {
	return &Users{db: db}
}

const userColumns = `id, telegram_id, is_admin, used_bot, blocked_bot, first_name, last_name, created_at, updated_at`

// GetByTelegramID returns the user with the given Telegram ID, or nil if absent.
func (s *Users) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return &u, nil
}

// Registered reports whether a Telegram account belongs to a known participant.
func (s *Users) Registered(ctx context.Context, telegramID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE telegram_id = $1)`, telegramID)
	if err != nil {
		return false, fmt.Errorf("check user registered: %w", err)
	}
	return exists, nil
}

// Create inserts a new participant and fills the generated ID.
func (s *Users) Create(ctx context.Context, u *models.User) error {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO users (telegram_id, is_admin, first_name, last_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		u.TelegramID, u.IsAdmin, u.FirstName, u.LastName,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// TouchProfile records the first interaction of a participant with the bot
// and refreshes the display names Telegram reports.
func (s *Users) TouchProfile(ctx context.Context, telegramID int64, firstName, lastName string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users
		 SET used_bot = TRUE, first_name = $2, last_name = $3, updated_at = NOW()
		 WHERE telegram_id = $1`,
		telegramID, firstName, lastName)
	if err != nil {
		return fmt.Errorf("touch user profile: %w", err)
	}
	return nil
}

// MarkBlocked flags a participant as unreachable for outbound delivery.
func (s *Users) MarkBlocked(ctx context.Context, telegramID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET blocked_bot = TRUE, updated_at = NOW() WHERE telegram_id = $1`,
		telegramID)
	if err != nil {
		return fmt.Errorf("mark blocked: %w", err)
	}
	return nil
}

// MarkUnblocked clears the unreachable flag after a successful delivery.
func (s *Users) MarkUnblocked(ctx context.Context, telegramID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET blocked_bot = FALSE, updated_at = NOW() WHERE telegram_id = $1`,
		telegramID)
	if err != nil {
		return fmt.Errorf("mark unblocked: %w", err)
	}
	return nil
}

// List returns all participants ordered by creation time.
func (s *Users) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
