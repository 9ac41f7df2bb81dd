package models

import "time"

// User is a registered contest participant. Registration is manual:
// unknown Telegram accounts are rejected at the gate.
type User struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"telegram_id"`
	IsAdmin    bool      `db:"is_admin"`
	UsedBot    bool      `db:"used_bot"`
	BlockedBot bool      `db:"blocked_bot"`
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// League mirrors a football league known to the external stats provider.
// APIID is the provider's identifier; local overrides allow custom display names.
type League struct {
	ID           int64   `db:"id"`
	APIID        int64   `db:"api_id"`
	Country      string  `db:"country"`
	Name         string  `db:"name"`
	LogoURL      string  `db:"logo_url"`
	CountryLocal *string `db:"country_local"`
	NameLocal    *string `db:"name_local"`
}

// Season is one league year as reported by the stats provider.
type Season struct {
	ID        int64     `db:"id"`
	LeagueID  int64     `db:"league_id"`
	Year      int       `db:"year"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	Current   bool      `db:"current"`
	Finished  bool      `db:"finished"`
}

// BetContest is a prediction contest bound to a single season.
// At most one contest may exist per season.
type BetContest struct {
	ID        int64     `db:"id"`
	SeasonID  int64     `db:"season_id"`
	CreatedBy int64     `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
}

// Match is a fixture within a contest that participants predict.
type Match struct {
	ID        int64     `db:"id"`
	ContestID int64     `db:"contest_id"`
	Label     string    `db:"label"`
	StartsAt  time.Time `db:"starts_at"`
}

// Bet is a participant's score prediction for a match. Scores are kept as
// entered: validation is deliberately shallow and the raw text is preserved.
type Bet struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	MatchID   int64     `db:"match_id"`
	HomeScore string    `db:"home_score"`
	AwayScore string    `db:"away_score"`
	RawText   string    `db:"raw_text"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
