package contest

import (
	"time"

	"betbot/internal/models"
	"betbot/internal/statsapi"
)

// diffLeague compares a stored league against a provider snapshot and
// returns only the columns that changed. An empty map means no write.
func diffLeague(l *models.League, snap *statsapi.SeasonSnapshot) map[string]any {
	fields := make(map[string]any)
	if l.APIID != snap.LeagueAPIID {
		fields["api_id"] = snap.LeagueAPIID
	}
	if l.LogoURL != snap.LogoURL {
		fields["logo_url"] = snap.LogoURL
	}
	return fields
}

// diffSeason compares a stored season against a provider snapshot for the
// same year and returns only the columns that changed.
func diffSeason(s *models.Season, snap *statsapi.SeasonSnapshot) map[string]any {
	fields := make(map[string]any)
	if !s.StartDate.Equal(snap.StartDate) {
		fields["start_date"] = snap.StartDate
	}
	if !s.EndDate.Equal(snap.EndDate) {
		fields["end_date"] = snap.EndDate
	}
	if s.Current != snap.Current {
		fields["current"] = snap.Current
	}
	return fields
}

func applyLeagueFields(l *models.League, fields map[string]any) {
	if v, ok := fields["api_id"].(int64); ok {
		l.APIID = v
	}
	if v, ok := fields["logo_url"].(string); ok {
		l.LogoURL = v
	}
}

func applySeasonFields(s *models.Season, fields map[string]any) {
	if v, ok := fields["start_date"].(time.Time); ok {
		s.StartDate = v
	}
	if v, ok := fields["end_date"].(time.Time); ok {
		s.EndDate = v
	}
	if v, ok := fields["current"].(bool); ok {
		s.Current = v
	}
}
