package contest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"betbot/core/logger"
	"betbot/internal/models"
	"betbot/internal/statsapi"
	"betbot/internal/store"
	"log/slog"
)

// Outcome describes the result of a contest creation attempt.
type Outcome int

const (
	// OutcomeCreated means a new contest was created.
	OutcomeCreated Outcome = iota
	// OutcomeNoCurrentSeason means the provider reported no active season.
	OutcomeNoCurrentSeason
	// OutcomeConflict means a contest already exists for the season.
	OutcomeConflict
)

// Result carries the outcome and the records involved.
type Result struct {
	Outcome Outcome
	League  *models.League
	Season  *models.Season
	Contest *models.BetContest
}

// LeagueStore is the league persistence surface the reconciler needs.
type LeagueStore interface {
	GetByCountryAndName(ctx context.Context, country, name string) (*models.League, error)
	Insert(ctx context.Context, l *models.League) error
	Update(ctx context.Context, id int64, fields map[string]any) error
}

// SeasonStore is the season persistence surface the reconciler needs.
type SeasonStore interface {
	LastByLeague(ctx context.Context, leagueID int64) (*models.Season, error)
	Insert(ctx context.Context, s *models.Season) error
	Update(ctx context.Context, id int64, fields map[string]any) error
}

// ContestStore is the contest persistence surface the reconciler needs.
type ContestStore interface {
	ListBySeason(ctx context.Context, seasonID int64) ([]models.BetContest, error)
	Insert(ctx context.Context, c *models.BetContest) error
	AddParticipant(ctx context.Context, contestID, userID int64) error
}

// SeasonSource fetches the provider's current view of a league season.
type SeasonSource interface {
	FetchCurrentSeason(ctx context.Context, country, league string) (*statsapi.SeasonSnapshot, error)
}

// Reconciler aligns local league and season records with the stats provider
// and creates at most one contest per season. A process-wide mutex serializes
// attempts; the database unique constraint on season_id backs it up.
type Reconciler struct {
	mu       sync.Mutex
	leagues  LeagueStore
	seasons  SeasonStore
	contests ContestStore
	source   SeasonSource
	now      func() time.Time
}

// NewReconciler wires the reconciler with its stores and season source.
func NewReconciler(leagues LeagueStore, seasons SeasonStore, contests ContestStore, source SeasonSource) *Reconciler {
	return &Reconciler{
		leagues:  leagues,
		seasons:  seasons,
		contests: contests,
		source:   source,
		now:      time.Now,
	}
}

// CreateContest reconciles league and season state against the provider,
// then creates a contest for the current season. The operator is enrolled
// as the first participant. Steps stop at the first decisive outcome:
//
//  1. Unknown league: fetch snapshot, insert league, season, contest.
//  2. Known league, stale or matching season: diff-update league, then
//     insert or diff-update the season from a fresh snapshot.
//  3. Season present but finished: report no current season.
//  4. Season current with an existing contest: report conflict.
func (r *Reconciler) CreateContest(ctx context.Context, country, leagueName string, operatorID int64) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	league, err := r.leagues.GetByCountryAndName(ctx, country, leagueName)
	if err != nil {
		return nil, err
	}

	if league == nil {
		return r.createFresh(ctx, country, leagueName, operatorID)
	}

	season, err := r.seasons.LastByLeague(ctx, league.ID)
	if err != nil {
		return nil, err
	}

	if season == nil || !season.Current || season.Finished || r.seasonOver(season) {
		return r.refreshAndCreate(ctx, league, season, operatorID)
	}

	contests, err := r.contests.ListBySeason(ctx, season.ID)
	if err != nil {
		return nil, err
	}
	if len(contests) > 0 {
		logger.SVCContests.LogAttrs(ctx, slog.LevelInfo, "contest.conflict",
			slog.Int64("season_id", season.ID),
			slog.Int64("contest_id", contests[0].ID),
		)
		return &Result{Outcome: OutcomeConflict, League: league, Season: season, Contest: &contests[0]}, nil
	}

	return r.insertContest(ctx, league, season, operatorID)
}

// createFresh handles a league the system has never seen.
func (r *Reconciler) createFresh(ctx context.Context, country, leagueName string, operatorID int64) (*Result, error) {
	snap, err := r.fetchSnapshot(ctx, country, leagueName)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return &Result{Outcome: OutcomeNoCurrentSeason}, nil
	}

	league := &models.League{
		APIID:   snap.LeagueAPIID,
		Country: snap.Country,
		Name:    snap.LeagueName,
		LogoURL: snap.LogoURL,
	}
	if err := r.leagues.Insert(ctx, league); err != nil {
		return nil, err
	}
	logger.SVCContests.LogAttrs(ctx, slog.LevelInfo, "league.created",
		slog.Int64("league_id", league.ID),
		slog.String("country", league.Country),
		slog.String("league", league.Name),
	)

	season, err := r.insertSeason(ctx, league, snap)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return &Result{Outcome: OutcomeNoCurrentSeason, League: league}, nil
	}

	return r.insertContest(ctx, league, season, operatorID)
}

// refreshAndCreate re-fetches the provider snapshot for a known league,
// applies field-level diffs, and creates the contest for the fresh season.
func (r *Reconciler) refreshAndCreate(ctx context.Context, league *models.League, lastSeason *models.Season, operatorID int64) (*Result, error) {
	snap, err := r.fetchSnapshot(ctx, league.Country, league.Name)
	if err != nil {
		return nil, err
	}
	if snap == nil || !snap.Current {
		return &Result{Outcome: OutcomeNoCurrentSeason, League: league, Season: lastSeason}, nil
	}

	if fields := diffLeague(league, snap); len(fields) > 0 {
		if err := r.leagues.Update(ctx, league.ID, fields); err != nil {
			return nil, err
		}
		applyLeagueFields(league, fields)
		logger.SVCContests.LogAttrs(ctx, slog.LevelInfo, "league.updated",
			slog.Int64("league_id", league.ID),
			slog.Int("fields", len(fields)),
		)
	}

	var season *models.Season
	if lastSeason != nil && lastSeason.Year == snap.Year {
		if fields := diffSeason(lastSeason, snap); len(fields) > 0 {
			if err := r.seasons.Update(ctx, lastSeason.ID, fields); err != nil {
				return nil, err
			}
			applySeasonFields(lastSeason, fields)
			logger.SVCContests.LogAttrs(ctx, slog.LevelInfo, "season.updated",
				slog.Int64("season_id", lastSeason.ID),
				slog.Int("fields", len(fields)),
			)
		}
		season = lastSeason
	} else {
		if err := r.retireSeason(ctx, lastSeason); err != nil {
			return nil, err
		}
		season, err = r.insertSeason(ctx, league, snap)
		if err != nil {
			return nil, err
		}
	}
	if season == nil || !season.Current {
		return &Result{Outcome: OutcomeNoCurrentSeason, League: league, Season: season}, nil
	}

	contests, err := r.contests.ListBySeason(ctx, season.ID)
	if err != nil {
		return nil, err
	}
	if len(contests) > 0 {
		return &Result{Outcome: OutcomeConflict, League: league, Season: season, Contest: &contests[0]}, nil
	}

	return r.insertContest(ctx, league, season, operatorID)
}

func (r *Reconciler) fetchSnapshot(ctx context.Context, country, leagueName string) (*statsapi.SeasonSnapshot, error) {
	snap, err := r.source.FetchCurrentSeason(ctx, country, leagueName)
	if err != nil {
		if errors.Is(err, statsapi.ErrSeasonNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch season snapshot: %w", err)
	}
	return snap, nil
}

// retireSeason demotes a superseded season before a fresh year is inserted,
// keeping at most one current season per league.
func (r *Reconciler) retireSeason(ctx context.Context, s *models.Season) error {
	if s == nil {
		return nil
	}
	fields := make(map[string]any)
	if s.Current {
		fields["current"] = false
	}
	if !s.Finished {
		fields["finished"] = true
	}
	if len(fields) == 0 {
		return nil
	}
	if err := r.seasons.Update(ctx, s.ID, fields); err != nil {
		return err
	}
	s.Current = false
	s.Finished = true
	logger.SVCContests.LogAttrs(ctx, slog.LevelInfo, "season.retired",
		slog.Int64("season_id", s.ID),
		slog.Int("year", s.Year),
	)
	return nil
}

func (r *Reconciler) insertSeason(ctx context.Context, league *models.League, snap *statsapi.SeasonSnapshot) (*models.Season, error) {
	if !snap.Current {
		return nil, nil
	}
	season := &models.Season{
		LeagueID:  league.ID,
		Year:      snap.Year,
		StartDate: snap.StartDate,
		EndDate:   snap.EndDate,
		Current:   snap.Current,
	}
	if err := r.seasons.Insert(ctx, season); err != nil {
		return nil, err
	}
	logger.SVCContests.LogAttrs(ctx, slog.LevelInfo, "season.created",
		slog.Int64("season_id", season.ID),
		slog.Int64("league_id", league.ID),
		slog.Int("year", season.Year),
	)
	return season, nil
}

func (r *Reconciler) insertContest(ctx context.Context, league *models.League, season *models.Season, operatorID int64) (*Result, error) {
	contest := &models.BetContest{
		SeasonID:  season.ID,
		CreatedBy: operatorID,
	}
	if err := r.contests.Insert(ctx, contest); err != nil {
		if errors.Is(err, store.ErrDuplicateContest) {
			contests, listErr := r.contests.ListBySeason(ctx, season.ID)
			if listErr == nil && len(contests) > 0 {
				return &Result{Outcome: OutcomeConflict, League: league, Season: season, Contest: &contests[0]}, nil
			}
			return &Result{Outcome: OutcomeConflict, League: league, Season: season}, nil
		}
		return nil, err
	}

	if err := r.contests.AddParticipant(ctx, contest.ID, operatorID); err != nil {
		return nil, err
	}

	logger.SVCContests.LogAttrs(ctx, slog.LevelInfo, "contest.created",
		slog.Int64("contest_id", contest.ID),
		slog.Int64("season_id", season.ID),
		slog.Int64("user_id", operatorID),
	)
	return &Result{Outcome: OutcomeCreated, League: league, Season: season, Contest: contest}, nil
}

func (r *Reconciler) seasonOver(s *models.Season) bool {
	return !s.EndDate.IsZero() && r.now().After(s.EndDate)
}
