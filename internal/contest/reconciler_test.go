package contest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"betbot/internal/models"
	"betbot/internal/statsapi"
	"betbot/internal/store"
)

type fakeLeagues struct {
	mu      sync.Mutex
	rows    []*models.League
	nextID  int64
	updates []map[string]any
}

func (f *fakeLeagues) GetByCountryAndName(_ context.Context, country, name string) (*models.League, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.rows {
		if l.Country == country && l.Name == name {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeLeagues) Insert(_ context.Context, l *models.League) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	l.ID = f.nextID
	cp := *l
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeLeagues) Update(_ context.Context, id int64, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, fields)
	for _, l := range f.rows {
		if l.ID == id {
			if v, ok := fields["api_id"].(int64); ok {
				l.APIID = v
			}
			if v, ok := fields["logo_url"].(string); ok {
				l.LogoURL = v
			}
		}
	}
	return nil
}

type fakeSeasons struct {
	mu      sync.Mutex
	rows    []*models.Season
	nextID  int64
	updates []map[string]any
}

func (f *fakeSeasons) LastByLeague(_ context.Context, leagueID int64) (*models.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last *models.Season
	for _, s := range f.rows {
		if s.LeagueID != leagueID {
			continue
		}
		if last == nil || s.Year > last.Year {
			last = s
		}
	}
	if last == nil {
		return nil, nil
	}
	cp := *last
	return &cp, nil
}

func (f *fakeSeasons) Insert(_ context.Context, s *models.Season) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeSeasons) Update(_ context.Context, id int64, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, fields)
	for _, s := range f.rows {
		if s.ID == id {
			if v, ok := fields["start_date"].(time.Time); ok {
				s.StartDate = v
			}
			if v, ok := fields["end_date"].(time.Time); ok {
				s.EndDate = v
			}
			if v, ok := fields["current"].(bool); ok {
				s.Current = v
			}
			if v, ok := fields["finished"].(bool); ok {
				s.Finished = v
			}
		}
	}
	return nil
}

type fakeContests struct {
	mu           sync.Mutex
	rows         []*models.BetContest
	nextID       int64
	participants map[int64][]int64
}

func (f *fakeContests) ListBySeason(_ context.Context, seasonID int64) ([]models.BetContest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BetContest
	for _, c := range f.rows {
		if c.SeasonID == seasonID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeContests) Insert(_ context.Context, c *models.BetContest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.SeasonID == c.SeasonID {
			return store.ErrDuplicateContest
		}
	}
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeContests) AddParticipant(_ context.Context, contestID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.participants == nil {
		f.participants = make(map[int64][]int64)
	}
	f.participants[contestID] = append(f.participants[contestID], userID)
	return nil
}

type fakeSource struct {
	snap *statsapi.SeasonSnapshot
	err  error
}

func (f *fakeSource) FetchCurrentSeason(context.Context, string, string) (*statsapi.SeasonSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.snap
	return &cp, nil
}

func currentSnapshot() *statsapi.SeasonSnapshot {
	return &statsapi.SeasonSnapshot{
		LeagueAPIID: 235,
		LeagueName:  "Premier League",
		Country:     "Russia",
		LogoURL:     "https://media.example/leagues/235.png",
		Year:        2026,
		StartDate:   time.Date(2026, 7, 19, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2027, 5, 22, 0, 0, 0, 0, time.UTC),
		Current:     true,
	}
}

func newTestReconciler(leagues *fakeLeagues, seasons *fakeSeasons, contests *fakeContests, source *fakeSource) *Reconciler {
	r := NewReconciler(leagues, seasons, contests, source)
	r.now = func() time.Time { return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) }
	return r
}

func TestCreateContestFreshSystem(t *testing.T) {
	leagues := &fakeLeagues{}
	seasons := &fakeSeasons{}
	contests := &fakeContests{}
	r := newTestReconciler(leagues, seasons, contests, &fakeSource{snap: currentSnapshot()})

	res, err := r.CreateContest(context.Background(), "Russia", "Premier League", 100)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, res.Outcome)
	require.NotNil(t, res.League)
	require.NotNil(t, res.Season)
	require.NotNil(t, res.Contest)

	assert.Equal(t, int64(235), res.League.APIID)
	assert.Equal(t, 2026, res.Season.Year)
	assert.Equal(t, res.Season.ID, res.Contest.SeasonID)
	assert.Equal(t, []int64{100}, contests.participants[res.Contest.ID],
		"operator joins the contest on creation")
}

func TestCreateContestIdenticalSnapshotNoWrites(t *testing.T) {
	snap := currentSnapshot()
	leagues := &fakeLeagues{rows: []*models.League{{
		ID: 1, APIID: snap.LeagueAPIID, Country: snap.Country, Name: snap.LeagueName, LogoURL: snap.LogoURL,
	}}, nextID: 1}
	seasons := &fakeSeasons{rows: []*models.Season{{
		ID: 1, LeagueID: 1, Year: snap.Year, StartDate: snap.StartDate, EndDate: snap.EndDate, Current: true,
	}}, nextID: 1}
	contests := &fakeContests{}
	r := newTestReconciler(leagues, seasons, contests, &fakeSource{snap: snap})

	res, err := r.CreateContest(context.Background(), "Russia", "Premier League", 100)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Empty(t, leagues.updates, "no league write when nothing changed")
	assert.Empty(t, seasons.updates, "no season write when nothing changed")
}

func TestCreateContestLogoOnlyDiff(t *testing.T) {
	snap := currentSnapshot()
	leagues := &fakeLeagues{rows: []*models.League{{
		ID: 1, APIID: snap.LeagueAPIID, Country: snap.Country, Name: snap.LeagueName, LogoURL: "https://media.example/old.png",
	}}, nextID: 1}
	// Season stale: previous year, no longer current.
	seasons := &fakeSeasons{rows: []*models.Season{{
		ID: 1, LeagueID: 1, Year: 2025,
		StartDate: time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 5, 23, 0, 0, 0, 0, time.UTC),
		Current:   false,
	}}, nextID: 1}
	contests := &fakeContests{}
	r := newTestReconciler(leagues, seasons, contests, &fakeSource{snap: snap})

	res, err := r.CreateContest(context.Background(), "Russia", "Premier League", 100)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, res.Outcome)
	require.Len(t, leagues.updates, 1)
	assert.Equal(t, map[string]any{"logo_url": snap.LogoURL}, leagues.updates[0],
		"only the changed column is written")
	assert.Equal(t, 2026, res.Season.Year, "new season inserted for the fresh year")
}

func TestCreateContestRetiresSupersededSeason(t *testing.T) {
	snap := currentSnapshot()
	leagues := &fakeLeagues{rows: []*models.League{{
		ID: 1, APIID: snap.LeagueAPIID, Country: snap.Country, Name: snap.LeagueName, LogoURL: snap.LogoURL,
	}}, nextID: 1}
	// Previous season past its end date but never demoted.
	seasons := &fakeSeasons{rows: []*models.Season{{
		ID: 1, LeagueID: 1, Year: 2025,
		StartDate: time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 5, 23, 0, 0, 0, 0, time.UTC),
		Current:   true,
	}}, nextID: 1}
	contests := &fakeContests{}
	r := newTestReconciler(leagues, seasons, contests, &fakeSource{snap: snap})

	res, err := r.CreateContest(context.Background(), "Russia", "Premier League", 100)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Equal(t, 2026, res.Season.Year)

	current := 0
	for _, s := range seasons.rows {
		if s.Current {
			current++
		}
	}
	assert.Equal(t, 1, current, "a league holds at most one current season")

	old := seasons.rows[0]
	assert.False(t, old.Current, "superseded season demoted")
	assert.True(t, old.Finished, "superseded season closed out")
}

func TestCreateContestConflict(t *testing.T) {
	snap := currentSnapshot()
	leagues := &fakeLeagues{rows: []*models.League{{
		ID: 1, APIID: snap.LeagueAPIID, Country: snap.Country, Name: snap.LeagueName, LogoURL: snap.LogoURL,
	}}, nextID: 1}
	seasons := &fakeSeasons{rows: []*models.Season{{
		ID: 1, LeagueID: 1, Year: snap.Year, StartDate: snap.StartDate, EndDate: snap.EndDate, Current: true,
	}}, nextID: 1}
	contests := &fakeContests{rows: []*models.BetContest{{ID: 1, SeasonID: 1, CreatedBy: 100}}, nextID: 1}
	r := newTestReconciler(leagues, seasons, contests, &fakeSource{snap: snap})

	res, err := r.CreateContest(context.Background(), "Russia", "Premier League", 100)
	require.NoError(t, err)

	assert.Equal(t, OutcomeConflict, res.Outcome)
	require.NotNil(t, res.Contest)
	assert.Equal(t, int64(1), res.Contest.ID)
	assert.Len(t, contests.rows, 1, "no second contest created")
}

func TestCreateContestNoCurrentSeason(t *testing.T) {
	snap := currentSnapshot()
	snap.Current = false
	r := newTestReconciler(&fakeLeagues{}, &fakeSeasons{}, &fakeContests{}, &fakeSource{snap: snap})

	res, err := r.CreateContest(context.Background(), "Russia", "Premier League", 100)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoCurrentSeason, res.Outcome)
}

func TestCreateContestProviderHasNoLeague(t *testing.T) {
	r := newTestReconciler(&fakeLeagues{}, &fakeSeasons{}, &fakeContests{},
		&fakeSource{err: statsapi.ErrSeasonNotFound})

	res, err := r.CreateContest(context.Background(), "Atlantis", "Sunken League", 100)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoCurrentSeason, res.Outcome)
}

func TestCreateContestConcurrentDoubleCreate(t *testing.T) {
	snap := currentSnapshot()
	leagues := &fakeLeagues{}
	seasons := &fakeSeasons{}
	contests := &fakeContests{}
	r := newTestReconciler(leagues, seasons, contests, &fakeSource{snap: snap})

	var wg sync.WaitGroup
	results := make([]*Result, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := r.CreateContest(context.Background(), "Russia", "Premier League", int64(100+i))
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, res := range results {
		switch res.Outcome {
		case OutcomeCreated:
			created++
		case OutcomeConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created, "exactly one attempt wins")
	assert.Equal(t, 1, conflicts, "the loser sees the existing contest")
	assert.Len(t, contests.rows, 1)
}
