package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"betbot/internal/contest"
	"betbot/internal/models"
	"betbot/internal/store"
)

func TestConflictTextNamesLeagueAndSeason(t *testing.T) {
	res := &contest.Result{
		Outcome: contest.OutcomeConflict,
		League:  &models.League{Name: "Premier League", Country: "Russia"},
		Season:  &models.Season{Year: 2026},
	}

	text := conflictText(res)
	assert.Contains(t, text, "Premier League")
	assert.Contains(t, text, "2026/2027")
	assert.Contains(t, text, "Russia")
}

func TestConflictTextWithoutRecordsFallsBack(t *testing.T) {
	text := conflictText(&contest.Result{Outcome: contest.OutcomeConflict})
	assert.Equal(t, "A contest for this season already exists.", text)
}

func TestAddUserRegistersNewcomer(t *testing.T) {
	users := &stubUsers{registered: map[int64]bool{}}
	app := newHandlerTestApp(users, &stubBets{})

	c := newFakeTeleCtx(1, "/add_user 99 Ivan Petrov")
	c.payload = "99 Ivan Petrov"
	require.NoError(t, app.handleAddUser(c))

	require.Len(t, users.created, 1)
	assert.Equal(t, int64(99), users.created[0].TelegramID)
	assert.Equal(t, "Ivan", users.created[0].FirstName)
	assert.Equal(t, "Petrov", users.created[0].LastName)
	require.NotEmpty(t, c.sent)
	assert.Contains(t, c.sent[0], "Registered 99")
}

func TestAddUserRejectsDuplicateAndGarbage(t *testing.T) {
	users := &stubUsers{registered: map[int64]bool{99: true}}
	app := newHandlerTestApp(users, &stubBets{})

	dup := newFakeTeleCtx(1, "/add_user 99")
	dup.payload = "99"
	require.NoError(t, app.handleAddUser(dup))
	assert.Empty(t, users.created)
	assert.Contains(t, dup.sent[0], "already registered")

	bad := newFakeTeleCtx(1, "/add_user soon")
	bad.payload = "soon"
	require.NoError(t, app.handleAddUser(bad))
	assert.Empty(t, users.created)
	assert.Contains(t, bad.sent[0], "Usage:")
}

func TestMyBetsListsPredictionsWithLabels(t *testing.T) {
	users := &stubUsers{user: &models.User{ID: 42, TelegramID: 7}}
	bets := &stubBets{lines: []store.BetLine{
		{Bet: models.Bet{MatchID: 100, RawText: "2-1"}, Label: "Alpha vs Beta"},
		{Bet: models.Bet{MatchID: 101, RawText: "0:0"}, Label: "Gamma vs Delta"},
	}}
	app := newHandlerTestApp(users, bets)

	c := newFakeTeleCtx(7, "/mybets")
	require.NoError(t, app.handleMyBets(c))

	require.NotEmpty(t, c.sent)
	assert.Contains(t, c.sent[0], "Alpha vs Beta: 2-1")
	assert.Contains(t, c.sent[0], "Gamma vs Delta: 0:0")
}

func TestMyBetsWithNothingSavedPointsAtBet(t *testing.T) {
	users := &stubUsers{user: &models.User{ID: 42, TelegramID: 7}}
	app := newHandlerTestApp(users, &stubBets{})

	c := newFakeTeleCtx(7, "/mybets")
	require.NoError(t, app.handleMyBets(c))

	require.NotEmpty(t, c.sent)
	assert.Contains(t, c.sent[0], "no predictions yet")
}
