package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"

	coreconfig "betbot/core/config"
	"betbot/internal/models"
	"betbot/internal/session"
	"betbot/internal/store"
)

// fakeTeleCtx covers the slice of tele.Context the handlers touch. The
// embedded interface panics on anything else, which keeps the fake honest.
type fakeTeleCtx struct {
	tele.Context
	sender  *tele.User
	text    string
	payload string
	values  map[string]interface{}
	sent    []string
}

func newFakeTeleCtx(userID int64, text string) *fakeTeleCtx {
	return &fakeTeleCtx{
		sender: &tele.User{ID: userID, FirstName: "Lena"},
		text:   text,
		values: make(map[string]interface{}),
	}
}

func (f *fakeTeleCtx) Sender() *tele.User  { return f.sender }
func (f *fakeTeleCtx) Chat() *tele.Chat    { return &tele.Chat{ID: f.sender.ID} }
func (f *fakeTeleCtx) Update() tele.Update { return tele.Update{ID: 1} }
func (f *fakeTeleCtx) Text() string        { return f.text }

func (f *fakeTeleCtx) Message() *tele.Message {
	return &tele.Message{Text: f.text, Payload: f.payload}
}

func (f *fakeTeleCtx) Set(key string, val interface{}) { f.values[key] = val }
func (f *fakeTeleCtx) Get(key string) interface{}      { return f.values[key] }

func (f *fakeTeleCtx) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func (f *fakeTeleCtx) Reply(what interface{}, _ ...interface{}) error {
	return f.Send(what)
}

type stubUsers struct {
	user       *models.User
	registered map[int64]bool
	created    []models.User
}

func (s *stubUsers) GetByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	if s.user != nil && s.user.TelegramID == telegramID {
		return s.user, nil
	}
	return nil, nil
}

func (s *stubUsers) Registered(_ context.Context, telegramID int64) (bool, error) {
	return s.registered[telegramID], nil
}

func (s *stubUsers) Create(_ context.Context, u *models.User) error {
	u.ID = int64(len(s.created) + 1)
	s.created = append(s.created, *u)
	return nil
}

func (s *stubUsers) TouchProfile(context.Context, int64, string, string) error { return nil }
func (s *stubUsers) MarkBlocked(context.Context, int64) error                  { return nil }
func (s *stubUsers) MarkUnblocked(context.Context, int64) error                { return nil }
func (s *stubUsers) List(context.Context) ([]models.User, error)               { return nil, nil }

type stubBets struct {
	upserts []models.Bet
	lines   []store.BetLine
}

func (s *stubBets) Upsert(_ context.Context, b *models.Bet) error {
	b.ID = int64(len(s.upserts) + 1)
	s.upserts = append(s.upserts, *b)
	return nil
}

func (s *stubBets) ListByUser(context.Context, int64) ([]store.BetLine, error) {
	return s.lines, nil
}

func newHandlerTestApp(users userStore, bets betStore) *App {
	return &App{
		cfg:      &coreconfig.Config{},
		users:    users,
		bets:     bets,
		sessions: session.NewStore(),
	}
}

func startSession(t *testing.T, a *App, userID int64, prompts []session.MatchPrompt) *session.BetSession {
	t.Helper()
	sess, err := session.NewBetSession(userID, prompts)
	require.NoError(t, err)
	a.sessions.Put(sess)
	sess.Next() // /bet presents the first fixture before handing off
	return sess
}

func TestHandleWalkSavesBetsAndCompletes(t *testing.T) {
	users := &stubUsers{user: &models.User{ID: 42, TelegramID: 7}}
	bets := &stubBets{}
	app := newHandlerTestApp(users, bets)

	startSession(t, app, 7, []session.MatchPrompt{
		{MatchID: 100, Label: "Alpha vs Beta"},
		{MatchID: 101, Label: "Gamma vs Delta"},
	})

	first := newFakeTeleCtx(7, "2-1")
	require.NoError(t, app.Handle(first))

	require.Len(t, bets.upserts, 1)
	assert.Equal(t, int64(42), bets.upserts[0].UserID)
	assert.Equal(t, int64(100), bets.upserts[0].MatchID)
	assert.Equal(t, "2", bets.upserts[0].HomeScore)
	assert.Equal(t, "1", bets.upserts[0].AwayScore)
	assert.True(t, app.sessions.HasActive(7), "walk continues after the first fixture")
	require.NotEmpty(t, first.sent)
	assert.Contains(t, first.sent[len(first.sent)-1], "Gamma vs Delta")

	last := newFakeTeleCtx(7, "0:0")
	require.NoError(t, app.Handle(last))

	require.Len(t, bets.upserts, 2)
	assert.Equal(t, int64(101), bets.upserts[1].MatchID)
	assert.False(t, app.sessions.HasActive(7), "session removed after the last fixture")
	require.NotEmpty(t, last.sent)
	assert.Contains(t, last.sent[len(last.sent)-1], "All done")
}

func TestHandleInvalidReplyKeepsCursor(t *testing.T) {
	users := &stubUsers{user: &models.User{ID: 42, TelegramID: 7}}
	bets := &stubBets{}
	app := newHandlerTestApp(users, bets)

	sess := startSession(t, app, 7, []session.MatchPrompt{
		{MatchID: 100, Label: "Alpha vs Beta"},
		{MatchID: 101, Label: "Gamma vs Delta"},
	})
	before := sess.Index()

	c := newFakeTeleCtx(7, "two one")
	require.NoError(t, app.Handle(c))

	assert.Equal(t, before, sess.Index(), "malformed reply leaves the cursor in place")
	assert.Empty(t, bets.upserts)
	assert.True(t, app.sessions.HasActive(7))
	require.NotEmpty(t, c.sent)
	assert.Contains(t, c.sent[0], "Alpha vs Beta", "same fixture is asked again")
}

func TestHandleWithoutSessionIsNoop(t *testing.T) {
	app := newHandlerTestApp(&stubUsers{}, &stubBets{})

	c := newFakeTeleCtx(7, "2-1")
	require.NoError(t, app.Handle(c))
	assert.Empty(t, c.sent)
}
