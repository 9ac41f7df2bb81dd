package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	coreconfig "betbot/core/config"
	"betbot/core/logger"
	tg "betbot/core/telegram"
	tghelpers "betbot/core/telegram/helpers"
	"betbot/core/telegram/middleware"
	"betbot/core/telegram/router"
	"betbot/internal/contest"
	"betbot/internal/delivery"
	"betbot/internal/models"
	"betbot/internal/scheduler"
	"betbot/internal/session"
	"betbot/internal/statsapi"
	"betbot/internal/store"
	"log/slog"
)

// userStore is the participant persistence surface the app needs.
type userStore interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	Registered(ctx context.Context, telegramID int64) (bool, error)
	Create(ctx context.Context, u *models.User) error
	TouchProfile(ctx context.Context, telegramID int64, firstName, lastName string) error
	MarkBlocked(ctx context.Context, telegramID int64) error
	MarkUnblocked(ctx context.Context, telegramID int64) error
	List(ctx context.Context) ([]models.User, error)
}

// betStore is the prediction persistence surface the app needs.
type betStore interface {
	Upsert(ctx context.Context, b *models.Bet) error
	ListByUser(ctx context.Context, userID int64) ([]store.BetLine, error)
}

// App wires the contest bot: stores, the bet session machine, the contest
// reconciler, delivery tracking and scheduled notifications.
type App struct {
	cfg *coreconfig.Config

	users    userStore
	leagues  *store.Leagues
	seasons  *store.Seasons
	contests *store.Contests
	matches  *store.Matches
	bets     betStore

	sessions   *session.Store
	reconciler *contest.Reconciler
	sched      *scheduler.Scheduler

	// set in OnStart once the bot instance exists
	bot     *tele.Bot
	tracker *delivery.Tracker
}

// NewApp builds the application over an open database connection.
func NewApp(cfg *coreconfig.Config, db *sqlx.DB) (*App, error) {
	a := &App{
		cfg:      cfg,
		users:    store.NewUsers(db),
		leagues:  store.NewLeagues(db),
		seasons:  store.NewSeasons(db),
		contests: store.NewContests(db),
		matches:  store.NewMatches(db),
		bets:     store.NewBets(db),
		sessions: session.NewStore(),
	}

	stats := statsapi.New(statsapi.Config{
		BaseURL:    cfg.Stats.BaseURL,
		Host:       cfg.Stats.Host,
		Key:        cfg.Stats.Key,
		Timeout:    time.Duration(cfg.Stats.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.Stats.MaxRetries,
	})
	a.reconciler = contest.NewReconciler(a.leagues, a.seasons, a.contests, stats)

	sched, err := scheduler.New(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, err
	}
	a.sched = sched

	return a, nil
}

// Authorized reports whether the Telegram account belongs to a registered
// participant. Unknown senders are rejected at the gate.
func (a *App) Authorized(ctx context.Context, telegramID int64) (bool, error) {
	return a.users.Registered(ctx, telegramID)
}

// InProgress reports whether the user has an active bet session.
func (a *App) InProgress(userID int64) bool {
	return a.sessions.HasActive(userID)
}

// TelegramRunOptions assembles registry, routes and middleware for RunTelegram.
func (a *App) TelegramRunOptions() tg.RunOptions {
	reg := tg.NewRegistry()
	a.registerCommands(reg)
	a.registerCallbacks(reg)

	reg.SetTextFallback(a.handleUnknownText)

	access := middleware.AccessOptions{
		Gate:     a,
		OnReject: a.handleAccessRejected,
		OnError:  a.handleAccessError,
	}

	routes := router.TextRoutes(a, reg, router.TextOptions{
		UnknownText: a.handleUnknownText,
		Unsupported: a.handleUnsupported,
	})
	routes = append(routes, router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: a.handleAdminRejected,
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(a.cfg, access, nil),
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}
}

func (a *App) onStart(ctx context.Context, rt tg.Runtime) error {
	a.bot = rt.Bot
	a.tracker = delivery.NewTracker(&botTransport{bot: rt.Bot}, a.users)

	if err := a.sched.AddCron("daily-notify", a.cfg.Scheduler.NotifyCron, a.dailyNotifyJob); err != nil {
		return err
	}
	a.sched.Start()

	a.notifyAdmin(ctx, "bot started")
	logger.L.LogAttrs(ctx, slog.LevelInfo, "app.started",
		slog.String("component", "app"),
		slog.String("event", "app.started"),
	)
	return nil
}

func (a *App) onStop(ctx context.Context, _ tg.Runtime) error {
	a.sched.Stop()
	a.notifyAdmin(ctx, "bot stopped")
	logger.L.LogAttrs(ctx, slog.LevelInfo, "app.stopped",
		slog.String("component", "app"),
		slog.String("event", "app.stopped"),
	)
	return nil
}

// notifyAdmin pushes a timestamped diagnostic line to the admin account.
// Failures are logged and swallowed: admin notification must never break
// the main flow.
func (a *App) notifyAdmin(ctx context.Context, text string) {
	if a.bot == nil || a.cfg.Telegram.AdminID == 0 {
		return
	}
	stamped := fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04:05"), text)
	if _, err := a.bot.Send(&tele.User{ID: a.cfg.Telegram.AdminID}, stamped); err != nil {
		logger.L.LogAttrs(ctx, slog.LevelError, "admin.notify_failed",
			slog.String("component", "app"),
			slog.String("event", "admin.notify_failed"),
			slog.String("err", err.Error()),
		)
	}
}

func (a *App) handleAccessRejected(c tele.Context) error {
	return tghelpers.ReplyText(c, "Sorry, this is a private contest. Ask the admin to register you.")
}

func (a *App) handleAccessError(c tele.Context) error {
	return tghelpers.ReplyText(c, "Something went wrong, please try again later.")
}

func (a *App) handleAdminRejected(c tele.Context) error {
	return tghelpers.ReplyText(c, "This command is for the admin only.")
}

func (a *App) handleUnsupported(c tele.Context) error {
	return tghelpers.ReplyText(c, "I can only understand text messages.")
}

// botTransport adapts tele.Bot to the delivery transport interface.
type botTransport struct {
	bot *tele.Bot
}

func (t *botTransport) SendMessage(_ context.Context, telegramID int64, text string, markup *tele.ReplyMarkup) error {
	var err error
	if markup != nil {
		_, err = t.bot.Send(&tele.User{ID: telegramID}, text, markup)
	} else {
		_, err = t.bot.Send(&tele.User{ID: telegramID}, text)
	}
	return err
}
