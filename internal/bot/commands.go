package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"betbot/core/logger"
	tg "betbot/core/telegram"
	"betbot/core/telegram/commands"
	tghelpers "betbot/core/telegram/helpers"
	"betbot/core/telegram/keyboard"
	"betbot/internal/contest"
	"betbot/internal/models"
	"betbot/internal/session"
	"log/slog"
)

const helpText = `Available commands:
/start - introduction
/help - this message
/bet - place predictions for upcoming matches
/mybets - show your saved predictions`

func (a *App) registerCommands(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Introduction",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "List available commands",
	})
	reg.RegisterCommand("/bet", commands.Command{
		Handler:     a.handleBet,
		Description: "Place predictions for upcoming matches",
	})
	reg.RegisterCommand("/mybets", commands.Command{
		Handler:     a.handleMyBets,
		Description: "Show your saved predictions",
	})
	reg.RegisterCommand("/create_contest", commands.Command{
		Handler:     a.handleCreateContest,
		Description: "Create a contest for the current season",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/add_user", commands.Command{
		Handler:     a.handleAddUser,
		Description: "Register a participant",
		AdminOnly:   true,
		Hidden:      true,
	})
}

func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "start")
	sender := c.Sender()

	if err := a.users.TouchProfile(ctx, sender.ID, sender.FirstName, sender.LastName); err != nil {
		logger.SVCUsers.LogAttrs(ctx, slog.LevelError, "user.touch_failed",
			slog.Int64("user_id", sender.ID),
			slog.String("err", err.Error()),
		)
	}

	name := strings.TrimSpace(sender.FirstName)
	if name == "" {
		name = "there"
	}
	return tghelpers.SendText(c, fmt.Sprintf("Hi %s! I collect score predictions for our contest.\n\n%s", name, helpText))
}

func (a *App) handleHelp(c tele.Context) error {
	tghelpers.WithHandler(c, "help")
	return tghelpers.SendText(c, helpText)
}

// handleUnknownText answers unrecognized commands and forwards plain chatter
// to the admin so participants can reach a human through the bot.
func (a *App) handleUnknownText(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "fallback")
	text := c.Text()

	if strings.HasPrefix(text, "/") {
		return tghelpers.ReplyText(c, fmt.Sprintf("Unknown command: %s. Type /help", text))
	}

	sender := c.Sender()
	a.notifyAdmin(ctx, fmt.Sprintf("message from %s %s (%d): %s",
		sender.FirstName, sender.LastName, sender.ID, text))
	return tghelpers.ReplyText(c, "Got it, passed your message to the admin.")
}

// handleMyBets lists the sender's saved predictions with match labels.
func (a *App) handleMyBets(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "mybets")

	user, err := a.users.GetByTelegramID(ctx, c.Sender().ID)
	if err != nil || user == nil {
		a.notifyAdmin(ctx, fmt.Sprintf("mybets: user lookup failed for %d: %v", c.Sender().ID, err))
		return tghelpers.ReplyText(c, "Something went wrong, please try again later.")
	}

	lines, err := a.bets.ListByUser(ctx, user.ID)
	if err != nil {
		a.notifyAdmin(ctx, fmt.Sprintf("mybets: listing failed for user %d: %v", user.ID, err))
		return tghelpers.ReplyText(c, "Something went wrong, please try again later.")
	}
	if len(lines) == 0 {
		return tghelpers.ReplyText(c, "You have no predictions yet. Send /bet to start.")
	}

	var b strings.Builder
	b.WriteString("Your predictions:")
	for _, l := range lines {
		fmt.Fprintf(&b, "\n%s: %s", l.Label, l.RawText)
	}
	return tghelpers.SendText(c, b.String())
}

// handleAddUser registers a participant by Telegram ID. The group is closed,
// so rows are created here before the newcomer ever talks to the bot.
func (a *App) handleAddUser(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "add_user")

	const usage = "Usage: /add_user <telegram id> [first name] [last name]"
	parts := strings.Fields(c.Message().Payload)
	if len(parts) == 0 {
		return tghelpers.ReplyText(c, usage)
	}
	telegramID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return tghelpers.ReplyText(c, usage)
	}

	known, err := a.users.Registered(ctx, telegramID)
	if err != nil {
		a.notifyAdmin(ctx, fmt.Sprintf("add_user: lookup failed for %d: %v", telegramID, err))
		return tghelpers.ReplyText(c, "Something went wrong, please try again later.")
	}
	if known {
		return tghelpers.ReplyText(c, fmt.Sprintf("%d is already registered.", telegramID))
	}

	u := &models.User{TelegramID: telegramID}
	if len(parts) > 1 {
		u.FirstName = parts[1]
	}
	if len(parts) > 2 {
		u.LastName = strings.Join(parts[2:], " ")
	}
	if err := a.users.Create(ctx, u); err != nil {
		a.notifyAdmin(ctx, fmt.Sprintf("add_user: create failed for %d: %v", telegramID, err))
		return tghelpers.ReplyText(c, "Something went wrong, please try again later.")
	}

	logger.SVCUsers.LogAttrs(ctx, slog.LevelInfo, "user.registered",
		slog.Int64("user_id", u.ID),
	)
	return tghelpers.ReplyText(c, fmt.Sprintf("Registered %d. They can /start the bot now.", telegramID))
}

// handleBet starts a bet session over upcoming fixtures of the latest
// contest. Starting over replaces a half-finished session without ceremony.
func (a *App) handleBet(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "bet")
	sender := c.Sender()

	latest, err := a.contests.Latest(ctx)
	if err != nil {
		a.notifyAdmin(ctx, fmt.Sprintf("failed to look up latest contest: %v", err))
		return tghelpers.ReplyText(c, "Something went wrong, please try again later.")
	}
	if latest == nil {
		return tghelpers.ReplyText(c, "There is no contest yet. Check back later!")
	}

	upcoming, err := a.matches.ListUpcomingByContest(ctx, latest.ID, time.Now())
	if err != nil {
		a.notifyAdmin(ctx, fmt.Sprintf("failed to list upcoming matches: %v", err))
		return tghelpers.ReplyText(c, "Something went wrong, please try again later.")
	}
	if len(upcoming) == 0 {
		return tghelpers.ReplyText(c, "No upcoming matches to predict right now.")
	}

	prompts := make([]session.MatchPrompt, 0, len(upcoming))
	for _, m := range upcoming {
		prompts = append(prompts, session.MatchPrompt{MatchID: m.ID, Label: m.Label})
	}

	sess, err := session.NewBetSession(sender.ID, prompts)
	if err != nil {
		return tghelpers.ReplyText(c, "No upcoming matches to predict right now.")
	}
	a.sessions.Put(sess)

	logger.SVCSessions.LogAttrs(ctx, slog.LevelInfo, "session.started",
		slog.Int64("user_id", sender.ID),
		slog.Int("matches_total", sess.Len()),
	)

	first, _ := sess.Next()
	intro := fmt.Sprintf("Let's go! %d match(es) to predict. Send a score like 2-1 or 2:1.", sess.Len())
	if err := tghelpers.SendText(c, intro); err != nil {
		return err
	}
	return tghelpers.SendText(c, a.matchPrompt(sess, first))
}

func (a *App) matchPrompt(sess *session.BetSession, m session.MatchPrompt) string {
	return fmt.Sprintf("Match %d of %d:\n%s\n\nYour score?", sess.Index()+1, sess.Len(), m.Label)
}

// handleCreateContest reconciles league and season data with the stats
// provider and opens a contest for the current season. Accepts an optional
// "Country, League" argument, otherwise uses the configured default.
func (a *App) handleCreateContest(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "create_contest")

	country := a.cfg.Contest.Country
	league := a.cfg.Contest.League
	if payload := strings.TrimSpace(c.Message().Payload); payload != "" {
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) != 2 {
			return tghelpers.ReplyText(c, "Usage: /create_contest Country, League name")
		}
		country = strings.TrimSpace(parts[0])
		league = strings.TrimSpace(parts[1])
	}

	operator, err := a.users.GetByTelegramID(ctx, c.Sender().ID)
	if err != nil || operator == nil {
		a.notifyAdmin(ctx, fmt.Sprintf("create_contest: operator lookup failed: %v", err))
		return tghelpers.ReplyText(c, "Something went wrong, please try again later.")
	}

	res, err := a.reconciler.CreateContest(ctx, country, league, operator.ID)
	if err != nil {
		a.notifyAdmin(ctx, fmt.Sprintf("create_contest failed for %s / %s: %v", country, league, err))
		return tghelpers.ReplyText(c, "Could not create the contest, the admin has been notified.")
	}

	switch res.Outcome {
	case contest.OutcomeCreated:
		markup := keyboard.InlineButtons([]keyboard.InlineBtn{{
			Text:   "Join the contest",
			Unique: "contest_join",
			Data:   fmt.Sprintf("%d", res.Contest.ID),
		}})
		text := fmt.Sprintf("Contest created for %s %d/%d season of %s!",
			res.League.Name, res.Season.Year, res.Season.Year+1, res.League.Country)
		return tghelpers.SendText(c, text, &tele.SendOptions{ReplyMarkup: markup})
	case contest.OutcomeNoCurrentSeason:
		return tghelpers.ReplyText(c, fmt.Sprintf("No active season found for %s (%s).", league, country))
	case contest.OutcomeConflict:
		return tghelpers.ReplyText(c, conflictText(res))
	}
	return nil
}

// conflictText names the season a contest creation collided with.
func conflictText(res *contest.Result) string {
	if res.League == nil || res.Season == nil {
		return "A contest for this season already exists."
	}
	return fmt.Sprintf("A contest already exists for the %s %d/%d season of %s.",
		res.League.Name, res.Season.Year, res.Season.Year+1, res.League.Country)
}
