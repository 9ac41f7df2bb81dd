package bot

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"betbot/core/logger"
	tghelpers "betbot/core/telegram/helpers"
	"betbot/internal/models"
	"betbot/internal/session"
	"log/slog"
)

// Handle consumes a text update for a user with an active bet session.
// A valid score is persisted immediately so a crash mid-walk loses nothing;
// invalid input re-prompts the same fixture without advancing.
func (a *App) Handle(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "session")
	sender := c.Sender()

	sess, ok := a.sessions.Get(sender.ID)
	if !ok {
		return nil
	}

	cur, ok := sess.Current()
	if !ok {
		// Session was installed but never advanced; shouldn't happen.
		a.sessions.Remove(sender.ID)
		return nil
	}

	raw := c.Text()
	home, away, valid := session.ValidateScore(raw)
	if !valid {
		logger.SVCSessions.LogAttrs(ctx, slog.LevelDebug, "session.invalid_score",
			slog.Int64("user_id", sender.ID),
			slog.Int("match_index", sess.Index()),
			slog.String("payload", logger.SanitizeLimit(raw, 64)),
		)
		return tghelpers.ReplyText(c, fmt.Sprintf("That doesn't look like a score. Send something like 2-1 or 2:1 for:\n%s", cur.Label))
	}

	user, err := a.users.GetByTelegramID(ctx, sender.ID)
	if err != nil || user == nil {
		a.notifyAdmin(ctx, fmt.Sprintf("bet session: user lookup failed for %d: %v", sender.ID, err))
		return tghelpers.ReplyText(c, "Something went wrong, please try again later.")
	}

	bet := &models.Bet{
		UserID:    user.ID,
		MatchID:   cur.MatchID,
		HomeScore: home,
		AwayScore: away,
		RawText:   raw,
	}
	if err := a.bets.Upsert(ctx, bet); err != nil {
		a.notifyAdmin(ctx, fmt.Sprintf("bet session: failed to save bet for user %d match %d: %v", user.ID, cur.MatchID, err))
		return tghelpers.ReplyText(c, "Could not save that prediction, please try again.")
	}

	logger.SVCSessions.LogAttrs(ctx, slog.LevelInfo, "session.bet_saved",
		slog.Int64("user_id", sender.ID),
		slog.Int64("match_id", cur.MatchID),
		slog.Int("match_index", sess.Index()),
	)

	next, more := sess.Next()
	if !more {
		a.sessions.Remove(sender.ID)
		logger.SVCSessions.LogAttrs(ctx, slog.LevelInfo, "session.completed",
			slog.Int64("user_id", sender.ID),
			slog.Int("matches_total", sess.Len()),
		)
		return tghelpers.SendText(c, fmt.Sprintf("All done! %d prediction(s) saved. Good luck!", sess.Len()))
	}

	return tghelpers.SendText(c, a.matchPrompt(sess, next))
}
