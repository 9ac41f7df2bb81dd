package bot

import (
	"context"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"

	"betbot/core/logger"
	"betbot/core/telegram/keyboard"
	"log/slog"
)

func reminderText(matches int) string {
	return fmt.Sprintf("%d match(es) are waiting for your predictions. Send /bet to play!", matches)
}

func reminderKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{{
		Text:   "Remind me later",
		Unique: "remind_later",
	}})
}

// dailyNotifyJob reminds participants about fixtures they can still predict.
// Delivery goes through the tracker so blocked recipients are flagged but
// still attempted; a participant who unblocks the bot comes back quietly.
func (a *App) dailyNotifyJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if a.tracker == nil {
		return
	}

	latest, err := a.contests.Latest(ctx)
	if err != nil {
		logger.Sched.LogAttrs(ctx, slog.LevelError, "notify.contest_lookup_failed",
			slog.String("job", "daily-notify"),
			slog.String("err", err.Error()),
		)
		return
	}
	if latest == nil {
		return
	}

	upcoming, err := a.matches.ListUpcomingByContest(ctx, latest.ID, time.Now())
	if err != nil {
		logger.Sched.LogAttrs(ctx, slog.LevelError, "notify.match_lookup_failed",
			slog.String("job", "daily-notify"),
			slog.String("err", err.Error()),
		)
		return
	}
	if len(upcoming) == 0 {
		return
	}

	users, err := a.users.List(ctx)
	if err != nil {
		logger.Sched.LogAttrs(ctx, slog.LevelError, "notify.user_lookup_failed",
			slog.String("job", "daily-notify"),
			slog.String("err", err.Error()),
		)
		return
	}

	text := reminderText(len(upcoming))
	markup := reminderKeyboard()

	sent, failed := 0, 0
	for _, u := range users {
		if err := a.tracker.Send(ctx, u.TelegramID, text, markup); err != nil {
			failed++
			continue
		}
		sent++
	}

	logger.Sched.LogAttrs(ctx, slog.LevelInfo, "notify.broadcast_done",
		slog.String("job", "daily-notify"),
		slog.Int("recipients", sent),
		slog.Int("failed", failed),
		slog.Int("matches_total", len(upcoming)),
	)
}
