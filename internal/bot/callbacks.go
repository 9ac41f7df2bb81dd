package bot

import (
	"context"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"

	"betbot/core/logger"
	tg "betbot/core/telegram"
	"betbot/core/telegram/callbacks"
	tghelpers "betbot/core/telegram/helpers"
	"log/slog"
)

const remindLaterDelay = 2 * time.Hour

func (a *App) registerCallbacks(reg *tg.Registry) {
	_ = reg.RegisterCallback("contest_join", a.handleContestJoin)
	_ = reg.RegisterCallback("remind_later", a.handleRemindLater)
}

// handleContestJoin enrolls the pressing user into the contest named in the
// callback payload. Pressing twice is harmless.
func (a *App) handleContestJoin(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "contest_join")

	contestID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Broken button, sorry."})
	}

	user, err := a.users.GetByTelegramID(ctx, c.Sender().ID)
	if err != nil || user == nil {
		a.notifyAdmin(ctx, fmt.Sprintf("contest_join: user lookup failed for %d: %v", c.Sender().ID, err))
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}

	if err := a.contests.AddParticipant(ctx, contestID, user.ID); err != nil {
		a.notifyAdmin(ctx, fmt.Sprintf("contest_join: enroll failed for user %d contest %d: %v", user.ID, contestID, err))
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}

	logger.SVCContests.LogAttrs(ctx, slog.LevelInfo, "contest.joined",
		slog.Int64("contest_id", contestID),
		slog.Int64("user_id", user.ID),
	)
	return c.Respond(&tele.CallbackResponse{Text: "You're in! Use /bet to predict."})
}

// handleRemindLater snoozes the daily reminder for the pressing user. A fresh
// one-shot re-sends the reminder with the match count at fire time.
func (a *App) handleRemindLater(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "remind_later")
	telegramID := c.Sender().ID

	at := time.Now().Add(remindLaterDelay)
	a.sched.ScheduleAt(fmt.Sprintf("remind-%d", telegramID), at, func() {
		a.sendReminder(telegramID)
	})

	logger.SVCSessions.LogAttrs(ctx, slog.LevelInfo, "reminder.snoozed",
		slog.Int64("user_id", telegramID),
	)
	return c.Respond(&tele.CallbackResponse{Text: "Okay, I'll remind you in 2 hours."})
}

// sendReminder delivers a single-recipient reminder about open fixtures.
// Runs from a scheduler one-shot, outside any update context.
func (a *App) sendReminder(telegramID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.tracker == nil {
		return
	}

	latest, err := a.contests.Latest(ctx)
	if err != nil || latest == nil {
		return
	}
	upcoming, err := a.matches.ListUpcomingByContest(ctx, latest.ID, time.Now())
	if err != nil || len(upcoming) == 0 {
		return
	}

	if err := a.tracker.Send(ctx, telegramID, reminderText(len(upcoming)), reminderKeyboard()); err != nil {
		logger.Sched.LogAttrs(ctx, slog.LevelError, "reminder.send_failed",
			slog.Int64("user_id", telegramID),
			slog.String("err", err.Error()),
		)
	}
}
