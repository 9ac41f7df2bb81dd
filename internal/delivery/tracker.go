package delivery

import (
	"context"
	"errors"
	"sync"

	"betbot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Transport sends a text message to a Telegram account, optionally with an
// inline keyboard.
type Transport interface {
	SendMessage(ctx context.Context, telegramID int64, text string, markup *tele.ReplyMarkup) error
}

// UserFlags persists reachability flags for participants.
type UserFlags interface {
	MarkBlocked(ctx context.Context, telegramID int64) error
	MarkUnblocked(ctx context.Context, telegramID int64) error
}

// Tracker wraps a transport and keeps track of recipients who blocked the
// bot. The blocked flag is informational only: sends are still attempted,
// so a recipient who unblocks is detected on the next delivery.
type Tracker struct {
	mu        sync.Mutex
	blocked   map[int64]bool
	transport Transport
	flags     UserFlags
}

// NewTracker builds a tracker over the given transport and flag store.
func NewTracker(transport Transport, flags UserFlags) *Tracker {
	return &Tracker{
		blocked:   make(map[int64]bool),
		transport: transport,
		flags:     flags,
	}
}

// Blocked reports the tracker's current view of a recipient.
func (t *Tracker) Blocked(telegramID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.blocked[telegramID]
}

// Send delivers a message and updates reachability state. An unreachable
// recipient is flagged once; later failures for the same recipient stay
// quiet. A success after a block clears the flag exactly once. Errors that
// do not indicate an unreachable recipient propagate to the caller.
func (t *Tracker) Send(ctx context.Context, telegramID int64, text string, markup *tele.ReplyMarkup) error {
	err := t.transport.SendMessage(ctx, telegramID, text, markup)
	if err == nil {
		t.markReachable(ctx, telegramID)
		return nil
	}

	if !recipientUnreachable(err) {
		return err
	}

	t.markUnreachable(ctx, telegramID)
	return nil
}

func (t *Tracker) markReachable(ctx context.Context, telegramID int64) {
	t.mu.Lock()
	wasBlocked := t.blocked[telegramID]
	if wasBlocked {
		delete(t.blocked, telegramID)
	}
	t.mu.Unlock()

	if !wasBlocked {
		return
	}
	if err := t.flags.MarkUnblocked(ctx, telegramID); err != nil {
		logger.SVCDelivery.LogAttrs(ctx, slog.LevelError, "delivery.unblock_flag_failed",
			slog.Int64("user_id", telegramID),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.SVCDelivery.LogAttrs(ctx, slog.LevelInfo, "delivery.recipient_returned",
		slog.Int64("user_id", telegramID),
	)
}

func (t *Tracker) markUnreachable(ctx context.Context, telegramID int64) {
	t.mu.Lock()
	alreadyBlocked := t.blocked[telegramID]
	t.blocked[telegramID] = true
	t.mu.Unlock()

	if alreadyBlocked {
		return
	}
	if err := t.flags.MarkBlocked(ctx, telegramID); err != nil {
		logger.SVCDelivery.LogAttrs(ctx, slog.LevelError, "delivery.block_flag_failed",
			slog.Int64("user_id", telegramID),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.SVCDelivery.LogAttrs(ctx, slog.LevelWarn, "delivery.recipient_blocked",
		slog.Int64("user_id", telegramID),
		slog.Bool("blocked", true),
	)
}

// recipientUnreachable distinguishes "this account cannot receive messages"
// from transient transport failures.
func recipientUnreachable(err error) bool {
	if errors.Is(err, tele.ErrBlockedByUser) ||
		errors.Is(err, tele.ErrUserIsDeactivated) ||
		errors.Is(err, tele.ErrNotStartedByUser) {
		return true
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 403
	}
	return false
}
