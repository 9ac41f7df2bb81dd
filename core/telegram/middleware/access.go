package middleware

import (
	"context"

	"betbot/core/logger"
	tghelpers "betbot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Gatekeeper decides whether a sender is allowed to interact with the bot.
// The contest is closed: only users already present in the store pass.
type Gatekeeper interface {
	Authorized(ctx context.Context, telegramID int64) (bool, error)
}

// AccessOptions configures the authorization gate.
type AccessOptions struct {
	Gate Gatekeeper
	// OnReject answers senders unknown to the system.
	OnReject tele.HandlerFunc
	// OnError answers senders when the authorization lookup itself fails.
	OnError tele.HandlerFunc
}

// AccessMiddleware rejects updates from senders not registered in the system.
// It must run before any session or command routing so an unauthorized user
// can never reach them, even with a guessed command string.
func AccessMiddleware(opts AccessOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}
			if opts.Gate == nil {
				return next(c)
			}

			ctx := tghelpers.BuildContext(c)
			ok, err := opts.Gate.Authorized(ctx, sender.ID)
			if err != nil {
				logger.TG.LogAttrs(ctx, slog.LevelError, "access.lookup_failed",
					slog.Int64("user_id", sender.ID),
					slog.String("err", err.Error()),
				)
				if opts.OnError != nil {
					return opts.OnError(c)
				}
				return nil
			}
			if !ok {
				logger.TG.LogAttrs(ctx, slog.LevelDebug, "access.denied",
					slog.Int64("user_id", sender.ID),
				)
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware ensures that only the admin user can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.AdminID != 0 && c.Sender().ID != opts.AdminID {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
