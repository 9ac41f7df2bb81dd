package router

import (
	"time"

	tg "betbot/core/telegram"
	"betbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// SessionGate is the minimal interface for an in-progress dialog machine.
// A sender with an active session gets every text update, bypassing commands.
type SessionGate interface {
	InProgress(userID int64) bool
	Handle(c tele.Context) error
}

// TextOptions controls fallback behaviour for text and media updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
	Unsupported tele.HandlerFunc
}

// TextRoutes builds handlers for text routing and media rejection.
// Text goes session first, then command lookup, then fallback.
func TextRoutes(gate SessionGate, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if gate != nil && gate.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "session", start, "", "", func() error {
				return gate.Handle(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	unsupported := func(c tele.Context) error {
		start := time.Now()
		if opts.Unsupported != nil {
			return handleWithSummary(c, "unsupported_content", start, "", "", func() error {
				return opts.Unsupported(c)
			})
		}
		logHandlerSummary(c, "unsupported_content", start, "skip", "ok", nil)
		return nil
	}

	routes := []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
	for _, ep := range []any{
		tele.OnPhoto, tele.OnDocument, tele.OnSticker, tele.OnVoice,
		tele.OnVideo, tele.OnAudio, tele.OnLocation, tele.OnContact,
	} {
		routes = append(routes, tg.Route{
			Endpoint: ep,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(unsupported)),
		})
	}
	return routes
}
