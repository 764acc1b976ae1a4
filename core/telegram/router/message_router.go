package router

import (
	"strings"
	"time"

	tg "github.com/lknvpn/supportbot/core/telegram"
	"github.com/lknvpn/supportbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Conversation is the minimal interface for a dialog engine that may claim
// free-form text from a user mid-flow.
type Conversation interface {
	// InProgress reports whether the user has an active dialog awaiting text.
	InProgress(userID int64) bool
	// TextHandler consumes a text update for a user with an active dialog.
	TextHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the plain-text route. Slash-prefixed text is matched
// against commands by prefix so commands with arguments keep working from
// retyped or forwarded messages; everything else goes to the conversation
// engine if one is waiting, then to the registry's text fallback.
func TextRoutes(conv Conversation, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil && strings.HasPrefix(strings.TrimSpace(text), "/") {
			if key, cmd, ok := reg.LookupCommandPrefix(text); ok && cmd.Handler != nil {
				s := summary{name: normalizeHandlerName(key), start: start}
				return instrument(c, s, func() error { return cmd.Handler(c) })
			}
		}

		if conv != nil && c.Sender() != nil && conv.InProgress(c.Sender().ID) {
			return instrument(c, summary{name: "dialog", start: start}, func() error {
				return conv.TextHandler(c)
			})
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return instrument(c, summary{name: "fallback", start: start}, func() error {
					return fb(c)
				})
			}
		}
		if opts.UnknownText != nil {
			return instrument(c, summary{name: "unknown_text", start: start}, func() error {
				return opts.UnknownText(c)
			})
		}

		summary{name: "unknown_text", start: start, status: "skip"}.emit(c, nil)
		return nil
	}

	return []tg.Route{{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}}
}
