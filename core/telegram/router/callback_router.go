package router

import (
	"time"

	tg "github.com/lknvpn/supportbot/core/telegram"
	"github.com/lknvpn/supportbot/core/telegram/callbacks"
	"github.com/lknvpn/supportbot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for unknown callback keys.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute dispatches every inline button press through the registry
// by its callback key. The press is acknowledged up front so the client
// spinner stops even when the handler fails.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		_ = c.Respond()

		key, _ := callbacks.ParseCallbackData(cb)
		s := summary{
			name:   "callback." + normalizeHandlerName(key),
			start:  start,
			extras: []slog.Attr{slog.String("cb_key", key)},
		}

		if h, ok := reg.GetCallback(key); ok && h != nil {
			return instrument(c, s, func() error { return h(c) })
		}

		fallback := reg.CallbackNotFound()
		if fallback == nil {
			fallback = opts.NotFound
		}
		s.extras = append(s.extras, slog.String("reason", "not_found"))
		return instrument(c, s, func() error {
			if fallback != nil {
				return fallback(c)
			}
			return nil
		})
	}

	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
