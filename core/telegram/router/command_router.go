package router

import (
	"github.com/lknvpn/supportbot/core/logger"
	tg "github.com/lknvpn/supportbot/core/telegram"
	"github.com/lknvpn/supportbot/core/telegram/middleware"
	"log/slog"
)

// CommandRoutes wraps every registered command handler with the recover
// and logging middleware and reports the finished wiring.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for name, def := range reg.Commands() {
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler:  middleware.LoggerMiddleware(middleware.RecoverMiddleware(def.Handler)),
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
