package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/clinicbot/core/logger"
	tg "github.com/m3rciful/clinicbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes binds every registered command and its aliases to a summarised handler.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, def := range cmds {
		h := def.Handler
		s := summary{name: "command." + normalizeHandlerName(name)}
		handler := wrap(func(c tele.Context) error {
			s := s
			s.start = time.Now()
			return handleWithSummary(c, s, func() error { return h(c) })
		})
		routes = append(routes, tg.Route{Endpoint: name, Handler: handler})
		for _, alias := range def.Aliases {
			routes = append(routes, tg.Route{Endpoint: "/" + normalizeHandlerName(alias), Handler: handler})
		}
	}

	logger.TWire.Info("routes wired",
		slog.String("event", "wire.complete"),
		slog.Int("commands", len(cmds)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
