package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/clinicbot/core/telegram"
	"github.com/m3rciful/clinicbot/core/telegram/callbacks"
	"github.com/m3rciful/clinicbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute routes every inline button press through the registry by callback key.
// The press is answered before the handler runs so the client spinner stops.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key := callbacks.Key(c)
		s := summary{
			name:   "callback." + normalizeHandlerName(key),
			start:  start,
			extras: []slog.Attr{slog.String("cb_key", key)},
		}

		_ = c.Respond()

		cbHandler, ok := reg.GetCallback(key)
		if !ok || cbHandler == nil {
			s.status = "skip"
			s.outcome = "ok"
			s.extras = append(s.extras, slog.String("reason", "not_found"))
			logHandlerSummary(c, s, nil)
			return nil
		}

		return handleWithSummary(c, s, func() error {
			return cbHandler(c)
		})
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  wrap(handler),
	}
}

func wrap(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(middleware.MessageMetricsMiddleware(h)))
}
