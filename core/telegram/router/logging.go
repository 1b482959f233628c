package router

import (
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/clinicbot/core/logger"
	tghelpers "github.com/m3rciful/clinicbot/core/telegram/helpers"
	"github.com/m3rciful/clinicbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// summary describes the handler.handled line written after every routed update.
type summary struct {
	name    string
	start   time.Time
	status  string
	outcome string
	extras  []slog.Attr
}

func handleWithSummary(c tele.Context, s summary, fn func() error) error {
	tghelpers.WithHandler(c, s.name)
	err := fn()
	logHandlerSummary(c, s, err)
	return err
}

func logHandlerSummary(c tele.Context, s summary, err error) {
	ctx := tghelpers.WithHandler(c, s.name)
	msgs, kb := middleware.GetCounters(c)

	status := s.status
	if status == "" {
		status = logger.Status(err)
	}
	outcome := s.outcome
	if outcome == "" {
		outcome = logger.Status(err)
	}

	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", s.name),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(s.start)),
	}
	if err != nil {
		attrs = append(attrs, logger.Err(err)...)
		attrs = append(attrs, slog.String("cause", s.name))
	}
	attrs = append(attrs, s.extras...)

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
	}
	logger.LogEvent(ctx, logger.Component("tg"), level, "handler.handled", attrs...)
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}
