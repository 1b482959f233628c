package middleware

import (
	"log/slog"

	"github.com/m3rciful/clinicbot/core/logger"
	tghelpers "github.com/m3rciful/clinicbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// ChatOptions restrict handlers to a single chat.
type ChatOptions struct {
	ChatID   int64
	OnReject tele.HandlerFunc
}

// ChatOnly lets updates through only when they originate from opts.ChatID.
// A zero ChatID disables the check.
func ChatOnly(opts ChatOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.ChatID == 0 {
				return next(c)
			}
			if _, chatID := tghelpers.SenderIDs(c); chatID == opts.ChatID {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), "tg", "access.rejected",
				slog.String("status", "skip"),
				slog.String("reason", "foreign_chat"),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
