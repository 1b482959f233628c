package telegram

import (
	"github.com/m3rciful/clinicbot/core/telegram/middleware"
)

// DefaultMiddlewares is the global chain applied with bot.Use.
// Routes built by the router package add the per-update logger and counters themselves.
func DefaultMiddlewares() []Middleware {
	return []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}
}
