package tgbot

import (
	"fmt"
	"log/slog"

	"github.com/m3rciful/clinicbot/core/logger"
	tg "github.com/m3rciful/clinicbot/core/telegram"
	"github.com/m3rciful/clinicbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/clinicbot/core/telegram/helpers"
	"github.com/m3rciful/clinicbot/core/telegram/middleware"
	"github.com/m3rciful/clinicbot/core/telegram/router"
	"github.com/m3rciful/clinicbot/internal/chat"
	"github.com/m3rciful/clinicbot/internal/clinic"

	tele "gopkg.in/telebot.v4"
)

// Bot wires the clinic service into the telegram registry and routes.
type Bot struct {
	svc            *clinic.Service
	operatorChatID int64
}

// New returns a Bot serving svc.
func New(svc *clinic.Service, operatorChatID int64) *Bot {
	return &Bot{svc: svc, operatorChatID: operatorChatID}
}

// Register adds the /start command and every button key to reg.
// Done toggles are accepted only from the operator chat.
func (b *Bot) Register(reg *tg.Registry) error {
	if err := reg.RegisterCommand(clinic.CommandStart, commands.Command{
		Handler:     b.Handle,
		Description: "Главное меню",
	}); err != nil {
		return err
	}

	operatorOnly := middleware.ChatOnly(middleware.ChatOptions{ChatID: b.operatorChatID})
	for _, key := range chat.Keys() {
		h := b.Handle
		if key == chat.KeyMarkDone || key == chat.KeyMarkUndone {
			h = operatorOnly(h)
		}
		if err := reg.RegisterCallback(key, h); err != nil {
			return fmt.Errorf("tgbot: register %s: %w", key, err)
		}
	}
	return nil
}

// Routes returns every route the bot serves.
func (b *Bot) Routes(reg *tg.Registry) []tg.Route {
	routes := router.CommandRoutes(reg)
	routes = append(routes, router.CallbackRoute(reg))
	return append(routes, router.MessageRoutes(b, reg)...)
}

// Active reports whether the user is inside the request flow.
func (b *Bot) Active(userID int64) bool {
	return b.svc.IntakeActive(userID)
}

// HandleMessage feeds a text, photo or media message to the service.
func (b *Bot) HandleMessage(c tele.Context) error {
	return b.Handle(c)
}

// Handle converts the update and passes it to the service.
func (b *Bot) Handle(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	ev, err := EventFrom(c)
	if err != nil {
		logger.Debug(ctx, "tg", "event.dropped",
			append([]slog.Attr{slog.String("status", "skip")}, logger.Err(err)...)...,
		)
		return nil
	}
	return b.svc.Handle(ctx, ev)
}
