package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/clinicbot/core/telegram"
	tghelpers "github.com/m3rciful/clinicbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// mediaEndpoints lists every non-text message endpoint. telebot does not fall
// back to OnMedia for locations, contacts, venues or dice.
var mediaEndpoints = []string{
	tele.OnPhoto, tele.OnMedia,
	tele.OnLocation, tele.OnContact, tele.OnVenue, tele.OnDice,
}

// Flow is a multi-step conversation that claims messages while it is active for a user.
type Flow interface {
	Active(userID int64) bool
	HandleMessage(c tele.Context) error
}

// MessageRoutes builds the text, photo and generic media routes.
// Messages no flow or command claims are logged and skipped.
// Photos and all other non-text messages share one handler; the flow tells them apart.
func MessageRoutes(flow Flow, reg *tg.Registry) []tg.Route {
	active := func(c tele.Context) bool {
		userID, _ := tghelpers.SenderIDs(c)
		return flow != nil && userID != 0 && flow.Active(userID)
	}

	textHandler := func(c tele.Context) error {
		start := time.Now()
		if active(c) {
			return handleWithSummary(c, summary{name: "flow.text", start: start}, func() error {
				return flow.HandleMessage(c)
			})
		}

		if text := strings.TrimSpace(c.Text()); reg != nil && strings.HasPrefix(text, "/") {
			name, _, _ := strings.Cut(text, " ")
			if key, cmd, ok := reg.LookupCommand(name); ok && cmd.Handler != nil {
				return handleWithSummary(c, summary{name: "command." + normalizeHandlerName(key), start: start}, func() error {
					return cmd.Handler(c)
				})
			}
		}

		logHandlerSummary(c, summary{name: "unknown_text", start: start, status: "skip", outcome: "ok"}, nil)
		return nil
	}

	mediaHandler := func(c tele.Context) error {
		start := time.Now()
		if active(c) {
			return handleWithSummary(c, summary{name: "flow.media", start: start}, func() error {
				return flow.HandleMessage(c)
			})
		}
		logHandlerSummary(c, summary{name: "unexpected_media", start: start, status: "skip", outcome: "ok"}, nil)
		return nil
	}

	media := wrap(mediaHandler)
	routes := []tg.Route{{Endpoint: tele.OnText, Handler: wrap(textHandler)}}
	for _, endpoint := range mediaEndpoints {
		routes = append(routes, tg.Route{Endpoint: endpoint, Handler: media})
	}
	return routes
}
