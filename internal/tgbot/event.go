package tgbot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m3rciful/clinicbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/clinicbot/core/telegram/helpers"
	"github.com/m3rciful/clinicbot/internal/chat"
	"github.com/m3rciful/clinicbot/internal/clinic"
	"github.com/m3rciful/clinicbot/internal/intake"

	tele "gopkg.in/telebot.v4"
)

// ErrUnsupportedUpdate is returned for updates that carry neither a message nor a callback.
var ErrUnsupportedUpdate = errors.New("tgbot: unsupported update")

// EventFrom converts a telebot update into a clinic event.
func EventFrom(c tele.Context) (clinic.Event, error) {
	userID, chatID := tghelpers.SenderIDs(c)
	ev := clinic.Event{UserID: userID, ChatID: chatID}
	if u := c.Sender(); u != nil {
		ev.FirstName = u.FirstName
	}

	if cb := c.Callback(); cb != nil {
		key, payload := callbacks.Parse(cb)
		action, err := chat.Decode(key, payload)
		if err != nil {
			return ev, fmt.Errorf("tgbot: decode callback %q: %w", key, err)
		}
		ev.Kind = clinic.EventButton
		ev.Action = action
		if m := cb.Message; m != nil {
			ev.Message = chat.MessageRef{MessageID: m.ID, ChatID: chatID}
			if m.Chat != nil {
				ev.Message.ChatID = m.Chat.ID
			}
		}
		return ev, nil
	}

	m := c.Message()
	if m == nil {
		return ev, ErrUnsupportedUpdate
	}
	switch {
	case m.Photo != nil:
		ev.Kind = clinic.EventPhoto
		ev.Photo = intake.Photo{FileID: m.Photo.FileID, Size: m.Photo.FileSize}
	case m.Text != "" && strings.HasPrefix(m.Text, "/"):
		ev.Kind = clinic.EventCommand
		name, _, _ := strings.Cut(m.Text, " ")
		name, _, _ = strings.Cut(name, "@")
		ev.Command = name
	case m.Text != "":
		ev.Kind = clinic.EventText
		ev.Text = m.Text
	default:
		ev.Kind = clinic.EventMedia
		ev.MediaKind = mediaKind(m)
	}
	return ev, nil
}

func mediaKind(m *tele.Message) string {
	switch {
	case m.Document != nil:
		return "document"
	case m.Video != nil:
		return "video"
	case m.Animation != nil:
		return "animation"
	case m.Audio != nil:
		return "audio"
	case m.Voice != nil:
		return "voice"
	case m.VideoNote != nil:
		return "video_note"
	case m.Sticker != nil:
		return "sticker"
	case m.Venue != nil:
		return "venue"
	case m.Location != nil:
		return "location"
	case m.Contact != nil:
		return "contact"
	case m.Dice != nil:
		return "dice"
	}
	return "other"
}
