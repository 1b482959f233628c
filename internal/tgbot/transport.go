// Package tgbot binds the clinic service to telebot.
package tgbot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/clinicbot/core/telegram/keyboard"
	"github.com/m3rciful/clinicbot/core/telegram/middleware"
	tgsender "github.com/m3rciful/clinicbot/core/telegram/sender"
	"github.com/m3rciful/clinicbot/internal/chat"

	tele "gopkg.in/telebot.v4"
)

// API is the subset of *tele.Bot used by Transport.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	EditReplyMarkup(msg tele.Editable, markup *tele.ReplyMarkup) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

// ErrNoMessage is returned when a send succeeded without a message in the reply.
var ErrNoMessage = errors.New("tgbot: empty send result")

// Transport implements chat.Transport over the Bot API. User-facing calls run
// inline; operator notifications go through the dispatcher pool.
type Transport struct {
	api        API
	dispatcher *tgsender.Dispatcher
	operator   tele.ChatID
}

// NewTransport builds a Transport that reports operator requests to operatorChatID.
func NewTransport(api API, dispatcher *tgsender.Dispatcher, operatorChatID int64) *Transport {
	return &Transport{api: api, dispatcher: dispatcher, operator: tele.ChatID(operatorChatID)}
}

var _ chat.Transport = (*Transport)(nil)

func (t *Transport) SendPrompt(ctx context.Context, chatID int64, p chat.Prompt) (chat.MessageRef, error) {
	markup := Markup(p.Options)
	msg, err := t.api.Send(tele.ChatID(chatID), p.Text, sendOptions(markup)...)
	if err != nil {
		return chat.MessageRef{}, fmt.Errorf("tgbot: send: %w", err)
	}
	middleware.CountMessage(ctx, markup != nil)
	if msg == nil {
		return chat.MessageRef{}, ErrNoMessage
	}
	ref := chat.MessageRef{ChatID: chatID, MessageID: msg.ID}
	if msg.Chat != nil {
		ref.ChatID = msg.Chat.ID
	}
	return ref, nil
}

func (t *Transport) EditPrompt(ctx context.Context, ref chat.MessageRef, p chat.Prompt) error {
	markup := Markup(p.Options)
	_, err := t.api.Edit(stored(ref), p.Text, sendOptions(markup)...)
	if err = ignoreNotModified(err); err != nil {
		return fmt.Errorf("tgbot: edit: %w", err)
	}
	middleware.CountMessage(ctx, markup != nil)
	return nil
}

func (t *Transport) DeletePrompt(_ context.Context, ref chat.MessageRef) error {
	if err := t.api.Delete(stored(ref)); err != nil {
		return fmt.Errorf("tgbot: delete: %w", err)
	}
	return nil
}

func (t *Transport) EditOptions(ctx context.Context, ref chat.MessageRef, options [][]chat.Option) error {
	markup := Markup(options)
	if markup == nil {
		markup = &tele.ReplyMarkup{}
	}
	_, err := t.api.EditReplyMarkup(stored(ref), markup)
	if err = ignoreNotModified(err); err != nil {
		return fmt.Errorf("tgbot: edit markup: %w", err)
	}
	middleware.CountMessage(ctx, len(markup.InlineKeyboard) > 0)
	return nil
}

func (t *Transport) SendOperatorNotification(ctx context.Context, p chat.Prompt) error {
	markup := Markup(p.Options)
	return t.toOperator(ctx, "send_message", markup != nil, func() error {
		_, err := t.api.Send(t.operator, p.Text, sendOptions(markup)...)
		return err
	})
}

func (t *Transport) SendOperatorPhoto(ctx context.Context, photoID string, p chat.Prompt) error {
	markup := Markup(p.Options)
	photo := &tele.Photo{File: tele.File{FileID: photoID}, Caption: p.Text}
	return t.toOperator(ctx, "send_photo", markup != nil, func() error {
		_, err := t.api.Send(t.operator, photo, sendOptions(markup)...)
		return err
	})
}

func (t *Transport) toOperator(ctx context.Context, action string, hasKeyboard bool, run func() error) error {
	if err := t.dispatcher.Do(ctx, action, "operator", run); err != nil {
		return fmt.Errorf("tgbot: %s to operator: %w", action, err)
	}
	middleware.CountMessage(ctx, hasKeyboard)
	return nil
}

// Markup converts option rows to an inline keyboard, nil when there are none.
func Markup(options [][]chat.Option) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(options))
	for _, row := range options {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, o := range row {
			switch {
			case o.URL != "":
				btns = append(btns, keyboard.InlineBtn{Text: o.Label, URL: o.URL})
			case o.Action != nil:
				btns = append(btns, keyboard.InlineBtn{Text: o.Label, Unique: o.Action.Key(), Data: o.Action.Payload()})
			}
		}
		rows = append(rows, btns)
	}
	return keyboard.InlineButtonsRows(rows...)
}

func sendOptions(markup *tele.ReplyMarkup) []interface{} {
	opts := []interface{}{tele.NoPreview}
	if markup != nil {
		opts = append(opts, markup)
	}
	return opts
}

func stored(ref chat.MessageRef) tele.StoredMessage {
	return tele.StoredMessage{MessageID: strconv.Itoa(ref.MessageID), ChatID: ref.ChatID}
}

func ignoreNotModified(err error) error {
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}
