// Package chat holds the transport-neutral vocabulary shared by the bot flows:
// prompts with selectable options, message references and the Transport port.
package chat

import "context"

// Option is one selectable entry of a prompt. Exactly one of Action or URL is set.
type Option struct {
	Label  string
	Action Action
	URL    string
}

// Prompt is a message text with an optional grid of options, one slice per row.
type Prompt struct {
	Text    string
	Options [][]Option
}

// HasOptions reports whether the prompt carries a keyboard.
func (p Prompt) HasOptions() bool {
	for _, row := range p.Options {
		if len(row) > 0 {
			return true
		}
	}
	return false
}

// MessageRef identifies a message that was delivered to a chat.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// IsZero reports whether the reference points nowhere.
func (r MessageRef) IsZero() bool {
	return r.ChatID == 0 && r.MessageID == 0
}

// Transport delivers prompts to users and to the operator chat.
type Transport interface {
	SendPrompt(ctx context.Context, chatID int64, p Prompt) (MessageRef, error)
	EditPrompt(ctx context.Context, ref MessageRef, p Prompt) error
	DeletePrompt(ctx context.Context, ref MessageRef) error
	EditOptions(ctx context.Context, ref MessageRef, options [][]Option) error
	SendOperatorNotification(ctx context.Context, p Prompt) error
	SendOperatorPhoto(ctx context.Context, photoID string, p Prompt) error
}

// Row is shorthand for a single keyboard row.
func Row(opts ...Option) []Option {
	return opts
}

// Button builds an option bound to an action.
func Button(label string, a Action) Option {
	return Option{Label: label, Action: a}
}

// Link builds an option that opens url.
func Link(label, url string) Option {
	return Option{Label: label, URL: url}
}
