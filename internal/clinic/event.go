package clinic

import (
	"github.com/m3rciful/clinicbot/internal/chat"
	"github.com/m3rciful/clinicbot/internal/intake"
)

// EventKind tells which fields of an Event are meaningful.
type EventKind int

const (
	EventCommand EventKind = iota + 1
	EventButton
	EventText
	EventPhoto
	EventMedia
)

func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventButton:
		return "button"
	case EventText:
		return "text"
	case EventPhoto:
		return "photo"
	case EventMedia:
		return "media"
	}
	return "unknown"
}

// CommandStart opens the main menu.
const CommandStart = "/start"

// Event is one inbound update, already stripped of transport details.
type Event struct {
	Kind      EventKind
	UserID    int64
	ChatID    int64
	FirstName string

	// Command is set for EventCommand, including the leading slash.
	Command string
	// Action and Message are set for EventButton; Message is the message carrying the button.
	Action  chat.Action
	Message chat.MessageRef
	// Text is set for EventText.
	Text string
	// Photo is set for EventPhoto.
	Photo intake.Photo
	// MediaKind is set for EventMedia.
	MediaKind string
}
