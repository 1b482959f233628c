package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command is a slash command with its handler and menu metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Hidden keeps the command out of the Telegram command menu.
	Hidden  bool
	Aliases []string
}
