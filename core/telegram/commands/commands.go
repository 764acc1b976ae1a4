// Package commands defines the registry entry for a slash command.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command couples a handler with the metadata the registry needs.
// Hidden commands work but stay out of the public command menu.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	Hidden      bool
	Aliases     []string
}
