// Package base holds what every synapse subcommand shares: the logger and UI
// handed down from Main, flag set helpers and the client bootstrap.
package base

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded by every subcommand.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui
}

// NewCommand returns a Command; a nil logger is replaced by a null logger.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Command{Log: log, UI: ui}
}
