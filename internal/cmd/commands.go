package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/base"
	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/commands/daemon"
	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/commands/entity"
	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/commands/query"
	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/commands/version"
)

// Commands is the mapping of all available synapse commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := base.NewCommand(log, ui)

	Commands = map[string]cli.CommandFactory{
		"get": func() (cli.Command, error) {
			return &entity.GetCommand{Command: b}, nil
		},
		"create": func() (cli.Command, error) {
			return &entity.CreateCommand{Command: b}, nil
		},
		"update": func() (cli.Command, error) {
			return &entity.UpdateCommand{Command: b}, nil
		},
		"put": func() (cli.Command, error) {
			return &entity.PutCommand{Command: b}, nil
		},
		"delete": func() (cli.Command, error) {
			return &entity.DeleteCommand{Command: b}, nil
		},
		"query": func() (cli.Command, error) {
			return &query.QueryCommand{Command: b}, nil
		},
		"lookup": func() (cli.Command, error) {
			return &query.LookupCommand{Command: b}, nil
		},
		"backup": func() (cli.Command, error) {
			return &daemon.BackupCommand{Command: b}, nil
		},
		"restore": func() (cli.Command, error) {
			return &daemon.RestoreCommand{Command: b}, nil
		},
		"status": func() (cli.Command, error) {
			return &daemon.StatusCommand{Command: b}, nil
		},
		"wait": func() (cli.Command, error) {
			return &daemon.WaitCommand{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
