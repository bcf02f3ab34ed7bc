package daemon

import (
	"flag"
	"fmt"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/base"
)

type BackupCommand struct {
	*base.Command

	client   base.ClientFlags
	flagWait bool
}

func (c *BackupCommand) Synopsis() string {
	return "Start a repository backup"
}

func (c *BackupCommand) Help() string {
	return `Usage: synapse backup [options]

  Starts a backup daemon and prints its status. With -wait the command polls
  until the daemon finishes and exits non-zero if it failed.` + c.Flags().Help()
}

func (c *BackupCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("backup", flag.ContinueOnError))
	c.client.Register(f)
	f.BoolVar(&c.flagWait, "wait", false, "Wait for the daemon to finish.")
	return f
}

func (c *BackupCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 0 {
		ui.Error("backup takes no arguments")
		return 1
	}

	ctx, stop := signalContext()
	defer stop()
	client, err := c.Client(ctx, &c.client)
	if err != nil {
		ui.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	started, err := client.StartBackup(ctx)
	if err != nil {
		ui.Error(fmt.Sprintf("error starting backup: %v", err))
		return 1
	}
	return finish(ctx, c.Command, client, started, c.flagWait)
}
