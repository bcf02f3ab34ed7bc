package daemon

import (
	"flag"
	"fmt"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/base"
)

type RestoreCommand struct {
	*base.Command

	client   base.ClientFlags
	flagWait bool
}

func (c *RestoreCommand) Synopsis() string {
	return "Restore the repository from a backup"
}

func (c *RestoreCommand) Help() string {
	return `Usage: synapse restore [options] <backup-url>

  Starts a restore daemon reading backup-url and prints its status.` +
		c.Flags().Help()
}

func (c *RestoreCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("restore", flag.ContinueOnError))
	c.client.Register(f)
	f.BoolVar(&c.flagWait, "wait", false, "Wait for the daemon to finish.")
	return f
}

func (c *RestoreCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 1 {
		ui.Error("expected exactly one argument: <backup-url>")
		return 1
	}

	ctx, stop := signalContext()
	defer stop()
	client, err := c.Client(ctx, &c.client)
	if err != nil {
		ui.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	started, err := client.StartRestore(ctx, flags.Arg(0))
	if err != nil {
		ui.Error(fmt.Sprintf("error starting restore: %v", err))
		return 1
	}
	return finish(ctx, c.Command, client, started, c.flagWait)
}
