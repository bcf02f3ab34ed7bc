package daemon

import (
	"flag"
	"fmt"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/base"
)

type StatusCommand struct {
	*base.Command

	client base.ClientFlags
}

func (c *StatusCommand) Synopsis() string {
	return "Show the status of a daemon"
}

func (c *StatusCommand) Help() string {
	return `Usage: synapse status [options] <daemon-id>

  Polls the daemon once and prints its status.` + c.Flags().Help()
}

func (c *StatusCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("status", flag.ContinueOnError))
	c.client.Register(f)
	return f
}

func (c *StatusCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 1 {
		ui.Error("expected exactly one argument: <daemon-id>")
		return 1
	}

	ctx, stop := signalContext()
	defer stop()
	client, err := c.Client(ctx, &c.client)
	if err != nil {
		ui.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	status, err := client.CheckStatus(ctx, flags.Arg(0))
	if err != nil {
		ui.Error(fmt.Sprintf("error checking daemon: %v", err))
		return 1
	}
	return report(c.Command, status)
}
