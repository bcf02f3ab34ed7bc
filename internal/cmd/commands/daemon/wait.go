package daemon

import (
	"flag"
	"fmt"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/base"
)

type WaitCommand struct {
	*base.Command

	client base.ClientFlags
}

func (c *WaitCommand) Synopsis() string {
	return "Wait for a daemon to finish"
}

func (c *WaitCommand) Help() string {
	return `Usage: synapse wait [options] <daemon-id>

  Polls the daemon every -poll-interval until it leaves the STARTED state.
  Interrupting the command stops the wait; the daemon keeps running.` +
		c.Flags().Help()
}

func (c *WaitCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("wait", flag.ContinueOnError))
	c.client.Register(f)
	return f
}

func (c *WaitCommand) Run(args []string) int {
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

	final, err := client.AwaitCompletion(ctx, flags.Arg(0))
	if err != nil {
		ui.Error(fmt.Sprintf("error waiting for daemon: %v", err))
		return 1
	}
	return report(c.Command, final)
}
