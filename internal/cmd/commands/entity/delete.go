package entity

import (
	"context"
	"flag"
	"fmt"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/base"
)

type DeleteCommand struct {
	*base.Command

	client      base.ClientFlags
	flagService string
}

func (c *DeleteCommand) Synopsis() string {
	return "Delete an entity"
}

func (c *DeleteCommand) Help() string {
	return `Usage: synapse delete [options] <uri>

  Deletes the entity at uri.` + c.Flags().Help()
}

func (c *DeleteCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("delete", flag.ContinueOnError))
	c.client.Register(f)
	f.StringVar(&c.flagService, "service", "repo", "Service to address: repo or auth.")
	return f
}

func (c *DeleteCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 1 {
		ui.Error("expected exactly one argument: <uri>")
		return 1
	}
	svc, err := base.ParseService(c.flagService)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	ctx := context.Background()
	client, err := c.Client(ctx, &c.client)
	if err != nil {
		ui.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	if err := client.Delete(ctx, svc, flags.Arg(0)); err != nil {
		ui.Error(fmt.Sprintf("error deleting entity: %v", err))
		return 1
	}
	ui.Info(fmt.Sprintf("deleted %s", flags.Arg(0)))
	return 0
}
