package entity

import (
	"context"
	"flag"
	"fmt"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/base"
)

type GetCommand struct {
	*base.Command

	client      base.ClientFlags
	flagService string
}

func (c *GetCommand) Synopsis() string {
	return "Fetch an entity"
}

func (c *GetCommand) Help() string {
	return `Usage: synapse get [options] <uri>

  Fetches the entity at uri and prints it as JSON.` + c.Flags().Help()
}

func (c *GetCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("get", flag.ContinueOnError))
	c.client.Register(f)
	f.StringVar(&c.flagService, "service", "repo", "Service to address: repo or auth.")
	return f
}

func (c *GetCommand) Run(args []string) int {
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

	entity, err := client.Get(ctx, svc, flags.Arg(0))
	if err != nil {
		ui.Error(fmt.Sprintf("error getting entity: %v", err))
		return 1
	}
	if err := c.PrintJSON(entity); err != nil {
		ui.Error(err.Error())
		return 1
	}
	return 0
}
