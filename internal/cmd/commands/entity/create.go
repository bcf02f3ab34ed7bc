package entity

import (
	"context"
	"flag"
	"fmt"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/base"
)

type CreateCommand struct {
	*base.Command

	client      base.ClientFlags
	flagService string
}

func (c *CreateCommand) Synopsis() string {
	return "Create an entity"
}

func (c *CreateCommand) Help() string {
	return `Usage: synapse create [options] <uri> <entity>

  Creates an entity under uri and prints what the service stored. The entity
  is inline JSON, @path to read a file, or - to read standard input.` +
		c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("create", flag.ContinueOnError))
	c.client.Register(f)
	f.StringVar(&c.flagService, "service", "repo", "Service to address: repo or auth.")
	return f
}

func (c *CreateCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 2 {
		ui.Error("expected two arguments: <uri> <entity>")
		return 1
	}
	svc, err := base.ParseService(c.flagService)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	entity, err := base.ParseEntity(flags.Arg(1))
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

	created, err := client.Create(ctx, svc, flags.Arg(0), entity)
	if err != nil {
		ui.Error(fmt.Sprintf("error creating entity: %v", err))
		return 1
	}
	c.Log.Info("created entity", "uri", created.URI(), "id", created.ID())
	if err := c.PrintJSON(created); err != nil {
		ui.Error(err.Error())
		return 1
	}
	return 0
}
