package entity

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/base"
	"github.com/Sage-Bionetworks/synapse_sdk_go/pkg/synapse"
)

type PutCommand struct {
	*base.Command

	client      base.ClientFlags
	flagService string
}

func (c *PutCommand) Synopsis() string {
	return "Replace an entity"
}

func (c *PutCommand) Help() string {
	return `Usage: synapse put [options] <uri> <entity>

  Replaces the entity at uri. The entity must carry the etag of the stored
  version; a stale etag is rejected with exit code 2.` + c.Flags().Help()
}

func (c *PutCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("put", flag.ContinueOnError))
	c.client.Register(f)
	f.StringVar(&c.flagService, "service", "repo", "Service to address: repo or auth.")
	return f
}

func (c *PutCommand) Run(args []string) int {
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

	stored, err := client.Put(ctx, svc, flags.Arg(0), entity)
	if err != nil {
		ui.Error(fmt.Sprintf("error replacing entity: %v", err))
		if errors.Is(err, synapse.ErrConflict) {
			return 2
		}
		return 1
	}
	if stored == nil {
		ui.Info(fmt.Sprintf("replaced %s", flags.Arg(0)))
		return 0
	}
	if err := c.PrintJSON(stored); err != nil {
		ui.Error(err.Error())
		return 1
	}
	return 0
}
