package entity

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/base"
	"github.com/Sage-Bionetworks/synapse_sdk_go/pkg/synapse"
)

type UpdateCommand struct {
	*base.Command

	client          base.ClientFlags
	flagAnnotations bool
}

func (c *UpdateCommand) Synopsis() string {
	return "Merge a partial entity into a stored one"
}

func (c *UpdateCommand) Help() string {
	return `Usage: synapse update [options] <uri> <partial>

  Reads the entity at uri, merges the partial entity into it and writes the
  result back guarded by the stored etag. With -annotations every top-level
  value of partial is a bag of annotation values merged key by key.

  Only repository resources can be updated: the write is guarded by the
  stored etag, which authentication resources do not carry.` +
		c.Flags().Help()
}

func (c *UpdateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("update", flag.ContinueOnError))
	c.client.Register(f)
	f.BoolVar(&c.flagAnnotations, "annotations", false,
		"Merge as an annotations resource instead of a plain entity.")
	return f
}

func (c *UpdateCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 2 {
		ui.Error("expected two arguments: <uri> <partial>")
		return 1
	}
	partial, err := base.ParseEntity(flags.Arg(1))
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	kind := synapse.KindEntity
	if c.flagAnnotations {
		kind = synapse.KindAnnotations
	}

	ctx := context.Background()
	client, err := c.Client(ctx, &c.client)
	if err != nil {
		ui.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	uri := flags.Arg(0)
	updated, err := client.UpdateKind(ctx, synapse.Repository, uri, partial, kind)
	switch {
	case errors.Is(err, synapse.ErrConflict):
		ui.Error(fmt.Sprintf("%s changed while updating, retry the command: %v", uri, err))
		return 2
	case err != nil:
		ui.Error(fmt.Sprintf("error updating entity: %v", err))
		return 1
	case updated == nil:
		ui.Error(fmt.Sprintf("no entity at %s", uri))
		return 1
	}
	if err := c.PrintJSON(updated); err != nil {
		ui.Error(err.Error())
		return 1
	}
	return 0
}
