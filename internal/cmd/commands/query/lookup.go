package query

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/base"
	"github.com/Sage-Bionetworks/synapse_sdk_go/pkg/synapse"
)

type LookupCommand struct {
	*base.Command

	client       base.ClientFlags
	flagKind     string
	flagProperty string
	flagParent   string
}

func (c *LookupCommand) Synopsis() string {
	return "Find the single entity with a given property value"
}

func (c *LookupCommand) Help() string {
	return `Usage: synapse lookup [options] <value>

  Finds the entity of -kind whose -property equals value, optionally limited
  to the children of -parent, and prints it. More than one match is an error;
  no match exits with code 3.` + c.Flags().Help()
}

func (c *LookupCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("lookup", flag.ContinueOnError))
	c.client.Register(f)
	f.StringVar(&c.flagKind, "kind", "dataset", "Entity kind to search.")
	f.StringVar(&c.flagProperty, "property", "name", "Property to match.")
	f.StringVar(&c.flagParent, "parent", "", "Only match children of this parent id.")
	return f
}

func (c *LookupCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 1 {
		ui.Error("expected exactly one argument: <value>")
		return 1
	}

	ctx := context.Background()
	client, err := c.Client(ctx, &c.client)
	if err != nil {
		ui.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	entity, err := client.LookupByProperty(ctx, c.flagKind, c.flagProperty, flags.Arg(0), c.flagParent)
	switch {
	case errors.Is(err, synapse.ErrAmbiguousResult):
		ui.Error(fmt.Sprintf("more than one %s has %s %q", c.flagKind, c.flagProperty, flags.Arg(0)))
		return 1
	case err != nil:
		ui.Error(fmt.Sprintf("error looking up %s: %v", c.flagKind, err))
		return 1
	case entity == nil:
		ui.Warn(fmt.Sprintf("no %s has %s %q", c.flagKind, c.flagProperty, flags.Arg(0)))
		return 3
	}
	if err := c.PrintJSON(entity); err != nil {
		ui.Error(err.Error())
		return 1
	}
	return 0
}
