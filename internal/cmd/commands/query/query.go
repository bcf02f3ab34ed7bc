package query

import (
	"context"
	"flag"
	"fmt"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/base"
)

type QueryCommand struct {
	*base.Command

	client base.ClientFlags
}

func (c *QueryCommand) Synopsis() string {
	return "Run a repository query"
}

func (c *QueryCommand) Help() string {
	return `Usage: synapse query [options] <query>

  Runs a query against the repository and prints the result rows as JSON.

      synapse query 'select * from dataset where name == "MSKCC"'` +
		c.Flags().Help()
}

func (c *QueryCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("query", flag.ContinueOnError))
	c.client.Register(f)
	return f
}

func (c *QueryCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 1 {
		ui.Error("expected exactly one argument: <query>")
		return 1
	}

	ctx := context.Background()
	client, err := c.Client(ctx, &c.client)
	if err != nil {
		ui.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	result, err := client.QueryRepo(ctx, flags.Arg(0))
	if err != nil {
		ui.Error(fmt.Sprintf("error running query: %v", err))
		return 1
	}
	c.Log.Debug("query finished", "total", result.TotalNumberOfResults, "rows", len(result.Results))
	if err := c.PrintJSON(result); err != nil {
		ui.Error(err.Error())
		return 1
	}
	return 0
}
