package version

import (
	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/base"
	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version of the binary"
}

func (c *Command) Help() string {
	return `Usage: synapse version

  Prints the version of the binary.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output("synapse " + version.Version)
	return 0
}
