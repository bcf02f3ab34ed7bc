package base

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// FlagSet wraps flag.FlagSet with a help renderer for cli.Command.Help.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps f and silences its default usage output; commands print
// their own help.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.SetOutput(io.Discard)
	f.Usage = func() {}
	return &FlagSet{FlagSet: f}
}

// Help renders the options section appended to a command's help text.
func (f *FlagSet) Help() string {
	var b strings.Builder
	b.WriteString("\n\nOptions:\n")
	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&b, "\n  -%s", fl.Name)
		if fl.DefValue != "" && fl.DefValue != "false" {
			fmt.Fprintf(&b, "=%s", fl.DefValue)
		}
		fmt.Fprintf(&b, "\n      %s\n", fl.Usage)
	})
	return b.String()
}
