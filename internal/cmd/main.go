package cmd

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/version"
)

// Main runs the CLI with the given arguments and returns the exit code.
func Main(args []string) int {
	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}
	return run(args, ui)
}

func run(args []string, ui cli.Ui) int {
	cliName := filepath.Base(args[0])

	level := hclog.Info
	if os.Getenv("SYNAPSE_LOG_LEVEL") != "" {
		level = hclog.LevelFromString(os.Getenv("SYNAPSE_LOG_LEVEL"))
	}
	log := hclog.New(&hclog.LoggerOptions{
		Name:   cliName,
		Level:  level,
		Output: os.Stderr,
	})

	if len(args) == 2 &&
		(args[1] == "-version" ||
			args[1] == "-v") {
		args = []string{args[0], "version"}
	}

	initCommands(log, ui)

	c := &cli.CLI{
		Name:       cliName,
		Args:       args[1:],
		Version:    version.Version,
		Commands:   Commands,
		HelpWriter: os.Stderr,
	}

	exitCode, err := c.Run()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	return exitCode
}
