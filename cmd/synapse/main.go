package main

import (
	"os"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
