// Package main is the entry point for mistctl, a command line client that
// drives a helper through the bridge.
package main

import (
	"os"

	"github.com/GriffinCanCode/mist/cmd/mistctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
