// Package main is the entry point for the mydecisionsd desktop host.
package main

import (
	"os"

	"github.com/mydecisions/deskhost/internal/daemon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
