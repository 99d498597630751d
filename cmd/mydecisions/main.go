// Package main is the entry point for the mydecisions CLI.
package main

import (
	"os"

	"github.com/mydecisions/deskhost/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
