// Package main is the entry point for the gigspace CLI.
package main

import (
	"fmt"
	"os"

	"github.com/gigspace/gigspace/internal/cli"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var _ = []string{commit, date}

func main() {
	// Default entrypoint: open the messaging interface when invoked
	// with no args.
	var err error
	if len(os.Args) == 1 {
		err = cli.ExecuteUI(version)
	} else {
		err = cli.Execute(version)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
