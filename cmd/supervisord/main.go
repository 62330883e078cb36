// Package main is the entry point for the supervisord node process.
package main

import (
	"fmt"
	"os"

	"github.com/gridnode/supervisor/cmd/supervisord/cmd"
)

// Version information, set by build.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cmd.SetVersion(Version, BuildTime, GitCommit)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
