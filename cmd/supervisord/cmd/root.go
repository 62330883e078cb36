// Package cmd implements the supervisord command-line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version   string
	buildTime string
	gitCommit string
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "supervisord",
	Short: "Run and administer the per-server process supervisor",
	Long: `supervisord hosts one process supervisor per managed server on this
node: a state machine driving activation/deactivation of the server's
process, a descriptor-reconciling update engine, and an admin
HTTP surface for inspecting and controlling each server.

Examples:
  # Run the node, serving the admin HTTP surface
  supervisord serve --config /etc/gridnode/supervisord.yaml

  # Print version information
  supervisord version
`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// SetVersion sets the version information printed by the version command.
func SetVersion(v, bt, gc string) {
	version = v
	buildTime = bt
	gitCommit = gc
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("supervisord version %s\n", version)
		fmt.Printf("Build time: %s\n", buildTime)
		fmt.Printf("Git commit: %s\n", gitCommit)
	},
}
