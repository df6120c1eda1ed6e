package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stepflow",
	Short: "Run workflows of dependent steps",
	Long: `stepflow runs named workflows made of steps wired together by declared
dependencies. Independent steps run concurrently, a step starts only once all
of its dependencies have finished, and a failed step causes every step that
depends on it to be skipped.

EXAMPLES:
  # Start the HTTP API
  stepflow serve

  # Run a workflow file once and print the run record
  stepflow run -f workflow.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}
