package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/RealZimboGuy/stepflow/pkg/stepflow"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the workflow HTTP API and block until interrupted.

Configuration is read from STEPFLOW_* environment variables, see the README.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	stepflow.SetupLogger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return stepflow.Start(ctx, nil)
}
