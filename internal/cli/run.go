package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RealZimboGuy/stepflow/internal/engine"
	"github.com/RealZimboGuy/stepflow/internal/notify"
	"github.com/RealZimboGuy/stepflow/internal/repository"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/core"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	workflowFile string
	failOnFailed bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workflow file once",
	Long: `Load a workflow definition from a YAML file, run it in process and print the
run record as JSON. The run is recorded under the file's id, or a generated
one when the file has none. Nothing is persisted.

EXAMPLES:
  stepflow run -f workflow.yaml
  stepflow run -f workflow.yaml --fail-on-failed`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&workflowFile, "file", "f", "", "workflow definition file (YAML or JSON)")
	runCmd.Flags().BoolVar(&failOnFailed, "fail-on-failed", false, "exit with an error when any step did not succeed")
	_ = runCmd.MarkFlagRequired("file")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	def, err := stepflow.LoadDefinitionFile(ctx, workflowFile)
	if err != nil {
		return err
	}

	clock := core.NewRealClock()
	store := repository.NewMemoryStore()
	manager := engine.NewWorkflowManager(store, store, engine.NewRunEngine(stepflow.ActionRegistry, clock), notify.NopPublisher{}, clock)

	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	def.Created = clock.Now().UTC()
	rec, err := manager.RunDefinition(ctx, def)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return err
	}

	if failOnFailed {
		for _, result := range rec.ExecutedSteps {
			if result.Status != domain.StepStatusSuccess {
				return fmt.Errorf("step %q finished %s", result.Name, result.Status)
			}
		}
	}
	return nil
}
