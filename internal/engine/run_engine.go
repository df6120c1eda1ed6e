package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RealZimboGuy/stepflow/internal/actions"
	"github.com/RealZimboGuy/stepflow/internal/graph"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/core"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// RunEngine executes a workflow definition, one goroutine per step.
type RunEngine struct {
	actions *actions.Registry
	clock   core.Clock
}

func NewRunEngine(registry *actions.Registry, clock core.Clock) *RunEngine {
	return &RunEngine{actions: registry, clock: clock}
}

// KnownStepType reports whether an action is registered for the step type.
func (e *RunEngine) KnownStepType(stepType domain.StepType) bool {
	return e.actions.Known(stepType)
}

// terminal is written once by the goroutine that owns the step, before done
// is closed. Dependents read status only after receiving from done.
type terminal struct {
	status domain.StepStatus
	done   chan struct{}
}

// Execute resolves the dependency graph of the definition and runs every
// step. Graph errors are returned before any step starts. Otherwise the
// returned record holds one result per step, in declaration order.
func (e *RunEngine) Execute(ctx context.Context, def *domain.WorkflowDefinition) (*domain.RunRecord, error) {
	ctx = context.WithValue(ctx, core.CtxKeyWorkflowId, def.ID)
	g, err := graph.Resolve(def.Steps)
	if err != nil {
		slog.ErrorContext(ctx, "Workflow graph rejected", "error", err)
		return nil, fmt.Errorf("workflow %s: %w", def.ID, err)
	}

	runID := uuid.NewString()
	ctx = context.WithValue(ctx, core.CtxKeyRunId, runID)
	slog.InfoContext(ctx, "Running workflow", "steps", g.Len(), "order", g.Order())

	slots := make(map[string]*terminal, g.Len())
	for _, node := range g.Nodes() {
		slots[node.Step.Name] = &terminal{done: make(chan struct{})}
	}

	var group errgroup.Group
	for _, node := range g.Nodes() {
		group.Go(func() error {
			slot := slots[node.Step.Name]
			defer close(slot.done)
			slot.status = e.runStep(ctx, node, slots)
			return nil
		})
	}
	_ = group.Wait()

	rec := &domain.RunRecord{
		ID:            runID,
		WorkflowID:    def.ID,
		ExecutedSteps: make([]domain.StepResult, 0, g.Len()),
		UpdatedAt:     e.clock.Now().UTC(),
	}
	for _, node := range g.Nodes() {
		rec.ExecutedSteps = append(rec.ExecutedSteps, domain.StepResult{
			Name:   node.Step.Name,
			Type:   node.Step.Type,
			Status: slots[node.Step.Name].status,
		})
	}
	slog.InfoContext(ctx, "Workflow finished")
	return rec, nil
}

// runStep waits for every dependency to reach a terminal state, then decides
// the step's own outcome.
func (e *RunEngine) runStep(ctx context.Context, node *graph.Node, slots map[string]*terminal) (status domain.StepStatus) {
	blocked := false
	for _, dep := range node.Dependencies {
		slot := slots[dep]
		<-slot.done
		if slot.status != domain.StepStatusSuccess {
			blocked = true
		}
	}

	step := node.Step
	if blocked {
		slog.InfoContext(ctx, "Step skipped due to failed dependencies", "step", step.Name)
		return domain.StepStatusSkipped
	}
	if step.Fail {
		slog.InfoContext(ctx, "Step simulated failure", "step", step.Name)
		return domain.StepStatusFailed
	}

	// a handler panic is recorded as a failed step
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Step action panicked", "step", step.Name, "panic", r)
			status = domain.StepStatusFailed
		}
	}()
	e.actions.Perform(ctx, step)
	return domain.StepStatusSuccess
}
