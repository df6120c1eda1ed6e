package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/RealZimboGuy/stepflow/pkg/stepflow/core"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"

	"github.com/google/uuid"
)

var ErrWorkflowNotFound = errors.New("workflow not found")

// WorkflowManager ties the workflow store, the run engine and the run history
// together for the HTTP and CLI layers.
type WorkflowManager struct {
	WorkflowStore WorkflowStore
	RunStore      RunStore
	Engine        *RunEngine
	publisher     RunPublisher
	clock         core.Clock
}

func NewWorkflowManager(workflowStore WorkflowStore, runStore RunStore, runEngine *RunEngine,
	publisher RunPublisher, clock core.Clock) *WorkflowManager {
	return &WorkflowManager{
		WorkflowStore: workflowStore,
		RunStore:      runStore,
		Engine:        runEngine,
		publisher:     publisher,
		clock:         clock,
	}
}

// CreateWorkflow stores a new definition and returns its generated id. The
// steps are expected to be validated already.
func (wm *WorkflowManager) CreateWorkflow(ctx context.Context, name string, steps []domain.Step) (string, error) {
	def := &domain.WorkflowDefinition{
		ID:      uuid.NewString(),
		Name:    name,
		Steps:   steps,
		Created: wm.clock.Now().UTC(),
	}
	slog.InfoContext(ctx, "Creating workflow", "workflow_id", def.ID, "name", name, "steps", len(steps))
	if err := wm.WorkflowStore.Save(ctx, def); err != nil {
		return "", fmt.Errorf("save workflow %q: %w", name, err)
	}
	return def.ID, nil
}

// ListWorkflows exposes the store's list for the API layer.
func (wm *WorkflowManager) ListWorkflows(ctx context.Context) ([]domain.WorkflowDefinition, error) {
	defs, err := wm.WorkflowStore.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if defs == nil {
		defs = []domain.WorkflowDefinition{}
	}
	return defs, nil
}

func (wm *WorkflowManager) GetWorkflow(ctx context.Context, id string) (*domain.WorkflowDefinition, error) {
	def, err := wm.WorkflowStore.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find workflow %s: %w", id, err)
	}
	if def == nil {
		return nil, ErrWorkflowNotFound
	}
	return def, nil
}

// RunWorkflow executes the workflow with the given id and appends the record
// to the run history. It returns ErrWorkflowNotFound for an unknown id and an
// error matching graph.ErrInvalidGraph when the steps cannot be scheduled.
func (wm *WorkflowManager) RunWorkflow(ctx context.Context, id string) (*domain.RunRecord, error) {
	def, err := wm.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	return wm.RunDefinition(ctx, def)
}

// RunDefinition executes a definition that has not necessarily been stored,
// then records the run.
func (wm *WorkflowManager) RunDefinition(ctx context.Context, def *domain.WorkflowDefinition) (*domain.RunRecord, error) {
	rec, err := wm.Engine.Execute(ctx, def)
	if err != nil {
		return nil, err
	}
	if err := wm.RunStore.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("record run for workflow %s: %w", def.ID, err)
	}
	if wm.publisher != nil {
		if err := wm.publisher.Publish(ctx, rec); err != nil {
			slog.WarnContext(ctx, "Failed to publish run", "workflow_id", def.ID, "run_id", rec.ID, "error", err)
		}
	}
	return rec, nil
}

// ListRuns returns the recorded runs of a workflow, never nil.
func (wm *WorkflowManager) ListRuns(ctx context.Context, id string) ([]domain.RunRecord, error) {
	if _, err := wm.GetWorkflow(ctx, id); err != nil {
		return nil, err
	}
	runs, err := wm.RunStore.FindAllByWorkflowID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find runs for workflow %s: %w", id, err)
	}
	if runs == nil {
		runs = []domain.RunRecord{}
	}
	return runs, nil
}
