package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
)

var created = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func sampleDefinition(id string) *domain.WorkflowDefinition {
	return &domain.WorkflowDefinition{
		ID:   id,
		Name: "Sample " + id,
		Steps: []domain.Step{
			{Name: "Send Email", Type: domain.StepTypeSendEmail, DependsOn: []string{}},
			{Name: "Update Grant", Type: domain.StepTypeUpdateGrant, DependsOn: []string{"Send Email"}, Fail: true},
		},
		Created: created,
	}
}

func sampleRun(id, workflowID string, at time.Time) *domain.RunRecord {
	return &domain.RunRecord{
		ID:         id,
		WorkflowID: workflowID,
		ExecutedSteps: []domain.StepResult{
			{Name: "Send Email", Type: domain.StepTypeSendEmail, Status: domain.StepStatusSuccess},
			{Name: "Update Grant", Type: domain.StepTypeUpdateGrant, Status: domain.StepStatusFailed},
		},
		UpdatedAt: at,
	}
}

func TestMemoryStore_SaveAndFind(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, sampleDefinition("wf-1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := store.FindByID(ctx, "wf-1")
	if err != nil || got == nil {
		t.Fatalf("FindByID returned %v, %v", got, err)
	}
	if got.Name != "Sample wf-1" || len(got.Steps) != 2 || got.Steps[1].DependsOn[0] != "Send Email" {
		t.Errorf("Unexpected definition %+v", got)
	}

	got.Steps[1].DependsOn[0] = "changed"
	again, _ := store.FindByID(ctx, "wf-1")
	if again.Steps[1].DependsOn[0] != "Send Email" {
		t.Error("Stored definition was modified through a returned copy")
	}
}

func TestMemoryStore_FindByIDUnknown(t *testing.T) {
	got, err := NewMemoryStore().FindByID(context.Background(), "missing")
	if err != nil || got != nil {
		t.Errorf("Expected nil, nil; got %v, %v", got, err)
	}
}

func TestMemoryStore_SaveDuplicateID(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Save(ctx, sampleDefinition("wf-1"))
	if err := store.Save(ctx, sampleDefinition("wf-1")); err == nil {
		t.Error("Expected an error saving the same id twice")
	}
}

func TestMemoryStore_FindAllInCreationOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		_ = store.Save(ctx, sampleDefinition(id))
	}
	defs, _ := store.FindAll(ctx)
	if len(defs) != 3 || defs[0].ID != "c" || defs[1].ID != "a" || defs[2].ID != "b" {
		t.Errorf("Unexpected order %+v", defs)
	}
}

func TestMemoryStore_RunHistory(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	runs, _ := store.FindAllByWorkflowID(ctx, "wf-1")
	if runs == nil || len(runs) != 0 {
		t.Fatalf("Expected an empty non nil list, got %#v", runs)
	}

	_ = store.Append(ctx, sampleRun("r1", "wf-1", created))
	_ = store.Append(ctx, sampleRun("r2", "wf-2", created))
	_ = store.Append(ctx, sampleRun("r3", "wf-1", created.Add(time.Minute)))

	runs, _ = store.FindAllByWorkflowID(ctx, "wf-1")
	if len(runs) != 2 || runs[0].ID != "r1" || runs[1].ID != "r3" {
		t.Fatalf("Unexpected runs %+v", runs)
	}
	runs[0].ExecutedSteps[0].Status = domain.StepStatusSkipped
	again, _ := store.FindAllByWorkflowID(ctx, "wf-1")
	if again[0].ExecutedSteps[0].Status != domain.StepStatusSuccess {
		t.Error("Stored run was modified through a returned copy")
	}
}

func TestMemoryStore_ConcurrentAppend(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Append(ctx, sampleRun(fmt.Sprintf("r%d", i), "wf-1", created))
		}(i)
	}
	wg.Wait()

	runs, _ := store.FindAllByWorkflowID(ctx, "wf-1")
	if len(runs) != 50 {
		t.Errorf("Expected 50 runs, got %d", len(runs))
	}
}
