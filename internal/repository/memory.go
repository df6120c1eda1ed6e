package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
)

// MemoryStore keeps workflow definitions and run history in process. It
// serves as both the workflow store and the run store when no database is
// configured. Everything is lost on restart.
type MemoryStore struct {
	mu        sync.RWMutex
	workflows map[string]domain.WorkflowDefinition
	order     []string
	runs      map[string][]domain.RunRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workflows: make(map[string]domain.WorkflowDefinition),
		runs:      make(map[string][]domain.RunRecord),
	}
}

func (m *MemoryStore) Save(ctx context.Context, def *domain.WorkflowDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workflows[def.ID]; ok {
		return fmt.Errorf("workflow %s already exists", def.ID)
	}
	m.workflows[def.ID] = cloneDefinition(*def)
	m.order = append(m.order, def.ID)
	return nil
}

func (m *MemoryStore) FindByID(ctx context.Context, id string) (*domain.WorkflowDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.workflows[id]
	if !ok {
		return nil, nil
	}
	def = cloneDefinition(def)
	return &def, nil
}

func (m *MemoryStore) FindAll(ctx context.Context) ([]domain.WorkflowDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	defs := make([]domain.WorkflowDefinition, 0, len(m.order))
	for _, id := range m.order {
		defs = append(defs, cloneDefinition(m.workflows[id]))
	}
	return defs, nil
}

func (m *MemoryStore) Append(ctx context.Context, rec *domain.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *rec
	stored.ExecutedSteps = slices.Clone(rec.ExecutedSteps)
	m.runs[rec.WorkflowID] = append(m.runs[rec.WorkflowID], stored)
	return nil
}

func (m *MemoryStore) FindAllByWorkflowID(ctx context.Context, workflowID string) ([]domain.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runs := make([]domain.RunRecord, 0, len(m.runs[workflowID]))
	for _, rec := range m.runs[workflowID] {
		rec.ExecutedSteps = slices.Clone(rec.ExecutedSteps)
		runs = append(runs, rec)
	}
	return runs, nil
}

// callers get copies so a returned definition can be changed without
// touching the stored one
func cloneDefinition(def domain.WorkflowDefinition) domain.WorkflowDefinition {
	steps := make([]domain.Step, len(def.Steps))
	for i, s := range def.Steps {
		s.DependsOn = slices.Clone(s.DependsOn)
		steps[i] = s
	}
	def.Steps = steps
	return def
}
