package engine

import (
	"context"

	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
)

// WorkflowStore defines the interface for workflow definition persistence.
// FindByID returns nil and no error when the id is unknown.
type WorkflowStore interface {
	Save(ctx context.Context, def *domain.WorkflowDefinition) error
	FindByID(ctx context.Context, id string) (*domain.WorkflowDefinition, error)
	FindAll(ctx context.Context) ([]domain.WorkflowDefinition, error)
}

// RunStore is the append only run history. Implementations must be safe for
// concurrent use since runs of different workflows finish concurrently.
type RunStore interface {
	Append(ctx context.Context, rec *domain.RunRecord) error
	FindAllByWorkflowID(ctx context.Context, workflowID string) ([]domain.RunRecord, error)
}

// RunPublisher is notified of every recorded run.
type RunPublisher interface {
	Publish(ctx context.Context, rec *domain.RunRecord) error
}
