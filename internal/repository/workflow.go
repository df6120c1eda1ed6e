package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
)

// WorkflowRepository stores workflow definitions in the workflows table. The
// steps of a definition are kept as a JSON document in a text column.
type WorkflowRepository struct {
	db *sql.DB
}

const WORKFLOW_COLUMNS = ` id, name, steps, created `

func NewWorkflowRepository(db *sql.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

func (r *WorkflowRepository) Save(ctx context.Context, def *domain.WorkflowDefinition) error {
	steps, err := json.Marshal(def.Steps)
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}
	query := `INSERT INTO workflows (` + WORKFLOW_COLUMNS + `) VALUES (` + strings.Join(placeholders(4), ", ") + `)`
	_, err = r.db.ExecContext(ctx, query, def.ID, def.Name, string(steps), formatDateInDatabase(def.Created))
	return err
}

// FindByID returns nil and no error when no definition has the id.
func (r *WorkflowRepository) FindByID(ctx context.Context, id string) (*domain.WorkflowDefinition, error) {
	query := `SELECT ` + WORKFLOW_COLUMNS + ` FROM workflows WHERE id = ` + placeholder(1)

	def, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return def, nil
}

func (r *WorkflowRepository) FindAll(ctx context.Context) ([]domain.WorkflowDefinition, error) {
	query := `SELECT ` + WORKFLOW_COLUMNS + ` FROM workflows ORDER BY created, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defs := []domain.WorkflowDefinition{}
	for rows.Next() {
		def, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	return defs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*domain.WorkflowDefinition, error) {
	var def domain.WorkflowDefinition
	var steps string
	if err := row.Scan(&def.ID, &def.Name, &steps, &def.Created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(steps), &def.Steps); err != nil {
		return nil, fmt.Errorf("decode steps of workflow %s: %w", def.ID, err)
	}
	def.Created = def.Created.UTC()
	return &def, nil
}
