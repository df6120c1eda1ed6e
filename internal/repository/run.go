package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
)

// RunRepository is the append only run history. Rows are never updated, the
// seq column keeps the order in which runs were appended.
type RunRepository struct {
	db *sql.DB
}

const RUN_COLUMNS = ` id, workflow_id, step_results, updated_at `

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Append(ctx context.Context, rec *domain.RunRecord) error {
	results, err := json.Marshal(rec.ExecutedSteps)
	if err != nil {
		return fmt.Errorf("encode step results: %w", err)
	}
	query := `INSERT INTO workflow_runs (` + RUN_COLUMNS + `) VALUES (` + strings.Join(placeholders(4), ", ") + `)`
	_, err = r.db.ExecContext(ctx, query, rec.ID, rec.WorkflowID, string(results), formatDateInDatabase(rec.UpdatedAt))
	return err
}

func (r *RunRepository) FindAllByWorkflowID(ctx context.Context, workflowID string) ([]domain.RunRecord, error) {
	query := `SELECT ` + RUN_COLUMNS + ` FROM workflow_runs WHERE workflow_id = ` + placeholder(1) + ` ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []domain.RunRecord{}
	for rows.Next() {
		var rec domain.RunRecord
		var results string
		if err := rows.Scan(&rec.ID, &rec.WorkflowID, &results, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(results), &rec.ExecutedSteps); err != nil {
			return nil, fmt.Errorf("decode run %s: %w", rec.ID, err)
		}
		rec.UpdatedAt = rec.UpdatedAt.UTC()
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}
