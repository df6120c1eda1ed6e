package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/RealZimboGuy/stepflow/internal/config"
	"github.com/RealZimboGuy/stepflow/internal/migrations"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"

	_ "github.com/mattn/go-sqlite3"
)

func openSqlite(t *testing.T) *sql.DB {
	t.Helper()
	t.Setenv(config.DATABASE_TYPE, config.DATABASE_TYPE_SQLLITE)

	fileName := filepath.Join(t.TempDir(), "stepflow.db")
	if err := migrations.Up("sqllite3", "sqlite3://"+fileName); err != nil {
		t.Fatalf("Migrations failed: %v", err)
	}
	db, err := sql.Open("sqlite3", fileName)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestWorkflowRepository_Sqlite(t *testing.T) {
	db := openSqlite(t)
	repo := NewWorkflowRepository(db)
	ctx := context.Background()

	if err := repo.Save(ctx, sampleDefinition("wf-1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	later := sampleDefinition("wf-2")
	later.Created = created.Add(time.Hour)
	if err := repo.Save(ctx, later); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.FindByID(ctx, "wf-1")
	if err != nil || got == nil {
		t.Fatalf("FindByID returned %v, %v", got, err)
	}
	if got.Name != "Sample wf-1" || !got.Created.Equal(created) {
		t.Errorf("Unexpected definition %+v", got)
	}
	if len(got.Steps) != 2 || !got.Steps[1].Fail || got.Steps[1].DependsOn[0] != "Send Email" {
		t.Errorf("Steps did not survive the round trip: %+v", got.Steps)
	}

	missing, err := repo.FindByID(ctx, "missing")
	if err != nil || missing != nil {
		t.Errorf("Expected nil, nil; got %v, %v", missing, err)
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != "wf-1" || all[1].ID != "wf-2" {
		t.Errorf("Unexpected definitions %+v", all)
	}
}

func TestRunRepository_Sqlite(t *testing.T) {
	db := openSqlite(t)
	workflows := NewWorkflowRepository(db)
	runs := NewRunRepository(db)
	ctx := context.Background()
	_ = workflows.Save(ctx, sampleDefinition("wf-1"))
	_ = workflows.Save(ctx, sampleDefinition("wf-2"))

	empty, err := runs.FindAllByWorkflowID(ctx, "wf-1")
	if err != nil {
		t.Fatalf("FindAllByWorkflowID failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("Expected an empty non nil list, got %#v", empty)
	}

	for _, rec := range []*domain.RunRecord{
		sampleRun("r1", "wf-1", created),
		sampleRun("r2", "wf-2", created),
		sampleRun("r3", "wf-1", created.Add(time.Minute)),
	} {
		if err := runs.Append(ctx, rec); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := runs.FindAllByWorkflowID(ctx, "wf-1")
	if err != nil {
		t.Fatalf("FindAllByWorkflowID failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r1" || got[1].ID != "r3" {
		t.Fatalf("Unexpected runs %+v", got)
	}
	if !got[1].UpdatedAt.Equal(created.Add(time.Minute)) {
		t.Errorf("Unexpected UpdatedAt %v", got[1].UpdatedAt)
	}
	if status, _ := got[0].StatusOf("Update Grant"); status != domain.StepStatusFailed {
		t.Errorf("Expected Update Grant failed, got %q", status)
	}

	if err := runs.Append(ctx, sampleRun("r1", "wf-1", created)); err == nil {
		t.Error("Expected run ids to be unique")
	}
}
