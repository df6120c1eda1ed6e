package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/RealZimboGuy/stepflow/internal/util"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/models"
)

const SampleWorkflow = `{
	"name": "Grant onboarding",
	"steps": [
		{"name": "Send Email", "type": "sendEmail", "dependsOn": []},
		{"name": "Notify Finance", "type": "sendEmail", "dependsOn": []},
		{"name": "Update Grant", "type": "updateGrant", "dependsOn": ["Send Email"], "fail": true},
		{"name": "Close Ticket", "type": "updateGrant", "dependsOn": ["Update Grant", "Notify Finance"]}
	]
}`

// StartServer runs stepflow.Start on the given port with whatever database
// the environment selects and stops it when the test ends.
func StartServer(t *testing.T, port int) {
	t.Helper()
	t.Setenv("HTTP_ADDR", fmt.Sprintf("127.0.0.1:%d", port))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- stepflow.Start(ctx, nil) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("server stopped with error: %v", err)
			}
		case <-time.After(15 * time.Second):
			t.Error("server did not stop")
		}
	})

	client := &http.Client{Timeout: time.Second}
	for i := 0; i < 100; i++ {
		select {
		case err := <-done:
			t.Fatalf("server exited early: %v", err)
		default:
		}
		resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/api/workflows", port))
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("server did not come up")
}

// ExerciseAPI creates a workflow, runs it twice and checks the recorded
// history through the HTTP API.
func ExerciseAPI(t *testing.T, port int) {
	t.Helper()
	base := fmt.Sprintf("http://127.0.0.1:%d/api/workflows", port)
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Post(base, "application/json", bytes.NewBufferString(SampleWorkflow))
	if err != nil {
		t.Fatalf("Failed to POST /api/workflows: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 Created, got %d", resp.StatusCode)
	}
	created, err := util.DecodeJSONBodyResponse[models.CreateWorkflowResponse](resp)
	if err != nil || created.ID == "" {
		t.Fatalf("Unexpected create response %+v, %v", created, err)
	}

	var runIDs []string
	for i := 0; i < 2; i++ {
		resp, err := client.Post(base+"/"+created.ID+"/run", "application/json", nil)
		if err != nil {
			t.Fatalf("Failed to run workflow: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200 OK, got %d", resp.StatusCode)
		}
		rec, err := util.DecodeJSONBodyResponse[domain.RunRecord](resp)
		if err != nil {
			t.Fatalf("Failed to decode run: %v", err)
		}
		ExpectStatuses(t, &rec, map[string]domain.StepStatus{
			"Send Email":     domain.StepStatusSuccess,
			"Notify Finance": domain.StepStatusSuccess,
			"Update Grant":   domain.StepStatusFailed,
			"Close Ticket":   domain.StepStatusSkipped,
		})
		runIDs = append(runIDs, rec.ID)
	}

	resp, err = client.Get(base + "/" + created.ID + "/runs")
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	runs, err := util.DecodeJSONBodyResponse[[]domain.RunRecord](resp)
	if err != nil {
		t.Fatalf("Failed to decode runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != runIDs[0] || runs[1].ID != runIDs[1] {
		t.Errorf("Expected runs %v in order, got %+v", runIDs, runs)
	}
	if len(runs) > 0 && len(runs[0].ExecutedSteps) != 4 {
		t.Errorf("Expected 4 step results, got %d", len(runs[0].ExecutedSteps))
	}

	resp, err = client.Post(base+"/does-not-exist/run", "application/json", nil)
	if err != nil {
		t.Fatalf("Failed to run missing workflow: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 Not Found, got %d", resp.StatusCode)
	}

	resp, err = client.Get(base)
	if err != nil {
		t.Fatalf("Failed to list workflows: %v", err)
	}
	list, _ := util.DecodeJSONBodyResponse[[]models.WorkflowApiResponse](resp)
	found := false
	for _, wf := range list {
		if wf.ID == created.ID && len(wf.Steps) == 4 {
			found = true
		}
	}
	if !found {
		t.Errorf("Created workflow %s missing from list", created.ID)
	}
}

func ExpectStatuses(t *testing.T, rec *domain.RunRecord, want map[string]domain.StepStatus) {
	t.Helper()
	for name, status := range want {
		got, ok := rec.StatusOf(name)
		if !ok {
			t.Errorf("No result for step %q", name)
			continue
		}
		if got != status {
			t.Errorf("Step %q: expected %s, got %s", name, status, got)
		}
	}
}
