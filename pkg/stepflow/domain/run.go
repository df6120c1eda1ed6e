package domain

import "time"

type StepStatus string

const (
	StepStatusSuccess StepStatus = "success"
	StepStatusFailed  StepStatus = "failed"
	StepStatusSkipped StepStatus = "skipped"
)

// Terminal reports whether the status is a final outcome for a step.
func (s StepStatus) Terminal() bool {
	return s == StepStatusSuccess || s == StepStatusFailed || s == StepStatusSkipped
}

type StepResult struct {
	Name   string     `json:"name"`
	Type   StepType   `json:"type"`
	Status StepStatus `json:"status"`
}

// RunRecord is the outcome of one execution of a workflow definition, it
// holds exactly one StepResult per step and is never modified once stored.
type RunRecord struct {
	ID            string       `json:"id"`
	WorkflowID    string       `json:"workflowId"`
	ExecutedSteps []StepResult `json:"executedSteps"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// StatusOf returns the recorded status of the named step.
func (r *RunRecord) StatusOf(name string) (StepStatus, bool) {
	for _, s := range r.ExecutedSteps {
		if s.Name == name {
			return s.Status, true
		}
	}
	return "", false
}
