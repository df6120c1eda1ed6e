package models

import (
	"encoding/json"
	"time"

	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
)

// CreateWorkflowRequest is the payload for creating a workflow. Fields are
// kept raw so a value of the wrong JSON type is reported per field and
// malformed steps can be dropped one by one during validation.
type CreateWorkflowRequest struct {
	Name  json.RawMessage `json:"name"`
	Steps json.RawMessage `json:"steps"`
}

// CreateWorkflowResponse is returned on successful creation.
type CreateWorkflowResponse struct {
	ID string `json:"id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// WorkflowApiResponse represents the API response for a workflow definition.
type WorkflowApiResponse struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Steps   []domain.Step `json:"steps"`
	Created time.Time     `json:"created"`
}
