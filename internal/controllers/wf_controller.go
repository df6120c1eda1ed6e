package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/RealZimboGuy/stepflow/internal/engine"
	"github.com/RealZimboGuy/stepflow/internal/graph"
	"github.com/RealZimboGuy/stepflow/internal/util"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/models"
)

// WorkflowsController holds dependencies for workflow HTTP endpoints.
type WorkflowsController struct {
	AuthController
	WorkflowManager *engine.WorkflowManager
}

func NewWorkflowsController(workflowManager *engine.WorkflowManager, apiKeyHash string) *WorkflowsController {
	return &WorkflowsController{WorkflowManager: workflowManager, AuthController: AuthController{
		ApiKeyHash: apiKeyHash,
	}}
}

func (c *WorkflowsController) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.CreateWorkflowRequest](r)
	if err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	name, steps, msg := c.validateCreateWorkflow(r, req)
	if msg != "" {
		util.WriteJSONError(w, http.StatusBadRequest, msg)
		return
	}

	id, err := c.WorkflowManager.CreateWorkflow(r.Context(), name, steps)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save workflow", "error", err)
		util.WriteJSONError(w, http.StatusInternalServerError, "failed to create workflow")
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, models.CreateWorkflowResponse{ID: id})
}

// validateCreateWorkflow returns the name and usable steps of the request, or
// a message describing why the request must be rejected. Step types are
// checked against the registered actions.
func (c *WorkflowsController) validateCreateWorkflow(r *http.Request, req models.CreateWorkflowRequest) (string, []domain.Step, string) {
	var name string
	if err := json.Unmarshal(req.Name, &name); err != nil || name == "" {
		return "", nil, "Workflow 'name' is required and must be a string"
	}
	var rawSteps []json.RawMessage
	if err := json.Unmarshal(req.Steps, &rawSteps); err != nil || len(rawSteps) == 0 {
		return "", nil, "'steps' must be a non-empty array"
	}

	decls := make([]map[string]any, 0, len(rawSteps))
	for _, raw := range rawSteps {
		var decl map[string]any
		// anything that is not an object is dropped for lack of a name
		_ = json.Unmarshal(raw, &decl)
		decls = append(decls, decl)
	}
	steps := util.NormalizeSteps(r.Context(), decls, c.WorkflowManager.Engine.KnownStepType)
	if len(steps) == 0 {
		return "", nil, "No valid steps provided"
	}
	return name, steps, ""
}

func (c *WorkflowsController) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	defs, err := c.WorkflowManager.ListWorkflows(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list workflows", "error", err)
		util.WriteJSONError(w, http.StatusInternalServerError, "failed to list workflows")
		return
	}
	result := make([]models.WorkflowApiResponse, 0, len(defs))
	for i := range defs {
		result = append(result, mapWorkflowToApiWorkflow(&defs[i]))
	}
	util.WriteJSONResponse(w, http.StatusOK, result)
}

func (c *WorkflowsController) handleGetWorkflowById(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	def, err := c.WorkflowManager.GetWorkflow(r.Context(), id)
	if err != nil {
		c.writeManagerError(w, r, id, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapWorkflowToApiWorkflow(def))
}

func (c *WorkflowsController) handleRunWorkflow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := c.WorkflowManager.RunWorkflow(r.Context(), id)
	if err != nil {
		c.writeManagerError(w, r, id, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, rec)
}

func (c *WorkflowsController) handleListRuns(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	runs, err := c.WorkflowManager.ListRuns(r.Context(), id)
	if err != nil {
		c.writeManagerError(w, r, id, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, runs)
}

func (c *WorkflowsController) writeManagerError(w http.ResponseWriter, r *http.Request, id string, err error) {
	switch {
	case errors.Is(err, engine.ErrWorkflowNotFound):
		util.WriteJSONError(w, http.StatusNotFound, fmt.Sprintf("Workflow with ID '%s' not found", id))
	case errors.Is(err, graph.ErrInvalidGraph):
		util.WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Workflow request failed", "workflow_id", id, "error", err)
		util.WriteJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func mapWorkflowToApiWorkflow(def *domain.WorkflowDefinition) models.WorkflowApiResponse {
	return models.WorkflowApiResponse{
		ID:      def.ID,
		Name:    def.Name,
		Steps:   def.Steps,
		Created: def.Created,
	}
}
