package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/RealZimboGuy/stepflow/internal/controllers"
	"github.com/RealZimboGuy/stepflow/internal/engine"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
)

//go:embed templates
var templatesFS embed.FS

// WebController serves a read only dashboard of workflows and their runs.
type WebController struct {
	controllers.AuthController
	manager *engine.WorkflowManager
	tmpl    *template.Template
}

func NewWebController(manager *engine.WorkflowManager, apiKeyHash string) *WebController {
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"timeAgo":     friendlyTimeAgo,
		"statusClass": statusCssClass,
		"join":        strings.Join,
	}).ParseFS(
		templatesFS,
		"templates/fragments/header.html",
		"templates/home.html",
		"templates/details.html"))
	return &WebController{manager: manager, tmpl: tmpl, AuthController: controllers.AuthController{
		ApiKeyHash: apiKeyHash,
	}}
}

func (wc *WebController) handler(w http.ResponseWriter, r *http.Request) {
	defs, err := wc.manager.ListWorkflows(r.Context())
	if err != nil {
		slog.Error("Failed to load workflows", "error", err)
		http.Error(w, "Failed to load", http.StatusInternalServerError)
		return
	}
	data := struct {
		Title       string
		Heading     string
		CurrentPath string
		Workflows   []domain.WorkflowDefinition
	}{
		Title:       "Dashboard",
		Heading:     "Workflows",
		CurrentPath: r.URL.Path,
		Workflows:   defs,
	}
	wc.render(w, "home", data)
}

func (wc *WebController) workflowDetailsHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	def, err := wc.manager.GetWorkflow(r.Context(), id)
	if errors.Is(err, engine.ErrWorkflowNotFound) {
		http.Error(w, "workflow not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Failed to load workflow", "workflow_id", id, "error", err)
		http.Error(w, "Failed to load", http.StatusInternalServerError)
		return
	}
	runs, err := wc.manager.ListRuns(r.Context(), id)
	if err != nil {
		slog.Error("Failed to load runs", "workflow_id", id, "error", err)
		http.Error(w, "Failed to load", http.StatusInternalServerError)
		return
	}
	// newest first
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	data := struct {
		Title       string
		CurrentPath string
		Workflow    *domain.WorkflowDefinition
		Runs        []domain.RunRecord
	}{
		Title:       def.Name,
		CurrentPath: r.URL.Path,
		Workflow:    def,
		Runs:        runs,
	}
	wc.render(w, "details", data)
}

func (wc *WebController) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := wc.tmpl.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("Failed to execute template", "template", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func friendlyTimeAgo(since time.Time) string {
	d := time.Since(since)
	if d < 0 {
		d = 0
	}

	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}

func statusCssClass(status domain.StepStatus) string {
	switch status {
	case domain.StepStatusSuccess:
		return "bg-green-300"
	case domain.StepStatusFailed:
		return "bg-red-300"
	}
	return "bg-gray-200"
}
