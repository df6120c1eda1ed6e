package stepflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/RealZimboGuy/stepflow/internal/util"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"

	"gopkg.in/yaml.v3"
)

// definitionFile is the on disk layout of a workflow. Steps stay loosely
// typed so they go through the same checks as the HTTP API.
type definitionFile struct {
	ID    string           `yaml:"id"`
	Name  string           `yaml:"name"`
	Steps []map[string]any `yaml:"steps"`
}

// ParseDefinitionYAML decodes a workflow definition from YAML (or JSON) bytes.
// Invalid steps, including steps whose type has no action on ActionRegistry,
// are dropped. A definition without a name or without any valid step is
// rejected.
func ParseDefinitionYAML(ctx context.Context, data []byte) (*domain.WorkflowDefinition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("workflow: definition payload is empty")
	}
	var file definitionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("workflow: decode definition: %w", err)
	}
	if file.Name == "" {
		return nil, errors.New("workflow: 'name' is required")
	}
	steps := util.NormalizeSteps(ctx, file.Steps, ActionRegistry.Known)
	if len(steps) == 0 {
		return nil, errors.New("workflow: no valid steps provided")
	}
	return &domain.WorkflowDefinition{ID: file.ID, Name: file.Name, Steps: steps}, nil
}

// LoadDefinitionReader reads workflow definition data from an io.Reader.
func LoadDefinitionReader(ctx context.Context, r io.Reader) (*domain.WorkflowDefinition, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("workflow: read definition: %w", err)
	}
	return ParseDefinitionYAML(ctx, content)
}

// LoadDefinitionFile loads a workflow definition from an explicit file path.
func LoadDefinitionFile(ctx context.Context, path string) (*domain.WorkflowDefinition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("workflow: read %s: %w", path, err)
	}
	def, err := ParseDefinitionYAML(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}
