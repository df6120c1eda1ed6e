package stepflow

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
)

const grantWorkflow = `
name: Grant onboarding
steps:
  - name: Send Email
    type: sendEmail
  - name: Update Grant
    type: updateGrant
    dependsOn: [Send Email]
    fail: true
  - name: Broken
    type: unknownType
`

func TestParseDefinitionYAML(t *testing.T) {
	def, err := ParseDefinitionYAML(context.Background(), []byte(grantWorkflow))
	if err != nil {
		t.Fatalf("ParseDefinitionYAML failed: %v", err)
	}
	want := []domain.Step{
		{Name: "Send Email", Type: domain.StepTypeSendEmail, DependsOn: []string{}},
		{Name: "Update Grant", Type: domain.StepTypeUpdateGrant, DependsOn: []string{"Send Email"}, Fail: true},
	}
	if def.Name != "Grant onboarding" || !reflect.DeepEqual(def.Steps, want) {
		t.Errorf("Unexpected definition %+v", def)
	}
}

func TestParseDefinitionYAML_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":       "  \n",
		"not yaml":    "name: [",
		"no name":     "steps:\n  - name: A\n    type: sendEmail\n",
		"no valid":    "name: x\nsteps:\n  - type: sendEmail\n",
		"steps a map": "name: x\nsteps:\n  a: b\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseDefinitionYAML(context.Background(), []byte(input)); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestLoadDefinitionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grant.yaml")
	if err := os.WriteFile(path, []byte(grantWorkflow), 0o600); err != nil {
		t.Fatal(err)
	}
	def, err := LoadDefinitionFile(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadDefinitionFile failed: %v", err)
	}
	if len(def.Steps) != 2 {
		t.Errorf("Expected 2 steps, got %d", len(def.Steps))
	}

	_, err = LoadDefinitionFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
		t.Errorf("Expected an error naming the file, got %v", err)
	}
}

func TestLoadDefinitionReader(t *testing.T) {
	def, err := LoadDefinitionReader(context.Background(), strings.NewReader(`{"name": "json", "steps": [{"name": "A", "type": "sendEmail"}]}`))
	if err != nil {
		t.Fatalf("LoadDefinitionReader failed: %v", err)
	}
	if def.Name != "json" || len(def.Steps) != 1 {
		t.Errorf("Unexpected definition %+v", def)
	}
}

func TestParseDefinitionYAML_RegisteredActionType(t *testing.T) {
	ActionRegistry.Register("archiveGrant", func(ctx context.Context, step domain.Step) {})

	def, err := ParseDefinitionYAML(context.Background(), []byte(`
name: archive
steps:
  - name: Archive
    type: archiveGrant
`))
	if err != nil {
		t.Fatalf("ParseDefinitionYAML failed: %v", err)
	}
	if len(def.Steps) != 1 || def.Steps[0].Type != "archiveGrant" {
		t.Errorf("Expected the registered type to be kept, got %+v", def.Steps)
	}
}
