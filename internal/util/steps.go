package util

import (
	"context"
	"log/slog"

	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
)

// NormalizeSteps turns loosely typed step declarations, as decoded from JSON
// or YAML, into steps the engine accepts. A declaration without a string name
// or with a type that known rejects is dropped with a warning. A nil known
// accepts the built in step types only. A dependsOn
// that is not a list of strings becomes empty and a fail that is not a bool
// becomes false. The result is never nil.
func NormalizeSteps(ctx context.Context, raw []map[string]any, known func(domain.StepType) bool) []domain.Step {
	if known == nil {
		known = domain.StepType.Valid
	}
	steps := make([]domain.Step, 0, len(raw))
	for i, decl := range raw {
		name, ok := decl["name"].(string)
		if !ok || name == "" {
			slog.WarnContext(ctx, "Step is invalid (missing name), skipping", "index", i)
			continue
		}
		typeName, _ := decl["type"].(string)
		stepType := domain.StepType(typeName)
		if typeName == "" || !known(stepType) {
			slog.WarnContext(ctx, "Step has invalid type, skipping", "step", name, "type", decl["type"])
			continue
		}
		fail, _ := decl["fail"].(bool)
		steps = append(steps, domain.Step{
			Name:      name,
			Type:      stepType,
			DependsOn: dependsOn(decl["dependsOn"]),
			Fail:      fail,
		})
	}
	return steps
}

func dependsOn(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	deps := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return []string{}
		}
		deps = append(deps, s)
	}
	return deps
}
