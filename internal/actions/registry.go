package actions

import (
	"context"
	"log/slog"
	"sync"

	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
)

// ActionFunc performs the side effect of a step. Actions cannot fail, a
// step only fails through its simulate-failure flag.
type ActionFunc func(ctx context.Context, step domain.Step)

// Registry maps step types to the action they perform. Types without a
// registered handler run the default action, which succeeds without doing anything.
type Registry struct {
	mu       sync.RWMutex
	handlers map[domain.StepType]ActionFunc
	fallback ActionFunc
}

// NewRegistry returns a registry with a handler for every built in step type.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	r.Register(domain.StepTypeSendEmail, SendEmail)
	r.Register(domain.StepTypeUpdateGrant, UpdateGrant)
	return r
}

// NewEmptyRegistry returns a registry where every type runs the default action.
func NewEmptyRegistry() *Registry {
	return &Registry{
		handlers: make(map[domain.StepType]ActionFunc),
		fallback: DefaultAction,
	}
}

func (r *Registry) Register(stepType domain.StepType, fn ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[stepType] = fn
}

// SetDefault replaces the action used for types without a handler.
func (r *Registry) SetDefault(fn ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = fn
}

// Lookup returns the action registered for the type. The boolean is false
// when the default action would be used.
func (r *Registry) Lookup(stepType domain.StepType) (ActionFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[stepType]
	if !ok {
		return r.fallback, false
	}
	return fn, true
}

// Known reports whether a handler is registered for the type.
func (r *Registry) Known(stepType domain.StepType) bool {
	_, ok := r.Lookup(stepType)
	return ok
}

// Perform runs the action for the step's type.
func (r *Registry) Perform(ctx context.Context, step domain.Step) {
	slog.InfoContext(ctx, "Starting step", "step", step.Name, "type", step.Type)
	fn, _ := r.Lookup(step.Type)
	fn(ctx, step)
}
