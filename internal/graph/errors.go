package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGraph matches every error returned by Resolve.
var ErrInvalidGraph = errors.New("invalid dependency graph")

type DuplicateStepError struct {
	Name string
}

func (e *DuplicateStepError) Error() string {
	return fmt.Sprintf("duplicate step name %q", e.Name)
}

func (e *DuplicateStepError) Is(target error) bool { return target == ErrInvalidGraph }

type UnknownDependencyError struct {
	Step    string
	Missing string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("step %q depends on unknown step %q", e.Step, e.Missing)
}

func (e *UnknownDependencyError) Is(target error) bool { return target == ErrInvalidGraph }

// CycleError lists the steps of one dependency cycle in dependency order,
// the first member depends on the second and the last depends on the first.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	path := append(append([]string{}, e.Members...), e.Members[0])
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(path, " -> "))
}

func (e *CycleError) Is(target error) bool { return target == ErrInvalidGraph }
