package graph

import (
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
)

// Node is one step of the graph with its edges in both directions.
type Node struct {
	Step         domain.Step
	Dependencies []string
	Dependents   []string
}

type Graph struct {
	nodes    map[string]*Node
	declared []string
	order    []string
}

// Resolve builds the dependency graph for the given steps. It fails on a
// duplicate step name, a dependency naming a step that does not exist, or a
// dependency cycle. It has no side effects.
func Resolve(steps []domain.Step) (*Graph, error) {
	g := &Graph{
		nodes:    make(map[string]*Node, len(steps)),
		declared: make([]string, 0, len(steps)),
	}
	for _, step := range steps {
		if _, exists := g.nodes[step.Name]; exists {
			return nil, &DuplicateStepError{Name: step.Name}
		}
		g.nodes[step.Name] = &Node{Step: step}
		g.declared = append(g.declared, step.Name)
	}

	for _, name := range g.declared {
		node := g.nodes[name]
		seen := make(map[string]bool, len(node.Step.DependsOn))
		for _, depName := range node.Step.DependsOn {
			if seen[depName] {
				continue
			}
			seen[depName] = true
			dep, ok := g.nodes[depName]
			if !ok {
				return nil, &UnknownDependencyError{Step: name, Missing: depName}
			}
			node.Dependencies = append(node.Dependencies, depName)
			dep.Dependents = append(dep.Dependents, name)
		}
	}

	order, err := g.topologicalOrder()
	if err != nil {
		return nil, err
	}
	g.order = order
	return g, nil
}

const (
	white = iota
	grey
	black
)

// topologicalOrder runs a depth first search in declaration order, colouring
// nodes grey while they are on the stack. Reaching a grey node means a cycle.
func (g *Graph) topologicalOrder() ([]string, error) {
	colour := make(map[string]int, len(g.nodes))
	order := make([]string, 0, len(g.nodes))
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		colour[name] = grey
		stack = append(stack, name)
		for _, dep := range g.nodes[name].Dependencies {
			switch colour[dep] {
			case grey:
				return &CycleError{Members: cycleFrom(stack, dep)}
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		colour[name] = black
		order = append(order, name)
		return nil
	}

	for _, name := range g.declared {
		if colour[name] == white {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

func cycleFrom(stack []string, start string) []string {
	for i, name := range stack {
		if name == start {
			return append([]string{}, stack[i:]...)
		}
	}
	return []string{start}
}

// Node returns the node for the named step.
func (g *Graph) Node(name string) (*Node, bool) {
	node, ok := g.nodes[name]
	return node, ok
}

// Nodes returns the nodes in declaration order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.declared))
	for _, name := range g.declared {
		out = append(out, g.nodes[name])
	}
	return out
}

// Order returns step names so that every step comes after all of its dependencies.
func (g *Graph) Order() []string {
	return append([]string{}, g.order...)
}

func (g *Graph) Len() int { return len(g.declared) }
