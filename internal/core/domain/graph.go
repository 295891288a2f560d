// Package domain contains the core domain models and business logic for the task dependency graph.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph represents a dependency graph of tasks.
// It is built once by the config loader and becomes read-only after Validate succeeds.
type Graph struct {
	root           string
	packageFile    string
	tasks          map[InternedString]Task
	executionOrder []InternedString
	dependents     map[InternedString][]InternedString
	sealed         bool
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		tasks: make(map[InternedString]Task),
	}
}

// Root returns the project root directory the graph was loaded from.
func (g *Graph) Root() string {
	return g.root
}

// SetRoot sets the project root directory.
func (g *Graph) SetRoot(root string) {
	g.root = root
}

// PackageFile returns the path of the package metadata file, relative to the root.
func (g *Graph) PackageFile() string {
	return g.packageFile
}

// SetPackageFile sets the path of the package metadata file.
func (g *Graph) SetPackageFile(path string) {
	g.packageFile = path
}

// AddTask adds a task to the graph.
// It returns an error if a task with the same name already exists or the graph is sealed.
func (g *Graph) AddTask(t *Task) error {
	if g.sealed {
		return zerr.With(zerr.Wrap(ErrGraphSealed, "cannot add task"), "task_name", t.Name.String())
	}
	if _, exists := g.tasks[t.Name]; exists {
		return zerr.With(zerr.Wrap(ErrTaskAlreadyExists, "cannot add task"), "task_name", t.Name.String())
	}
	g.tasks[t.Name] = *t
	return nil
}

// Validate checks for missing dependencies and cycles using a topological sort.
// It populates the execution order and seals the graph if successful.
// Validating a sealed graph is a no-op.
func (g *Graph) Validate() error {
	if g.sealed {
		return nil
	}
	order := make([]InternedString, 0, len(g.tasks))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		task := g.tasks[u]
		for _, dep := range slices.Concat(task.Dependencies, task.Then) {
			if _, exists := g.tasks[dep]; !exists {
				err := zerr.With(zerr.Wrap(ErrMissingDependency, "invalid task graph"), "dependency", dep.String())
				return zerr.With(err, "task", u.String())
			}
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		order = append(order, u)
		return nil
	}

	// Sorted iteration keeps the order of disconnected components deterministic.
	for _, name := range g.sortedNames() {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	g.executionOrder = order
	g.dependents = make(map[InternedString][]InternedString, len(g.tasks))
	for _, name := range order {
		for _, dep := range g.tasks[name].Dependencies {
			g.dependents[dep] = append(g.dependents[dep], name)
		}
	}
	g.sealed = true
	return nil
}

// Dependents returns the tasks that directly depend on the given task.
// It is only populated after Validate.
func (g *Graph) Dependents(name InternedString) []InternedString {
	return g.dependents[name]
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	startIdx := slices.Index(path, dep)
	parts := make([]string, 0, len(path)-startIdx+1)
	for _, node := range path[startIdx:] {
		parts = append(parts, node.String())
	}
	parts = append(parts, dep.String())
	return zerr.With(zerr.Wrap(ErrCycleDetected, "invalid task graph"), "cycle", strings.Join(parts, " -> "))
}

// GetTask returns the task with the given name.
func (g *Graph) GetTask(name InternedString) (Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// TaskCount returns the number of registered tasks.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// Walk returns an iterator that yields tasks in execution order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.tasks[name]) {
				return
			}
		}
	}
}

// Plan returns the de-duplicated execution order for the given targets: every transitive
// dependency appears exactly once, before any task depending on it.
// Unknown targets yield an ErrTaskNotFound error.
func (g *Graph) Plan(targets []InternedString) ([]InternedString, error) {
	needed := make(map[InternedString]bool, len(g.tasks))
	queue := make([]InternedString, 0, len(targets))
	for _, t := range targets {
		if _, ok := g.tasks[t]; !ok {
			return nil, zerr.With(zerr.Wrap(ErrTaskNotFound, "cannot plan run"), "task", t.String())
		}
		queue = append(queue, t)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if needed[cur] {
			continue
		}
		needed[cur] = true
		queue = append(queue, g.tasks[cur].Dependencies...)
	}

	plan := make([]InternedString, 0, len(needed))
	for _, name := range g.executionOrder {
		if needed[name] {
			plan = append(plan, name)
		}
	}
	return plan, nil
}

func (g *Graph) sortedNames() []InternedString {
	names := make([]InternedString, 0, len(g.tasks))
	for name := range g.tasks {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b InternedString) int {
		return strings.Compare(a.String(), b.String())
	})
	return names
}

// Names returns all task names sorted alphabetically.
func (g *Graph) Names() []string {
	sorted := g.sortedNames()
	out := make([]string, len(sorted))
	for i, n := range sorted {
		out[i] = n.String()
	}
	return out
}
