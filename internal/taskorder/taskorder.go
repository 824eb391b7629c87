// Package taskorder works out the order in which a task and all of its
// prerequisites must run.
package taskorder

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/ctxlog"
)

// ResolutionError is returned when the prerequisite chain of a task is
// broken or circular.
type ResolutionError struct {
	Message string
}

func (e *ResolutionError) Error() string {
	return e.Message
}

// Resolve returns the named task preceded by its prerequisites, transitively,
// with every task appearing after everything it requires. Prerequisites are
// visited in declaration order and each task appears once.
func Resolve(ctx context.Context, cfg *config.Configuration, taskName string) ([]*config.Task, error) {
	logger := ctxlog.FromContext(ctx)

	start, ok := cfg.Tasks[taskName]
	if !ok {
		return nil, &ResolutionError{Message: fmt.Sprintf("the task '%s' does not exist", taskName)}
	}

	r := &resolver{
		tasks:   cfg.Tasks,
		visited: make(map[string]bool),
		onPath:  make(map[string]int),
	}
	if err := r.visit(start); err != nil {
		return nil, err
	}

	logger.Debug("Resolved task execution order.", "task", taskName, "order", taskNames(r.order))
	return r.order, nil
}

type resolver struct {
	tasks   map[string]*config.Task
	visited map[string]bool
	onPath  map[string]int
	path    []string
	order   []*config.Task
}

func (r *resolver) visit(task *config.Task) error {
	if r.visited[task.Name] {
		return nil
	}
	if idx, ok := r.onPath[task.Name]; ok {
		return &ResolutionError{Message: describeCycle(append(append([]string(nil), r.path[idx:]...), task.Name))}
	}

	r.onPath[task.Name] = len(r.path)
	r.path = append(r.path, task.Name)

	for _, name := range task.Prerequisites {
		prerequisite, ok := r.tasks[name]
		if !ok {
			return &ResolutionError{Message: fmt.Sprintf("the task '%s' given as a prerequisite of '%s' does not exist", name, task.Name)}
		}
		if err := r.visit(prerequisite); err != nil {
			return err
		}
	}

	r.path = r.path[:len(r.path)-1]
	delete(r.onPath, task.Name)
	r.visited[task.Name] = true
	r.order = append(r.order, task)
	return nil
}

// describeCycle renders a closed path such as [a b a].
func describeCycle(path []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "There is a dependency cycle between tasks: task '%s' has '%s' as a prerequisite", path[0], path[1])
	for _, name := range path[2:] {
		fmt.Fprintf(&sb, ", which has '%s' as a prerequisite", name)
	}
	sb.WriteString(".")
	return sb.String()
}

func taskNames(tasks []*config.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Name)
	}
	return out
}
