package graph

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/ctxlog"
)

// builder holds the transient state used while constructing a Graph.
type builder struct {
	task       *config.Task
	containers map[string]*config.Container
	resolver   CommandResolver
	root       *config.Container

	// discovered lists containers in the order they were first reached.
	discovered []*config.Container
	seen       map[string]bool
}

// Build resolves every container the task needs and links them into a
// Graph. All validation failures are *DependencyResolutionFailedError.
func Build(ctx context.Context, task *config.Task, containers map[string]*config.Container, resolver CommandResolver) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting dependency graph construction.", "task", task.Name)

	if task.Run == nil {
		return nil, resolutionFailed("the task '%s' does not run a unit.", task.Name)
	}

	root, ok := containers[task.Run.Container]
	if !ok {
		return nil, resolutionFailed("the unit '%s' referenced by task '%s' does not exist.", task.Run.Container, task.Name)
	}

	b := &builder{
		task:       task,
		containers: containers,
		resolver:   resolver,
		root:       root,
		seen:       make(map[string]bool),
	}

	for _, name := range task.Dependencies {
		if _, ok := containers[name]; !ok {
			return nil, resolutionFailed("the unit '%s' referenced by task '%s' does not exist.", name, task.Name)
		}
	}
	if slices.Contains(task.Dependencies, root.Name) {
		return nil, resolutionFailed("the task '%s' cannot start the unit '%s' and also run it.", task.Name, root.Name)
	}

	logger.Debug("Build: Pass 1 - Discovering units.")
	if err := b.discover(root); err != nil {
		return nil, err
	}
	for _, name := range task.Dependencies {
		if err := b.discover(containers[name]); err != nil {
			return nil, err
		}
	}
	logger.Debug("Build: Pass 1 complete.", "units", len(b.discovered))

	logger.Debug("Build: Pass 2 - Checking for cycles.")
	if err := b.checkForCycles(); err != nil {
		return nil, err
	}

	logger.Debug("Build: Pass 3 - Creating nodes and links.")
	g := b.link()
	logger.Debug("Build: dependency graph constructed.", "task", task.Name, "nodes", len(g.nodes))
	return g, nil
}

// discover walks a container's dependencies depth-first, validating each
// container the first time it is reached.
func (b *builder) discover(container *config.Container) error {
	if b.seen[container.Name] {
		return nil
	}
	b.seen[container.Name] = true
	b.discovered = append(b.discovered, container)

	if slices.Contains(container.Dependencies, container.Name) {
		return resolutionFailed("the unit '%s' cannot depend on itself.", container.Name)
	}

	for _, name := range container.Dependencies {
		if _, ok := b.containers[name]; !ok {
			return resolutionFailed("the unit '%s' referenced by unit '%s' does not exist.", name, container.Name)
		}
	}

	for _, name := range container.Dependencies {
		if err := b.discover(b.containers[name]); err != nil {
			return err
		}
	}
	return nil
}

// edgesFrom returns what a container depends on. The task container also
// depends on everything the task starts explicitly.
func (b *builder) edgesFrom(name string) []string {
	deps := b.containers[name].Dependencies
	if name != b.root.Name {
		return deps
	}
	edges := make([]string, 0, len(deps)+len(b.task.Dependencies))
	edges = append(edges, deps...)
	return append(edges, b.task.Dependencies...)
}

func (b *builder) checkForCycles() error {
	done := make(map[string]bool)
	onPath := make(map[string]int)
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		if done[name] {
			return nil
		}
		if idx, ok := onPath[name]; ok {
			return resolutionFailed("%s", b.describeCycle(path[idx:]))
		}

		onPath[name] = len(path)
		path = append(path, name)

		for _, dep := range b.edgesFrom(name) {
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		delete(onPath, name)
		done[name] = true
		return nil
	}

	return visit(b.root.Name)
}

// describeCycle renders a cycle where the last element depends on the first.
func (b *builder) describeCycle(cycle []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "There is a dependency cycle in task '%s'. %s", b.task.Name, b.describeFirst(cycle[0]))

	hops := make([]string, 0, len(cycle))
	hops = append(hops, cycle[1:]...)
	hops = append(hops, cycle[0])

	for i, name := range hops {
		if i == 0 {
			sb.WriteString(" depends on ")
		} else {
			sb.WriteString(", which depends on ")
		}
		sb.WriteString(b.describeReference(name))
	}
	sb.WriteString(".")
	return sb.String()
}

func (b *builder) describeFirst(name string) string {
	switch {
	case name == b.root.Name:
		return fmt.Sprintf("The task unit '%s'", name)
	case slices.Contains(b.task.Dependencies, name):
		return fmt.Sprintf("Unit '%s' (which is explicitly started by the task)", name)
	default:
		return fmt.Sprintf("Unit '%s'", name)
	}
}

func (b *builder) describeReference(name string) string {
	switch {
	case name == b.root.Name:
		return fmt.Sprintf("the task unit '%s'", name)
	case slices.Contains(b.task.Dependencies, name):
		return fmt.Sprintf("'%s' (which is explicitly started by the task)", name)
	default:
		return fmt.Sprintf("'%s'", name)
	}
}

func (b *builder) link() *Graph {
	g := &Graph{
		task:  b.task,
		nodes: make(map[string]*Node, len(b.discovered)),
	}

	for _, container := range b.discovered {
		node := &Node{
			container:        container,
			command:          b.resolver.ResolveCommand(container, b.task),
			entrypoint:       b.resolver.ResolveEntrypoint(container, b.task),
			workingDirectory: container.WorkingDirectory,
			dependsOn:        make(map[string]*Node),
			dependedOnBy:     make(map[string]*Node),
		}
		if container.Name == b.root.Name {
			node.isRootNode = true
			node.additionalEnvironmentVariables = b.task.Run.Environment
			node.additionalPortMappings = b.task.Run.Ports
			if b.task.Run.WorkingDirectory != "" {
				node.workingDirectory = b.task.Run.WorkingDirectory
			}
			g.taskContainerNode = node
		}
		g.nodes[container.Name] = node
	}

	for _, node := range g.nodes {
		for _, name := range b.edgesFrom(node.Name()) {
			dep := g.nodes[name]
			node.dependsOn[name] = dep
			dep.dependedOnBy[node.Name()] = node
		}
	}

	return g
}
