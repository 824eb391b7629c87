package graph

import (
	"sort"

	"github.com/specialistvlad/stevedore/internal/config"
)

// Graph is the dependency graph of every container involved in one task.
type Graph struct {
	task              *config.Task
	nodes             map[string]*Node
	taskContainerNode *Node
}

// Node is one container within a Graph, together with the settings it runs
// with for this task. Dependency links point at other nodes of the same graph.
type Node struct {
	container                      *config.Container
	command                        *config.Command
	entrypoint                     *config.Command
	workingDirectory               string
	additionalEnvironmentVariables map[string]string
	additionalPortMappings         []config.PortMapping
	isRootNode                     bool
	dependsOn                      map[string]*Node
	dependedOnBy                   map[string]*Node
}

// Task returns the task the graph was built for.
func (g *Graph) Task() *config.Task { return g.task }

// TaskContainerNode returns the root node: the container the task runs.
func (g *Graph) TaskContainerNode() *Node { return g.taskContainerNode }

// AllNodes returns every node, ordered by container name.
func (g *Graph) AllNodes() []*Node {
	return sortedNodes(g.nodes)
}

// NodeFor returns the node for the given container, or a *NotInGraphError
// when the container is not part of this graph.
func (g *Graph) NodeFor(container *config.Container) (*Node, error) {
	return g.NodeNamed(container.Name)
}

// NodeNamed is NodeFor keyed by container name.
func (g *Graph) NodeNamed(name string) (*Node, error) {
	node, ok := g.nodes[name]
	if !ok {
		return nil, &NotInGraphError{Container: name}
	}
	return node, nil
}

func (n *Node) Container() *config.Container { return n.container }
func (n *Node) Name() string                 { return n.container.Name }
func (n *Node) Command() *config.Command     { return n.command }
func (n *Node) Entrypoint() *config.Command  { return n.entrypoint }
func (n *Node) WorkingDirectory() string     { return n.workingDirectory }
func (n *Node) IsRootNode() bool             { return n.isRootNode }

// AdditionalEnvironmentVariables returns the task's environment overrides.
// Only the root node has any.
func (n *Node) AdditionalEnvironmentVariables() map[string]string {
	return n.additionalEnvironmentVariables
}

// AdditionalPortMappings returns the task's extra port mappings. Only the
// root node has any.
func (n *Node) AdditionalPortMappings() []config.PortMapping {
	return n.additionalPortMappings
}

// DependsOn returns the nodes that must be healthy before this one starts.
func (n *Node) DependsOn() []*Node { return sortedNodes(n.dependsOn) }

// DependedOnBy returns the nodes that wait for this one.
func (n *Node) DependedOnBy() []*Node { return sortedNodes(n.dependedOnBy) }

// Environment merges the container's environment with the task overrides.
func (n *Node) Environment() map[string]string {
	env := make(map[string]string, len(n.container.Environment)+len(n.additionalEnvironmentVariables))
	for k, v := range n.container.Environment {
		env[k] = v
	}
	for k, v := range n.additionalEnvironmentVariables {
		env[k] = v
	}
	return env
}

// PortMappings returns the container's ports followed by the task's extra ones.
func (n *Node) PortMappings() []config.PortMapping {
	ports := make([]config.PortMapping, 0, len(n.container.Ports)+len(n.additionalPortMappings))
	ports = append(ports, n.container.Ports...)
	return append(ports, n.additionalPortMappings...)
}

func sortedNodes(m map[string]*Node) []*Node {
	nodes := make([]*Node, 0, len(m))
	for _, node := range m {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name() < nodes[j].Name() })
	return nodes
}
