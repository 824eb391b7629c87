package planning

import (
	"fmt"

	"github.com/specialistvlad/stevedore/internal/events"
	"github.com/specialistvlad/stevedore/internal/graph"
	"github.com/specialistvlad/stevedore/internal/stage"
	"github.com/specialistvlad/stevedore/internal/steps"
)

// CleanupStagePlanner builds the stage that tears down whatever the run
// stage managed to create, as recorded in the events snapshot.
type CleanupStagePlanner struct{}

// cleanupStage is a ruleStage that remembers the equivalent manual commands.
type cleanupStage struct {
	*ruleStage
	manualCommands []string
}

func (s *cleanupStage) ManualCleanupCommands() []string {
	return s.manualCommands
}

func (CleanupStagePlanner) CreateStage(g *graph.Graph, past events.Set) stage.CleanupStage {
	created := events.OfType[events.ContainerCreatedEvent](past)
	createdNames := make([]string, 0, len(created))

	// Containers that are still running and must be stopped before removal.
	needsStop := make(map[string]bool)
	for _, c := range created {
		createdNames = append(createdNames, c.Container)
		started := past.Contains(events.ContainerStartedEvent{Container: c.Container})
		exited := events.AnyOfType(past, func(e events.RunningContainerExitedEvent) bool { return e.Container == c.Container })
		needsStop[c.Container] = started && !exited
	}

	var rules []rule
	var commands []string

	for _, c := range created {
		if needsStop[c.Container] {
			rules = append(rules, stopContainerRule{
				container:   c.Container,
				containerID: c.ContainerID,
				dependents:  runningDependents(g, c.Container, needsStop),
			})
		}
		rules = append(rules, removeContainerRule{
			container:   c.Container,
			containerID: c.ContainerID,
			needsStop:   needsStop[c.Container],
		})
		commands = append(commands, fmt.Sprintf("docker rm --force --volumes %s", c.ContainerID))
	}

	for _, f := range events.OfType[events.TemporaryFileCreatedEvent](past) {
		rules = append(rules, deleteTemporaryFileRule{path: f.Path, container: f.Container})
		commands = append(commands, fmt.Sprintf("rm %s", f.Path))
	}

	if network, ok := networkCreated(past); ok {
		rules = append(rules, deleteTaskNetworkRule{networkID: network.NetworkID, containers: createdNames})
		commands = append(commands, fmt.Sprintf("docker network rm %s", network.NetworkID))
	}

	return &cleanupStage{ruleStage: newRuleStage(rules), manualCommands: commands}
}

// runningDependents lists the containers that depend on the named one and
// still need stopping themselves.
func runningDependents(g *graph.Graph, container string, needsStop map[string]bool) []string {
	node, err := g.NodeNamed(container)
	if err != nil {
		return nil
	}
	var dependents []string
	for _, dependent := range node.DependedOnBy() {
		if needsStop[dependent.Name()] {
			dependents = append(dependents, dependent.Name())
		}
	}
	return dependents
}

func stopAttempted(past events.Set, container string) bool {
	return past.Contains(events.ContainerStoppedEvent{Container: container}) ||
		events.AnyOfType(past, func(e events.ContainerStopFailedEvent) bool { return e.Container == container })
}

// stopContainerRule waits until everything depending on the container has
// been stopped.
type stopContainerRule struct {
	container   string
	containerID string
	dependents  []string
}

func (r stopContainerRule) evaluate(past events.Set) (ruleResult, steps.Step) {
	for _, dependent := range r.dependents {
		if !stopAttempted(past, dependent) {
			return notReady, nil
		}
	}
	return ready, steps.StopContainerStep{Container: r.container, ContainerID: r.containerID}
}

func (r stopContainerRule) String() string {
	return fmt.Sprintf("StopContainerRule(container: '%s')", r.container)
}

// removeContainerRule removes the container once it has been stopped. A
// failed stop still allows a forced removal.
type removeContainerRule struct {
	container   string
	containerID string
	needsStop   bool
}

func (r removeContainerRule) evaluate(past events.Set) (ruleResult, steps.Step) {
	if r.needsStop && !stopAttempted(past, r.container) {
		return notReady, nil
	}
	return ready, steps.RemoveContainerStep{Container: r.container, ContainerID: r.containerID}
}

func (r removeContainerRule) String() string {
	return fmt.Sprintf("RemoveContainerRule(container: '%s')", r.container)
}

// deleteTaskNetworkRule waits for every container to be removed. If any
// removal failed the network is still in use and the rule is abandoned.
type deleteTaskNetworkRule struct {
	networkID  string
	containers []string
}

func (r deleteTaskNetworkRule) evaluate(past events.Set) (ruleResult, steps.Step) {
	for _, container := range r.containers {
		if events.AnyOfType(past, func(e events.ContainerRemovalFailedEvent) bool { return e.Container == container }) {
			return abandoned, nil
		}
		if !past.Contains(events.ContainerRemovedEvent{Container: container}) {
			return notReady, nil
		}
	}
	return ready, steps.DeleteTaskNetworkStep{NetworkID: r.networkID}
}

func (r deleteTaskNetworkRule) String() string {
	return fmt.Sprintf("DeleteTaskNetworkRule(network: '%s')", r.networkID)
}

// deleteTemporaryFileRule waits for the owning container to be gone.
type deleteTemporaryFileRule struct {
	path      string
	container string
}

func (r deleteTemporaryFileRule) evaluate(past events.Set) (ruleResult, steps.Step) {
	if r.container != "" {
		_, wasCreated := containerCreated(past, r.container)
		removalFinished := past.Contains(events.ContainerRemovedEvent{Container: r.container}) ||
			events.AnyOfType(past, func(e events.ContainerRemovalFailedEvent) bool { return e.Container == r.container })
		if wasCreated && !removalFinished {
			return notReady, nil
		}
	}
	return ready, steps.DeleteTemporaryFileStep{Path: r.path}
}

func (r deleteTemporaryFileRule) String() string {
	return fmt.Sprintf("DeleteTemporaryFileRule(path: '%s')", r.path)
}
