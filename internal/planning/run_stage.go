package planning

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/stevedore/internal/events"
	"github.com/specialistvlad/stevedore/internal/graph"
	"github.com/specialistvlad/stevedore/internal/stage"
	"github.com/specialistvlad/stevedore/internal/steps"
)

// RunStagePlanner builds the stage that brings a task's containers up in
// dependency order and runs the task container.
type RunStagePlanner struct{}

func (RunStagePlanner) CreateStage(g *graph.Graph) stage.Stage {
	nodes := g.AllNodes()
	rules := []rule{createTaskNetworkRule{}}

	images := make(map[string]struct{})
	for _, node := range nodes {
		images[node.Container().Image] = struct{}{}
	}
	sortedImages := make([]string, 0, len(images))
	for image := range images {
		sortedImages = append(sortedImages, image)
	}
	sort.Strings(sortedImages)
	for _, image := range sortedImages {
		rules = append(rules, pullImageRule{image: image})
	}

	for _, node := range nodes {
		rules = append(rules, createContainerRule{node: node})
	}
	for _, node := range nodes {
		rules = append(rules, runContainerRule{node: node})
	}
	for _, node := range nodes {
		if !node.IsRootNode() {
			rules = append(rules, waitForHealthyRule{container: node.Name()})
		}
	}

	return newRuleStage(rules)
}

type createTaskNetworkRule struct{}

func (createTaskNetworkRule) evaluate(events.Set) (ruleResult, steps.Step) {
	return ready, steps.CreateTaskNetworkStep{}
}

func (createTaskNetworkRule) String() string { return "CreateTaskNetworkRule" }

type pullImageRule struct {
	image string
}

func (r pullImageRule) evaluate(events.Set) (ruleResult, steps.Step) {
	return ready, steps.PullImageStep{Image: r.image}
}

func (r pullImageRule) String() string { return fmt.Sprintf("PullImageRule(image: '%s')", r.image) }

// createContainerRule waits for the task network and the container's image.
type createContainerRule struct {
	node *graph.Node
}

func (r createContainerRule) evaluate(past events.Set) (ruleResult, steps.Step) {
	network, ok := networkCreated(past)
	if !ok {
		return notReady, nil
	}
	pulled, ok := events.FirstOfType(past, func(e events.ImagePulledEvent) bool {
		return e.Image == r.node.Container().Image
	})
	if !ok {
		return notReady, nil
	}
	return ready, steps.CreateContainerStep{Node: r.node, ImageID: pulled.ImageID, NetworkID: network.NetworkID}
}

func (r createContainerRule) String() string {
	return fmt.Sprintf("CreateContainerRule(container: '%s')", r.node.Name())
}

// runContainerRule waits for the container to exist and every dependency
// to be healthy.
type runContainerRule struct {
	node *graph.Node
}

func (r runContainerRule) evaluate(past events.Set) (ruleResult, steps.Step) {
	created, ok := containerCreated(past, r.node.Name())
	if !ok {
		return notReady, nil
	}
	for _, dep := range r.node.DependsOn() {
		if !past.Contains(events.ContainerBecameHealthyEvent{Container: dep.Name()}) {
			return notReady, nil
		}
	}
	return ready, steps.RunContainerStep{
		Container:       r.node.Name(),
		ContainerID:     created.ContainerID,
		IsTaskContainer: r.node.IsRootNode(),
	}
}

func (r runContainerRule) String() string {
	return fmt.Sprintf("RunContainerRule(container: '%s')", r.node.Name())
}

type waitForHealthyRule struct {
	container string
}

func (r waitForHealthyRule) evaluate(past events.Set) (ruleResult, steps.Step) {
	if !past.Contains(events.ContainerStartedEvent{Container: r.container}) {
		return notReady, nil
	}
	created, ok := containerCreated(past, r.container)
	if !ok {
		return notReady, nil
	}
	return ready, steps.WaitForContainerToBecomeHealthyStep{Container: r.container, ContainerID: created.ContainerID}
}

func (r waitForHealthyRule) String() string {
	return fmt.Sprintf("WaitForHealthyRule(container: '%s')", r.container)
}
