// Package steps defines the units of work a task is broken into. Steps are
// produced by stage planners and carried out by a step runner; the engine
// in between treats them as opaque.
package steps

import (
	"fmt"

	"github.com/specialistvlad/stevedore/internal/graph"
)

// Step is a single unit of work.
type Step interface {
	String() string
}

type CreateTaskNetworkStep struct{}

func (s CreateTaskNetworkStep) String() string { return "CreateTaskNetworkStep" }

type PullImageStep struct {
	Image string
}

func (s PullImageStep) String() string {
	return fmt.Sprintf("PullImageStep(image: '%s')", s.Image)
}

// CreateContainerStep creates the container for a node. The node carries
// the command, environment and ports resolved for the task.
type CreateContainerStep struct {
	Node      *graph.Node
	ImageID   string
	NetworkID string
}

func (s CreateContainerStep) String() string {
	return fmt.Sprintf("CreateContainerStep(container: '%s', image: '%s', network: '%s')", s.Node.Name(), s.ImageID, s.NetworkID)
}

// RunContainerStep starts a container. The task container is also waited
// on until it exits; other containers are left running.
type RunContainerStep struct {
	Container       string
	ContainerID     string
	IsTaskContainer bool
}

func (s RunContainerStep) String() string {
	return fmt.Sprintf("RunContainerStep(container: '%s', id: '%s')", s.Container, s.ContainerID)
}

type WaitForContainerToBecomeHealthyStep struct {
	Container   string
	ContainerID string
}

func (s WaitForContainerToBecomeHealthyStep) String() string {
	return fmt.Sprintf("WaitForContainerToBecomeHealthyStep(container: '%s', id: '%s')", s.Container, s.ContainerID)
}

type StopContainerStep struct {
	Container   string
	ContainerID string
}

func (s StopContainerStep) String() string {
	return fmt.Sprintf("StopContainerStep(container: '%s', id: '%s')", s.Container, s.ContainerID)
}

type RemoveContainerStep struct {
	Container   string
	ContainerID string
}

func (s RemoveContainerStep) String() string {
	return fmt.Sprintf("RemoveContainerStep(container: '%s', id: '%s')", s.Container, s.ContainerID)
}

type DeleteTaskNetworkStep struct {
	NetworkID string
}

func (s DeleteTaskNetworkStep) String() string {
	return fmt.Sprintf("DeleteTaskNetworkStep(network: '%s')", s.NetworkID)
}

type DeleteTemporaryFileStep struct {
	Path string
}

func (s DeleteTemporaryFileStep) String() string {
	return fmt.Sprintf("DeleteTemporaryFileStep(path: '%s')", s.Path)
}
