package events

import "fmt"

type TaskNetworkCreatedEvent struct {
	NetworkID string
}

func (e TaskNetworkCreatedEvent) String() string {
	return fmt.Sprintf("TaskNetworkCreatedEvent(network: '%s')", e.NetworkID)
}

type TaskNetworkDeletedEvent struct{}

func (e TaskNetworkDeletedEvent) String() string { return "TaskNetworkDeletedEvent" }

type ImagePulledEvent struct {
	Image   string
	ImageID string
}

func (e ImagePulledEvent) String() string {
	return fmt.Sprintf("ImagePulledEvent(image: '%s', id: '%s')", e.Image, e.ImageID)
}

type ContainerCreatedEvent struct {
	Container   string
	ContainerID string
}

func (e ContainerCreatedEvent) String() string {
	return fmt.Sprintf("ContainerCreatedEvent(container: '%s', id: '%s')", e.Container, e.ContainerID)
}

type ContainerStartedEvent struct {
	Container string
}

func (e ContainerStartedEvent) String() string {
	return fmt.Sprintf("ContainerStartedEvent(container: '%s')", e.Container)
}

type ContainerBecameHealthyEvent struct {
	Container string
}

func (e ContainerBecameHealthyEvent) String() string {
	return fmt.Sprintf("ContainerBecameHealthyEvent(container: '%s')", e.Container)
}

// RunningContainerExitedEvent records the exit of a container that was run
// to completion, normally the task container.
type RunningContainerExitedEvent struct {
	Container string
	ExitCode  int64
}

func (e RunningContainerExitedEvent) String() string {
	return fmt.Sprintf("RunningContainerExitedEvent(container: '%s', exit code: %d)", e.Container, e.ExitCode)
}

type ContainerStoppedEvent struct {
	Container string
}

func (e ContainerStoppedEvent) String() string {
	return fmt.Sprintf("ContainerStoppedEvent(container: '%s')", e.Container)
}

type ContainerRemovedEvent struct {
	Container string
}

func (e ContainerRemovedEvent) String() string {
	return fmt.Sprintf("ContainerRemovedEvent(container: '%s')", e.Container)
}

type TemporaryFileCreatedEvent struct {
	Container string
	Path      string
}

func (e TemporaryFileCreatedEvent) String() string {
	return fmt.Sprintf("TemporaryFileCreatedEvent(container: '%s', path: '%s')", e.Container, e.Path)
}

type TemporaryFileDeletedEvent struct {
	Path string
}

func (e TemporaryFileDeletedEvent) String() string {
	return fmt.Sprintf("TemporaryFileDeletedEvent(path: '%s')", e.Path)
}
