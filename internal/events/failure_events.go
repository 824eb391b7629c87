package events

import "fmt"

type TaskNetworkCreationFailedEvent struct {
	Message string
}

func (e TaskNetworkCreationFailedEvent) String() string {
	return fmt.Sprintf("TaskNetworkCreationFailedEvent(message: '%s')", e.Message)
}
func (e TaskNetworkCreationFailedEvent) FailureMessage() string { return e.Message }

type TaskNetworkDeletionFailedEvent struct {
	NetworkID string
	Message   string
}

func (e TaskNetworkDeletionFailedEvent) String() string {
	return fmt.Sprintf("TaskNetworkDeletionFailedEvent(network: '%s', message: '%s')", e.NetworkID, e.Message)
}
func (e TaskNetworkDeletionFailedEvent) FailureMessage() string { return e.Message }

type ImagePullFailedEvent struct {
	Image   string
	Message string
}

func (e ImagePullFailedEvent) String() string {
	return fmt.Sprintf("ImagePullFailedEvent(image: '%s', message: '%s')", e.Image, e.Message)
}
func (e ImagePullFailedEvent) FailureMessage() string { return e.Message }

type ContainerCreationFailedEvent struct {
	Container string
	Message   string
}

func (e ContainerCreationFailedEvent) String() string {
	return fmt.Sprintf("ContainerCreationFailedEvent(container: '%s', message: '%s')", e.Container, e.Message)
}
func (e ContainerCreationFailedEvent) FailureMessage() string { return e.Message }

type ContainerRunFailedEvent struct {
	Container string
	Message   string
}

func (e ContainerRunFailedEvent) String() string {
	return fmt.Sprintf("ContainerRunFailedEvent(container: '%s', message: '%s')", e.Container, e.Message)
}
func (e ContainerRunFailedEvent) FailureMessage() string { return e.Message }

type ContainerDidNotBecomeHealthyEvent struct {
	Container string
	Message   string
}

func (e ContainerDidNotBecomeHealthyEvent) String() string {
	return fmt.Sprintf("ContainerDidNotBecomeHealthyEvent(container: '%s', message: '%s')", e.Container, e.Message)
}
func (e ContainerDidNotBecomeHealthyEvent) FailureMessage() string { return e.Message }

type ContainerStopFailedEvent struct {
	Container string
	Message   string
}

func (e ContainerStopFailedEvent) String() string {
	return fmt.Sprintf("ContainerStopFailedEvent(container: '%s', message: '%s')", e.Container, e.Message)
}
func (e ContainerStopFailedEvent) FailureMessage() string { return e.Message }

type ContainerRemovalFailedEvent struct {
	Container string
	Message   string
}

func (e ContainerRemovalFailedEvent) String() string {
	return fmt.Sprintf("ContainerRemovalFailedEvent(container: '%s', message: '%s')", e.Container, e.Message)
}
func (e ContainerRemovalFailedEvent) FailureMessage() string { return e.Message }

type TemporaryFileDeletionFailedEvent struct {
	Path    string
	Message string
}

func (e TemporaryFileDeletionFailedEvent) String() string {
	return fmt.Sprintf("TemporaryFileDeletionFailedEvent(path: '%s', message: '%s')", e.Path, e.Message)
}
func (e TemporaryFileDeletionFailedEvent) FailureMessage() string { return e.Message }

// ExecutionFailedEvent reports an unexpected error while running a step.
type ExecutionFailedEvent struct {
	Message string
}

func (e ExecutionFailedEvent) String() string {
	return fmt.Sprintf("ExecutionFailedEvent(message: '%s')", e.Message)
}
func (e ExecutionFailedEvent) FailureMessage() string { return e.Message }

// UserInterruptedExecutionEvent is posted once when the user presses Ctrl+C.
type UserInterruptedExecutionEvent struct{}

func (e UserInterruptedExecutionEvent) String() string { return "UserInterruptedExecutionEvent" }
func (e UserInterruptedExecutionEvent) FailureMessage() string {
	return "Interrupt received during execution"
}
