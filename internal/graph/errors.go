package graph

import "fmt"

// DependencyResolutionFailedError is returned by Build when the task's
// containers cannot be arranged into a valid graph.
type DependencyResolutionFailedError struct {
	Message string
}

func (e *DependencyResolutionFailedError) Error() string {
	return e.Message
}

func resolutionFailed(format string, args ...any) error {
	return &DependencyResolutionFailedError{Message: fmt.Sprintf(format, args...)}
}

// NotInGraphError is returned when looking up a container that is not part
// of the graph.
type NotInGraphError struct {
	Container string
}

func (e *NotInGraphError) Error() string {
	return fmt.Sprintf("the unit '%s' is not part of this dependency graph", e.Container)
}
