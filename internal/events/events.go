// Package events defines the facts recorded while a task runs. Every
// decision about what to do next is derived from the events seen so far.
//
// Events are immutable, comparable values. Failure events additionally
// implement TaskFailedEvent; posting one marks the task as failed.
package events

// Event is something that happened while running a task.
type Event interface {
	String() string
}

// TaskFailedEvent is an Event that marks the task as failed.
type TaskFailedEvent interface {
	Event
	FailureMessage() string
}

// IsFailure reports whether the event marks the task as failed.
func IsFailure(e Event) bool {
	_, ok := e.(TaskFailedEvent)
	return ok
}

// Sink receives events posted by running steps.
type Sink interface {
	PostEvent(e Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(e Event)

func (f SinkFunc) PostEvent(e Event) { f(e) }
