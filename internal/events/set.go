package events

// Set is an insertion-ordered collection of events. The zero value is
// ready to use. It is not safe for concurrent use.
type Set struct {
	items []Event
}

// NewSet returns a Set holding the given events in order.
func NewSet(items ...Event) Set {
	return Set{items: append([]Event(nil), items...)}
}

// Add appends an event.
func (s *Set) Add(e Event) {
	s.items = append(s.items, e)
}

// All returns the events in the order they were added.
func (s Set) All() []Event {
	return s.items
}

// Len returns the number of events.
func (s Set) Len() int {
	return len(s.items)
}

// Contains reports whether an equal event has been added.
func (s Set) Contains(e Event) bool {
	for _, item := range s.items {
		if item == e {
			return true
		}
	}
	return false
}

// Snapshot returns an independent copy of the set.
func (s Set) Snapshot() Set {
	return NewSet(s.items...)
}

// OfType returns every event of type T, in order.
func OfType[T Event](s Set) []T {
	var out []T
	for _, item := range s.items {
		if typed, ok := item.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

// FirstOfType returns the first event of type T that satisfies match.
func FirstOfType[T Event](s Set, match func(T) bool) (T, bool) {
	for _, item := range s.items {
		if typed, ok := item.(T); ok && match(typed) {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

// AnyOfType reports whether any event of type T satisfies match.
func AnyOfType[T Event](s Set, match func(T) bool) bool {
	_, ok := FirstOfType(s, match)
	return ok
}

// Failures returns every failure event, in order.
func (s Set) Failures() []TaskFailedEvent {
	return OfType[TaskFailedEvent](s)
}
