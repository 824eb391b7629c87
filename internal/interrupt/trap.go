// Package interrupt turns a Ctrl+C during a task into a failure event so
// the task stops starting new work and cleans up.
package interrupt

import (
	"os"
	"os/signal"
	"sync"

	"github.com/specialistvlad/stevedore/internal/events"
)

// Trap listens for SIGINT between Arm and Disarm.
type Trap struct {
	signals chan os.Signal
	notify  func(chan<- os.Signal)
	stop    func(chan<- os.Signal)

	disarm sync.Once
	armed  bool
	done   chan struct{}
	exited chan struct{}
}

func NewTrap() *Trap {
	return newTrap(
		func(c chan<- os.Signal) { signal.Notify(c, os.Interrupt) },
		signal.Stop,
	)
}

func newTrap(notify, stop func(chan<- os.Signal)) *Trap {
	return &Trap{
		signals: make(chan os.Signal, 1),
		notify:  notify,
		stop:    stop,
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

// Arm starts listening. The first interrupt posts a
// UserInterruptedExecutionEvent to the sink and then calls onInterrupt, if
// set. Later interrupts are ignored.
func (t *Trap) Arm(sink events.Sink, onInterrupt func()) {
	t.notify(t.signals)
	t.armed = true

	go func() {
		defer close(t.exited)
		select {
		case <-t.signals:
			sink.PostEvent(events.UserInterruptedExecutionEvent{})
			if onInterrupt != nil {
				onInterrupt()
			}
		case <-t.done:
			return
		}
		// Swallow further interrupts until disarmed.
		for {
			select {
			case <-t.signals:
			case <-t.done:
				return
			}
		}
	}()
}

// Disarm stops listening and waits for an interrupt already being handled
// to finish posting. It is safe to call more than once.
func (t *Trap) Disarm() {
	t.disarm.Do(func() {
		t.stop(t.signals)
		close(t.done)
		if t.armed {
			<-t.exited
		}
	})
}
