// Package executor drives a task to completion by running its steps on a
// bounded pool of workers.
package executor

import (
	"context"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/events"
	"github.com/specialistvlad/stevedore/internal/steps"
)

// Executor is responsible for orchestrating the end-to-end execution of a task.
type Executor interface {
	Run(ctx context.Context) error
}

// StateMachine decides which step runs next. Implementations need not be
// safe for concurrent use; the executor serialises all calls.
type StateMachine interface {
	PostEvent(e events.Event)
	PopNextStep(stepsStillRunning bool) steps.Step
}

// StepRunner carries out a single step, reporting what happened through
// the sink. A returned error means the step could not be handled at all.
type StepRunner interface {
	Run(ctx context.Context, step steps.Step, sink events.Sink, runOptions config.RunOptions) error
}

// Observer is told about every step before it starts and every event
// before the state machine sees it.
type Observer interface {
	OnStepStarting(step steps.Step)
	PostEvent(e events.Event)
}
