// Package stage defines how a phase of a task hands out its steps.
//
// A task has two stages: the run stage, which brings containers up and runs
// the task container, and the cleanup stage, which tears everything down.
// Both are driven purely by the events recorded so far.
package stage

import (
	"github.com/specialistvlad/stevedore/internal/events"
	"github.com/specialistvlad/stevedore/internal/graph"
	"github.com/specialistvlad/stevedore/internal/steps"
)

// Stage hands out the next step that is ready, given every event so far.
type Stage interface {
	PopNextStep(past events.Set) Result
}

// CleanupStage is a Stage that can also describe how to clean up by hand.
type CleanupStage interface {
	Stage
	ManualCleanupCommands() []string
}

// RunStagePlanner creates the run stage for a task's graph.
type RunStagePlanner interface {
	CreateStage(g *graph.Graph) Stage
}

// CleanupStagePlanner creates the cleanup stage from the graph and a
// snapshot of the events recorded during the run stage.
type CleanupStagePlanner interface {
	CreateStage(g *graph.Graph, past events.Set) CleanupStage
}

// Result is one of StepReady, NoStepsReady or NoStepsRemaining.
type Result interface {
	isResult()
}

// StepReady carries a step that can run now.
type StepReady struct {
	Step steps.Step
}

// NoStepsReady means steps remain but none can run yet.
type NoStepsReady struct{}

// NoStepsRemaining means the stage is complete.
type NoStepsRemaining struct{}

func (StepReady) isResult()        {}
func (NoStepsReady) isResult()     {}
func (NoStepsRemaining) isResult() {}
