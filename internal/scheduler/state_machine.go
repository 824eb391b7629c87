package scheduler

import (
	"context"
	"log/slog"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/ctxlog"
	"github.com/specialistvlad/stevedore/internal/events"
	"github.com/specialistvlad/stevedore/internal/graph"
	"github.com/specialistvlad/stevedore/internal/stage"
	"github.com/specialistvlad/stevedore/internal/steps"
)

const noStepsReadyPanic = "None of the remaining steps are ready to execute, but there are no steps currently running."

// StateMachine tracks the progress of a single task.
type StateMachine struct {
	logger         *slog.Logger
	graph          *graph.Graph
	runOptions     config.RunOptions
	cleanupPlanner stage.CleanupStagePlanner
	formatter      FailureMessageFormatter

	events       events.Set
	runStage     stage.Stage
	cleanupStage stage.CleanupStage

	inCleanup           bool
	finished            bool
	taskHasFailed       bool
	failedDuringCleanup bool

	manualCleanupInstructions string
}

// NewStateMachine plans the run stage for the graph and returns a machine
// ready to hand out its first step.
func NewStateMachine(
	ctx context.Context,
	g *graph.Graph,
	runOptions config.RunOptions,
	runPlanner stage.RunStagePlanner,
	cleanupPlanner stage.CleanupStagePlanner,
	formatter FailureMessageFormatter,
) *StateMachine {
	return &StateMachine{
		logger:         ctxlog.FromContext(ctx),
		graph:          g,
		runOptions:     runOptions,
		cleanupPlanner: cleanupPlanner,
		formatter:      formatter,
		runStage:       runPlanner.CreateStage(g),
	}
}

// PostEvent records an event. It never moves the machine between stages;
// that only happens in PopNextStep.
func (m *StateMachine) PostEvent(e events.Event) {
	m.events.Add(e)

	if events.IsFailure(e) {
		m.taskHasFailed = true
		if m.inCleanup {
			m.failedDuringCleanup = true
		}
	}
}

// PopNextStep returns the next step to run, or nil if nothing can run right
// now. stepsStillRunning tells the machine whether any step is in flight.
func (m *StateMachine) PopNextStep(stepsStillRunning bool) steps.Step {
	if m.inCleanup {
		return m.popFromCleanupStage(stepsStillRunning)
	}

	if m.taskHasFailed {
		if stepsStillRunning {
			return nil
		}
		m.logger.Debug("Task failed and no steps are running, starting cleanup.")
		return m.startCleanupStage(stepsStillRunning)
	}

	switch result := m.runStage.PopNextStep(m.events).(type) {
	case stage.StepReady:
		return result.Step
	case stage.NoStepsReady:
		return nil
	case stage.NoStepsRemaining:
		if stepsStillRunning {
			return nil
		}
		m.logger.Debug("Run stage complete, starting cleanup.")
		return m.startCleanupStage(stepsStillRunning)
	default:
		panic("scheduler: unknown stage result")
	}
}

func (m *StateMachine) startCleanupStage(stepsStillRunning bool) steps.Step {
	m.inCleanup = true
	if m.cleanupStage == nil {
		m.cleanupStage = m.cleanupPlanner.CreateStage(m.graph, m.events.Snapshot())
	}

	behaviour := m.runOptions.BehaviourAfterSuccess
	if m.taskHasFailed {
		behaviour = m.runOptions.BehaviourAfterFailure
	}
	if behaviour == config.DontCleanup {
		m.logger.Debug("Cleanup disabled, leaving resources in place.", "failed", m.taskHasFailed)
		m.finishWithoutCleanup()
		return nil
	}

	return m.popFromCleanupStage(stepsStillRunning)
}

func (m *StateMachine) popFromCleanupStage(stepsStillRunning bool) steps.Step {
	if m.finished {
		return nil
	}

	switch result := m.cleanupStage.PopNextStep(m.events).(type) {
	case stage.StepReady:
		return result.Step
	case stage.NoStepsReady:
		if stepsStillRunning {
			return nil
		}
		panic(noStepsReadyPanic)
	case stage.NoStepsRemaining:
		// A step still in flight may yet fail, so wait for it.
		if stepsStillRunning {
			return nil
		}
		m.finishCleanup()
		return nil
	default:
		panic("scheduler: unknown stage result")
	}
}

func (m *StateMachine) finishCleanup() {
	m.finished = true
	if m.failedDuringCleanup {
		m.manualCleanupInstructions = m.formatter.FormatManualCleanupMessageAfterCleanupFailure(m.cleanupStage.ManualCleanupCommands())
	}
	m.logger.Debug("Cleanup stage complete.", "failedDuringCleanup", m.failedDuringCleanup)
}

func (m *StateMachine) finishWithoutCleanup() {
	m.finished = true
	if len(events.OfType[events.ContainerCreatedEvent](m.events)) == 0 {
		return
	}

	commands := m.cleanupStage.ManualCleanupCommands()
	if m.taskHasFailed {
		m.manualCleanupInstructions = m.formatter.FormatManualCleanupMessageAfterTaskFailureWithCleanupDisabled(m.events, commands)
	} else {
		m.manualCleanupInstructions = m.formatter.FormatManualCleanupMessageAfterTaskSuccessWithCleanupDisabled(m.events, commands)
	}
}

// TaskHasFailed reports whether any failure event has been posted.
func (m *StateMachine) TaskHasFailed() bool { return m.taskHasFailed }

// AllEvents returns a copy of every event posted so far.
func (m *StateMachine) AllEvents() events.Set { return m.events.Snapshot() }

// ManualCleanupInstructions returns the instructions for cleaning up by
// hand, or "" when there is nothing to do.
func (m *StateMachine) ManualCleanupInstructions() string { return m.manualCleanupInstructions }

// CleanupFinished reports whether the cleanup stage has completed or was skipped.
func (m *StateMachine) CleanupFinished() bool { return m.finished }
