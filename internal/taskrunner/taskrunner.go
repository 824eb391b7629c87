// Package taskrunner runs a single task from graph construction through
// cleanup and turns the outcome into an exit code.
package taskrunner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/console"
	"github.com/specialistvlad/stevedore/internal/ctxlog"
	"github.com/specialistvlad/stevedore/internal/events"
	"github.com/specialistvlad/stevedore/internal/executor"
	"github.com/specialistvlad/stevedore/internal/failure"
	"github.com/specialistvlad/stevedore/internal/graph"
	"github.com/specialistvlad/stevedore/internal/interrupt"
	"github.com/specialistvlad/stevedore/internal/planning"
	"github.com/specialistvlad/stevedore/internal/runtime"
	"github.com/specialistvlad/stevedore/internal/scheduler"
	"github.com/specialistvlad/stevedore/internal/steprunner"
)

// GenericFailureExitCode is returned when a task fails without its task
// container reporting a non-zero exit code of its own.
const GenericFailureExitCode = 1

// InconsistentStateError means execution ended with neither a failure nor
// an exit from the task container. It indicates a bug, not a user error.
type InconsistentStateError struct {
	Task string
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("the task '%s' neither failed nor succeeded; this is a bug", e.Task)
}

// Trap delivers a user interruption as an event.
type Trap interface {
	Arm(sink events.Sink, onInterrupt func())
	Disarm()
}

// Options configures a Runner.
type Options struct {
	ProjectName string
	RunID       string
	// Console receives progress lines.
	Console io.Writer
	// Stdout and Stderr receive the task container's output.
	Stdout io.Writer
	Stderr io.Writer
	// NewTrap defaults to interrupt.NewTrap.
	NewTrap func() Trap
}

// Runner runs tasks against one container runtime.
type Runner struct {
	client runtime.Client
	opts   Options
}

func New(client runtime.Client, opts Options) *Runner {
	if opts.Console == nil {
		opts.Console = io.Discard
	}
	if opts.NewTrap == nil {
		opts.NewTrap = func() Trap { return interrupt.NewTrap() }
	}
	return &Runner{client: client, opts: opts}
}

// Run executes the task and returns its exit code. An error is returned when
// the task cannot be started at all (for example an invalid dependency
// graph) or when the engine itself fails.
func (r *Runner) Run(ctx context.Context, cfg *config.Configuration, task *config.Task, runOptions config.RunOptions) (int, error) {
	ctx = ctxlog.ForTask(ctx, task.Name)
	logger := ctxlog.FromContext(ctx)
	started := time.Now()

	resolver := graph.TaskCommandResolver{AdditionalArguments: runOptions.AdditionalTaskCommandArguments}
	g, err := graph.Build(ctx, task, cfg.Containers, resolver)
	if err != nil {
		return -1, err
	}

	eventLogger := console.NewEventLogger(r.opts.Console)
	eventLogger.OnTaskStarting(task.Name)

	stateMachine := scheduler.NewStateMachine(ctx, g, runOptions,
		planning.RunStagePlanner{}, planning.CleanupStagePlanner{}, failure.Formatter{})
	stepRunner := steprunner.New(r.client, steprunner.Options{
		ProjectName: r.opts.ProjectName,
		TaskName:    task.Name,
		RunID:       r.opts.RunID,
		Stdout:      r.opts.Stdout,
		Stderr:      r.opts.Stderr,
	})
	manager := executor.NewParallelExecutionManager(eventLogger, stepRunner, stateMachine, runOptions)

	trap := r.opts.NewTrap()
	trap.Arm(manager, stepRunner.Abort)
	defer trap.Disarm()

	logger.Info("Task starting.", "maxParallelism", runOptions.EffectiveParallelism())
	if err := manager.Run(ctx); err != nil {
		return -1, fmt.Errorf("running task '%s': %w", task.Name, err)
	}

	exitCode, err := exitCodeFor(task, g, stateMachine)
	if err != nil {
		return -1, err
	}

	if stateMachine.TaskHasFailed() {
		eventLogger.OnTaskFailed(task.Name, stateMachine.ManualCleanupInstructions())
	} else {
		eventLogger.PrintManualCleanupInstructions(stateMachine.ManualCleanupInstructions())
	}
	eventLogger.OnTaskFinished(task.Name, exitCode, time.Since(started))
	logger.Info("Task finished.", "exitCode", exitCode, "failed", stateMachine.TaskHasFailed())

	return exitCode, nil
}

func exitCodeFor(task *config.Task, g *graph.Graph, stateMachine *scheduler.StateMachine) (int, error) {
	taskContainer := g.TaskContainerNode().Name()
	exited, hasExited := events.FirstOfType(stateMachine.AllEvents(), func(e events.RunningContainerExitedEvent) bool {
		return e.Container == taskContainer
	})

	switch {
	case stateMachine.TaskHasFailed():
		if hasExited && exited.ExitCode != 0 {
			return int(exited.ExitCode), nil
		}
		return GenericFailureExitCode, nil
	case hasExited:
		return int(exited.ExitCode), nil
	default:
		return -1, &InconsistentStateError{Task: task.Name}
	}
}
