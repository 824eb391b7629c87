// Package steprunner carries out task steps against a container runtime and
// reports the outcome of each one as events.
package steprunner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sourcegraph/conc"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/ctxlog"
	"github.com/specialistvlad/stevedore/internal/events"
	"github.com/specialistvlad/stevedore/internal/executor"
	"github.com/specialistvlad/stevedore/internal/runtime"
	"github.com/specialistvlad/stevedore/internal/steps"
)

const (
	labelProject = "io.stevedore.project"
	labelTask    = "io.stevedore.task"
	labelRun     = "io.stevedore.run"
)

// Runner implements executor.StepRunner on top of a runtime.Client.
type Runner struct {
	client      runtime.Client
	projectName string
	taskName    string
	runID       string
	stdout      io.Writer
	stderr      io.Writer

	// aborted is cancelled by Abort. Waits on running containers observe it
	// so an interrupted task can move on to cleanup.
	aborted context.Context
	abort   context.CancelFunc
}

var _ executor.StepRunner = (*Runner)(nil)

// Options identifies the run and where the task container's output goes.
type Options struct {
	ProjectName string
	TaskName    string
	RunID       string
	Stdout      io.Writer
	Stderr      io.Writer
}

func New(client runtime.Client, opts Options) *Runner {
	aborted, abort := context.WithCancel(context.Background())
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &Runner{
		client:      client,
		projectName: opts.ProjectName,
		taskName:    opts.TaskName,
		runID:       opts.RunID,
		stdout:      stdout,
		stderr:      stderr,
		aborted:     aborted,
		abort:       abort,
	}
}

// Abort stops any wait on a running container. Steps already waiting return
// without reporting an exit; cleanup steps are unaffected.
func (r *Runner) Abort() {
	r.abort()
}

// Run performs one step. Failures of the step itself are reported as events;
// an error is returned only for steps this runner does not know.
func (r *Runner) Run(ctx context.Context, step steps.Step, sink events.Sink, _ config.RunOptions) error {
	logger := ctxlog.FromContext(ctx).With("step", step.String())
	logger.Debug("Running step.")

	switch step := step.(type) {
	case steps.CreateTaskNetworkStep:
		r.createTaskNetwork(ctx, sink)
	case steps.PullImageStep:
		r.pullImage(ctx, step, sink)
	case steps.CreateContainerStep:
		r.createContainer(ctx, step, sink)
	case steps.RunContainerStep:
		r.runContainer(ctx, step, sink)
	case steps.WaitForContainerToBecomeHealthyStep:
		r.waitForHealthy(ctx, step, sink)
	case steps.StopContainerStep:
		r.stopContainer(ctx, step, sink)
	case steps.RemoveContainerStep:
		r.removeContainer(ctx, step, sink)
	case steps.DeleteTaskNetworkStep:
		r.deleteTaskNetwork(ctx, step, sink)
	case steps.DeleteTemporaryFileStep:
		r.deleteTemporaryFile(step, sink)
	default:
		return fmt.Errorf("no handler for step %s", step)
	}
	return nil
}

func (r *Runner) createTaskNetwork(ctx context.Context, sink events.Sink) {
	id, err := r.client.CreateNetwork(ctx, r.resourceName(r.taskName))
	if err != nil {
		sink.PostEvent(events.TaskNetworkCreationFailedEvent{Message: err.Error()})
		return
	}
	sink.PostEvent(events.TaskNetworkCreatedEvent{NetworkID: id})
}

func (r *Runner) pullImage(ctx context.Context, step steps.PullImageStep, sink events.Sink) {
	id, err := r.client.PullImage(ctx, step.Image)
	if err != nil {
		sink.PostEvent(events.ImagePullFailedEvent{Image: step.Image, Message: err.Error()})
		return
	}
	sink.PostEvent(events.ImagePulledEvent{Image: step.Image, ImageID: id})
}

func (r *Runner) createContainer(ctx context.Context, step steps.CreateContainerStep, sink events.Sink) {
	node := step.Node
	container := node.Container()

	opts := runtime.CreateOptions{
		Name:             r.resourceName(node.Name()),
		NetworkID:        step.NetworkID,
		NetworkAlias:     node.Name(),
		Image:            step.ImageID,
		WorkingDirectory: node.WorkingDirectory(),
		Environment:      node.Environment(),
		Ports:            node.PortMappings(),
		Volumes:          container.Volumes,
		Labels: map[string]string{
			labelProject: r.projectName,
			labelTask:    r.taskName,
			labelRun:     r.runID,
		},
	}
	if cmd := node.Command(); cmd != nil {
		opts.Command = cmd.Parsed
	}
	if entrypoint := node.Entrypoint(); entrypoint != nil {
		opts.Entrypoint = entrypoint.Parsed
	}

	id, err := r.client.CreateContainer(ctx, opts)
	if err != nil {
		sink.PostEvent(events.ContainerCreationFailedEvent{Container: node.Name(), Message: err.Error()})
		return
	}
	sink.PostEvent(events.ContainerCreatedEvent{Container: node.Name(), ContainerID: id})
}

func (r *Runner) runContainer(ctx context.Context, step steps.RunContainerStep, sink events.Sink) {
	if err := r.client.StartContainer(ctx, step.ContainerID); err != nil {
		sink.PostEvent(events.ContainerRunFailedEvent{Container: step.Container, Message: err.Error()})
		return
	}
	sink.PostEvent(events.ContainerStartedEvent{Container: step.Container})

	if !step.IsTaskContainer {
		return
	}

	waitCtx, cancel := r.abortable(ctx)
	defer cancel()

	var wg conc.WaitGroup
	wg.Go(func() {
		if err := r.client.StreamOutput(waitCtx, step.ContainerID, r.stdout, r.stderr); err != nil && waitCtx.Err() == nil {
			ctxlog.FromContext(ctx).Warn("Output stream ended with an error.", "container", step.Container, "error", err)
		}
	})

	exitCode, err := r.client.WaitForExit(waitCtx, step.ContainerID)
	if err != nil {
		cancel()
		wg.Wait()
		if errors.Is(waitCtx.Err(), context.Canceled) && r.aborted.Err() != nil {
			ctxlog.FromContext(ctx).Info("Stopped waiting for task container.", "container", step.Container)
			return
		}
		sink.PostEvent(events.ContainerRunFailedEvent{Container: step.Container, Message: err.Error()})
		return
	}
	wg.Wait()
	sink.PostEvent(events.RunningContainerExitedEvent{Container: step.Container, ExitCode: exitCode})
}

func (r *Runner) waitForHealthy(ctx context.Context, step steps.WaitForContainerToBecomeHealthyStep, sink events.Sink) {
	waitCtx, cancel := r.abortable(ctx)
	defer cancel()

	if err := r.client.WaitForHealthy(waitCtx, step.ContainerID); err != nil {
		sink.PostEvent(events.ContainerDidNotBecomeHealthyEvent{Container: step.Container, Message: err.Error()})
		return
	}
	sink.PostEvent(events.ContainerBecameHealthyEvent{Container: step.Container})
}

func (r *Runner) stopContainer(ctx context.Context, step steps.StopContainerStep, sink events.Sink) {
	if err := r.client.StopContainer(ctx, step.ContainerID); err != nil {
		sink.PostEvent(events.ContainerStopFailedEvent{Container: step.Container, Message: err.Error()})
		return
	}
	sink.PostEvent(events.ContainerStoppedEvent{Container: step.Container})
}

func (r *Runner) removeContainer(ctx context.Context, step steps.RemoveContainerStep, sink events.Sink) {
	if err := r.client.RemoveContainer(ctx, step.ContainerID); err != nil {
		sink.PostEvent(events.ContainerRemovalFailedEvent{Container: step.Container, Message: err.Error()})
		return
	}
	sink.PostEvent(events.ContainerRemovedEvent{Container: step.Container})
}

func (r *Runner) deleteTaskNetwork(ctx context.Context, step steps.DeleteTaskNetworkStep, sink events.Sink) {
	if err := r.client.DeleteNetwork(ctx, step.NetworkID); err != nil {
		sink.PostEvent(events.TaskNetworkDeletionFailedEvent{NetworkID: step.NetworkID, Message: err.Error()})
		return
	}
	sink.PostEvent(events.TaskNetworkDeletedEvent{})
}

func (r *Runner) deleteTemporaryFile(step steps.DeleteTemporaryFileStep, sink events.Sink) {
	if err := os.Remove(step.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		sink.PostEvent(events.TemporaryFileDeletionFailedEvent{Path: step.Path, Message: err.Error()})
		return
	}
	sink.PostEvent(events.TemporaryFileDeletedEvent{Path: step.Path})
}

// abortable derives a context that is also cancelled by Abort.
func (r *Runner) abortable(ctx context.Context) (context.Context, context.CancelFunc) {
	waitCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(r.aborted, cancel)
	return waitCtx, func() {
		stop()
		cancel()
	}
}

func (r *Runner) resourceName(name string) string {
	return fmt.Sprintf("%s-%s-%s", r.projectName, name, r.runID)
}
