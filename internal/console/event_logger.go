// Package console reports task progress to the user.
package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/specialistvlad/stevedore/internal/events"
	"github.com/specialistvlad/stevedore/internal/executor"
	"github.com/specialistvlad/stevedore/internal/failure"
	"github.com/specialistvlad/stevedore/internal/steps"
)

// EventLogger prints one line per interesting step or event. It is the
// executor's observer for a single task.
type EventLogger struct {
	mu        sync.Mutex
	out       io.Writer
	styles    styles
	formatter failure.Formatter

	cleanupAnnounced bool
}

var _ executor.Observer = (*EventLogger)(nil)

func NewEventLogger(out io.Writer) *EventLogger {
	return &EventLogger{
		out:    out,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

func (l *EventLogger) OnTaskStarting(taskName string) {
	l.println(l.styles.heading.Render(fmt.Sprintf("Running %s...", taskName)))
}

func (l *EventLogger) OnTaskFinished(taskName string, exitCode int, elapsed time.Duration) {
	msg := fmt.Sprintf("%s finished with exit code %d in %s.", taskName, exitCode, elapsed.Round(time.Millisecond))
	if exitCode == 0 {
		l.println(l.styles.success.Render(msg))
		return
	}
	l.println(l.styles.failure.Render(msg))
}

// OnTaskFailed prints the manual cleanup instructions, if there are any.
func (l *EventLogger) OnTaskFailed(taskName, manualCleanupInstructions string) {
	l.println(l.styles.failure.Render(fmt.Sprintf("The task %s failed. See above for details.", taskName)))
	l.PrintManualCleanupInstructions(manualCleanupInstructions)
}

func (l *EventLogger) PrintManualCleanupInstructions(instructions string) {
	if instructions == "" {
		return
	}
	l.println("")
	l.println(l.styles.warning.Render(instructions))
}

func (l *EventLogger) OnStepStarting(step steps.Step) {
	switch step := step.(type) {
	case steps.PullImageStep:
		l.println(l.styles.step.Render(fmt.Sprintf("Pulling %s...", step.Image)))
	case steps.RunContainerStep:
		if step.IsTaskContainer {
			l.println(l.styles.step.Render(fmt.Sprintf("Running %s...", step.Container)))
		} else {
			l.println(l.styles.step.Render(fmt.Sprintf("Starting %s...", step.Container)))
		}
	case steps.WaitForContainerToBecomeHealthyStep:
		l.println(l.styles.muted.Render(fmt.Sprintf("Waiting for %s to become healthy...", step.Container)))
	case steps.StopContainerStep, steps.RemoveContainerStep, steps.DeleteTaskNetworkStep, steps.DeleteTemporaryFileStep:
		l.announceCleanup()
	}
}

func (l *EventLogger) PostEvent(e events.Event) {
	switch e := e.(type) {
	case events.ContainerBecameHealthyEvent:
		l.println(l.styles.muted.Render(fmt.Sprintf("%s has become healthy.", e.Container)))
	case events.TaskFailedEvent:
		l.println(l.styles.failure.Render(l.formatter.FormatErrorMessage(e)))
	}
}

func (l *EventLogger) announceCleanup() {
	l.mu.Lock()
	announced := l.cleanupAnnounced
	l.cleanupAnnounced = true
	l.mu.Unlock()

	if !announced {
		l.println(l.styles.muted.Render("Cleaning up..."))
	}
}

func (l *EventLogger) println(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, line)
}
