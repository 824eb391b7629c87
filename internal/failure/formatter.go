// Package failure renders failure events and manual cleanup instructions
// as messages for the user.
package failure

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/stevedore/internal/events"
)

// Formatter produces the user-facing text for failures.
type Formatter struct{}

// FormatErrorMessage describes a single failure event.
func (Formatter) FormatErrorMessage(e events.TaskFailedEvent) string {
	switch e := e.(type) {
	case events.TaskNetworkCreationFailedEvent:
		return fmt.Sprintf("Could not create network for task: %s", e.Message)
	case events.TaskNetworkDeletionFailedEvent:
		return fmt.Sprintf("Could not delete the task network: %s", e.Message)
	case events.ImagePullFailedEvent:
		return fmt.Sprintf("Could not pull image '%s': %s", e.Image, e.Message)
	case events.ContainerCreationFailedEvent:
		return fmt.Sprintf("Could not create container '%s': %s", e.Container, e.Message)
	case events.ContainerDidNotBecomeHealthyEvent:
		return fmt.Sprintf("Container '%s' did not become healthy: %s", e.Container, e.Message)
	case events.ContainerRunFailedEvent:
		return fmt.Sprintf("Could not run container '%s': %s", e.Container, e.Message)
	case events.ContainerStopFailedEvent:
		return fmt.Sprintf("Could not stop container '%s': %s", e.Container, e.Message)
	case events.ContainerRemovalFailedEvent:
		return fmt.Sprintf("Could not remove container '%s': %s", e.Container, e.Message)
	case events.TemporaryFileDeletionFailedEvent:
		return fmt.Sprintf("Could not delete temporary file '%s': %s", e.Path, e.Message)
	case events.UserInterruptedExecutionEvent:
		return "Task execution stopped by user."
	case events.ExecutionFailedEvent:
		return fmt.Sprintf("An unexpected error occurred during execution:\n%s", e.Message)
	default:
		return e.FailureMessage()
	}
}

// FormatManualCleanupMessageAfterCleanupFailure explains that cleanup did
// not finish and lists the commands that would finish it.
func (Formatter) FormatManualCleanupMessageAfterCleanupFailure(cleanupCommands []string) string {
	const intro = "Clean up has failed, and stevedore cannot guarantee that all temporary resources created have been completely cleaned up."
	if len(cleanupCommands) == 0 {
		return intro
	}

	noun := "command"
	if len(cleanupCommands) > 1 {
		noun = "commands"
	}
	return fmt.Sprintf("%s You may need to run the following %s to clean up any remaining resources:\n\n%s",
		intro, noun, strings.Join(cleanupCommands, "\n"))
}

// FormatManualCleanupMessageAfterTaskFailureWithCleanupDisabled explains how
// to inspect the containers left behind by a failed task.
func (Formatter) FormatManualCleanupMessageAfterTaskFailureWithCleanupDisabled(past events.Set, cleanupCommands []string) string {
	return leftBehindMessage(
		"As the task was run with --no-cleanup-after-failure or --no-cleanup, the created containers will not be cleaned up.",
		"Once you have finished investigating the issue, clean up all temporary resources created by stevedore by running:",
		past, cleanupCommands)
}

// FormatManualCleanupMessageAfterTaskSuccessWithCleanupDisabled explains how
// to use and then remove the containers left behind by a successful task.
func (Formatter) FormatManualCleanupMessageAfterTaskSuccessWithCleanupDisabled(past events.Set, cleanupCommands []string) string {
	return leftBehindMessage(
		"As the task was run with --no-cleanup-after-success or --no-cleanup, the created containers will not be cleaned up.",
		"Once you have finished using the containers, clean up all temporary resources created by stevedore by running:",
		past, cleanupCommands)
}

func leftBehindMessage(intro, outro string, past events.Set, cleanupCommands []string) string {
	var sb strings.Builder
	sb.WriteString(intro)
	sb.WriteString("\n")

	for _, created := range events.OfType[events.ContainerCreatedEvent](past) {
		id := created.ContainerID
		fmt.Fprintf(&sb, "For container '%s', view its output by running 'docker logs %s', or run a command in the container with 'docker start %s; docker exec --interactive --tty %s <command>'.\n",
			created.Container, id, id, id)
	}

	sb.WriteString("\n")
	sb.WriteString(outro)
	sb.WriteString("\n\n")
	sb.WriteString(strings.Join(cleanupCommands, "\n"))
	return sb.String()
}
