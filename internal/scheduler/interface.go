package scheduler

import "github.com/specialistvlad/stevedore/internal/events"

// FailureMessageFormatter renders the manual cleanup instructions shown
// when resources may have been left behind.
type FailureMessageFormatter interface {
	FormatManualCleanupMessageAfterCleanupFailure(cleanupCommands []string) string
	FormatManualCleanupMessageAfterTaskFailureWithCleanupDisabled(past events.Set, cleanupCommands []string) string
	FormatManualCleanupMessageAfterTaskSuccessWithCleanupDisabled(past events.Set, cleanupCommands []string) string
}
