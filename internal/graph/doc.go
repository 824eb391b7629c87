// Package graph builds the container dependency graph for a single task.
//
// # What the Graph Holds
//
// Every container that must be running for a task to execute becomes a
// Node: the task's own container (the root node), every container the task
// explicitly starts, and everything those containers depend on,
// transitively. Each node carries the command, entrypoint, working
// directory, environment and port overrides that apply to it for this task.
//
// # Validation
//
// Build rejects configurations that could never run, returning a
// *DependencyResolutionFailedError whose message is shown to the user
// verbatim:
//   - references to containers that do not exist
//   - a container that depends on itself
//   - a task that both starts and runs the same container
//   - dependency cycles, including cycles that close through the task's
//     own container
//
// # Thread-Safety
//
// A Graph is immutable once Build returns and may be shared between
// goroutines without locking.
package graph
