// Package scheduler decides which step of a task runs next.
//
// # Why Scheduler Exists
//
// The executor knows how to run steps concurrently but nothing about what a
// task needs. The StateMachine owns that knowledge: it records every event
// posted by running steps and, when asked, consults the active stage to
// find the next step that is ready.
//
// # Stages
//
// A task moves through two stages:
//
//	RunActive ──(run complete, or failure with nothing running)──▶ CleanupActive ──▶ finished
//
// The cleanup stage is planned exactly once, lazily, from the graph and a
// snapshot of the events seen during the run stage. If cleanup is disabled
// for the outcome of the task, the stage is still planned so that the
// commands for cleaning up by hand can be shown, but none of its steps run.
//
// # Failure Handling
//
// Any failure event marks the task as failed. Once failed, no further run
// steps are handed out; in-flight steps are left to finish and only then
// does cleanup begin. A failure while cleanup is active is remembered so the
// user can be told that cleanup may be incomplete.
//
// # Thread-Safety
//
// StateMachine is not safe for concurrent use. The executor serialises
// every PostEvent and PopNextStep call behind a single lock so that a step
// is always chosen against a consistent view of the events.
package scheduler
