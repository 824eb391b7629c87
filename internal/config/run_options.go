package config

import "runtime"

// CleanupBehaviour controls whether created resources are removed once a
// task finishes.
type CleanupBehaviour int

const (
	Cleanup CleanupBehaviour = iota
	DontCleanup
)

func (b CleanupBehaviour) String() string {
	if b == DontCleanup {
		return "dont-cleanup"
	}
	return "cleanup"
}

// RunOptions are the per-invocation settings shared by every task in a session.
type RunOptions struct {
	TaskName                       string
	MaxParallelism                 int
	BehaviourAfterFailure          CleanupBehaviour
	BehaviourAfterSuccess          CleanupBehaviour
	SkipPrerequisites              bool
	AdditionalTaskCommandArguments []string
}

// EffectiveParallelism returns MaxParallelism, or the number of CPUs when
// it is not a positive number.
func (o RunOptions) EffectiveParallelism() int {
	if o.MaxParallelism > 0 {
		return o.MaxParallelism
	}
	return runtime.NumCPU()
}
