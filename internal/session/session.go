// Package session defines the core interfaces for creating and managing an
// execution session: one invocation of a task together with its
// prerequisites. It abstracts away which container runtime carries the
// tasks out.
package session

import (
	"context"

	"github.com/specialistvlad/stevedore/internal/config"
)

// SessionFactory creates an execution Session. Different implementations can
// support different container runtimes.
type SessionFactory interface {
	NewSession(
		ctx context.Context,
		cfg *config.Configuration,
		opts config.RunOptions,
	) (Session, error)
}

// Session represents a single execution run and manages its lifecycle.
type Session interface {
	// Run executes the requested task and returns the exit code the
	// process should finish with.
	Run(ctx context.Context) (int, error)
	// Close releases any resources held by the session. It accepts a context
	// to allow for graceful cleanup operations.
	Close(ctx context.Context) error
}

// TaskRunner runs one task to completion.
type TaskRunner interface {
	Run(ctx context.Context, cfg *config.Configuration, task *config.Task, opts config.RunOptions) (int, error)
}
