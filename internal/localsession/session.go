// Package localsession provides a concrete implementation of the session.Session
// and session.SessionFactory interfaces backed by the local Docker daemon.
package localsession

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/ctxlog"
	"github.com/specialistvlad/stevedore/internal/runtime"
	"github.com/specialistvlad/stevedore/internal/session"
	"github.com/specialistvlad/stevedore/internal/taskrunner"
)

// SessionFactory implements session.SessionFactory for local runs.
type SessionFactory struct {
	// Console receives progress output; Stdout and Stderr receive the task
	// containers' output.
	Console io.Writer
	Stdout  io.Writer
	Stderr  io.Writer

	// NewClient defaults to a Docker client configured from the environment.
	NewClient func() (runtime.Client, io.Closer, error)
}

var _ session.SessionFactory = (*SessionFactory)(nil)

// NewSession connects to the container runtime and wires a task runner for
// a new run ID.
func (f *SessionFactory) NewSession(
	ctx context.Context,
	cfg *config.Configuration,
	opts config.RunOptions,
) (session.Session, error) {
	runID := uuid.NewString()
	ctx = ctxlog.With(ctx, "run", runID)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("localsession.SessionFactory.NewSession called", "task", opts.TaskName)

	newClient := f.NewClient
	if newClient == nil {
		newClient = dockerClient
	}
	client, closer, err := newClient()
	if err != nil {
		return nil, err
	}

	runner := taskrunner.New(client, taskrunner.Options{
		ProjectName: cfg.ProjectName,
		RunID:       shortID(runID),
		Console:     f.Console,
		Stdout:      f.Stdout,
		Stderr:      f.Stderr,
	})

	return &Session{
		runID:  runID,
		cfg:    cfg,
		opts:   opts,
		runner: runner,
		closer: closer,
	}, nil
}

func dockerClient() (runtime.Client, io.Closer, error) {
	client, err := runtime.NewDockerClient()
	if err != nil {
		return nil, nil, err
	}
	return client, client, nil
}

// shortID keeps container and network names readable.
func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

// Session implements session.Session for local runs.
type Session struct {
	runID  string
	cfg    *config.Configuration
	opts   config.RunOptions
	runner session.TaskRunner
	closer io.Closer
}

// RunID identifies this session in logs and resource labels.
func (s *Session) RunID() string { return s.runID }

func (s *Session) Run(ctx context.Context) (int, error) {
	ctx = ctxlog.With(ctx, "run", s.runID)
	return session.RunTaskSequence(ctx, s.cfg, s.opts, s.runner)
}

// Close releases the runtime connection.
func (s *Session) Close(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("localsession.Session.Close called")
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
