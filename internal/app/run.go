package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/stevedore/internal/ctxlog"
	"github.com/specialistvlad/stevedore/internal/observability"
)

// Run executes the requested task, or lists the tasks, and returns the exit
// code the process should finish with.
func (a *App) Run(ctx context.Context) (int, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.MetricsPort > 0 {
		if err := a.healthCheckServer(); err != nil {
			return -1, err
		}
		defer func() { _ = a.closeHealthCheckServer() }()
	}

	if a.config.OtelEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.ServiceName, a.config.OtelEndpoint)
		if err != nil {
			return -1, fmt.Errorf("failed to initialise tracing: %w", err)
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				a.logger.Warn("Tracer shutdown failed.", "error", err)
			}
		}()
	}

	if a.config.ListTasks {
		a.ListTasks(a.outW)
		return 0, nil
	}

	s, err := a.sessions.NewSession(ctx, a.project, a.config.RunOptions())
	if err != nil {
		return -1, fmt.Errorf("failed to start session: %w", err)
	}
	defer func() {
		if err := s.Close(ctx); err != nil {
			a.logger.Warn("Session close failed.", "error", err)
		}
	}()

	exitCode, err := s.Run(ctx)
	if err != nil {
		return -1, fmt.Errorf("execution failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.", "exitCode", exitCode)
	return exitCode, nil
}
