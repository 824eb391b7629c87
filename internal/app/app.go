package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/ctxlog"
	"github.com/specialistvlad/stevedore/internal/localsession"
	"github.com/specialistvlad/stevedore/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	ctx        context.Context
	logger     *slog.Logger
	config     *Config
	project    *config.Configuration
	sessions   session.SessionFactory
	httpServer *http.Server
}

// Option customises an App.
type Option func(*App)

// WithSessionFactory replaces the Docker-backed session factory.
func WithSessionFactory(f session.SessionFactory) Option {
	return func(a *App) { a.sessions = f }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and a loaded project.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, opts ...Option) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	project, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.",
		"project", project.ProjectName, "tasks", len(project.Tasks), "containers", len(project.Containers))

	a := &App{
		outW:    outW,
		ctx:     ctx,
		logger:  logger,
		config:  appConfig,
		project: project,
		sessions: &localsession.SessionFactory{
			Console: outW,
			Stdout:  outW,
			Stderr:  outW,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Project returns the loaded project configuration. This is primarily for testing.
func (a *App) Project() *config.Configuration {
	return a.project
}
