package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/session"
	"github.com/specialistvlad/stevedore/internal/testutil"
)

type stubLoader struct {
	cfg *config.Configuration
	err error
}

func (l stubLoader) Load(context.Context, ...string) (*config.Configuration, error) {
	return l.cfg, l.err
}

type stubSession struct {
	exitCode int
	err      error
	closed   bool
}

func (s *stubSession) Run(context.Context) (int, error) { return s.exitCode, s.err }

func (s *stubSession) Close(context.Context) error {
	s.closed = true
	return nil
}

type stubFactory struct {
	session *stubSession
	opts    config.RunOptions
}

func (f *stubFactory) NewSession(_ context.Context, _ *config.Configuration, opts config.RunOptions) (session.Session, error) {
	f.opts = opts
	return f.session, nil
}

func sampleProject(t *testing.T) *config.Configuration {
	t.Helper()
	cfg := config.NewConfiguration("shop")
	require.NoError(t, cfg.AddTask(&config.Task{Name: "build", Group: "Build", Description: "Build the app."}))
	require.NoError(t, cfg.AddTask(&config.Task{Name: "test", Group: "Test", Description: "Run the tests."}))
	require.NoError(t, cfg.AddTask(&config.Task{Name: "lint", Group: "Build"}))
	require.NoError(t, cfg.AddTask(&config.Task{Name: "shell"}))
	return cfg
}

// setupAppTest creates a new app instance with a debug logger writing to a buffer.
func setupAppTest(t *testing.T, appConfig Config, cfg *config.Configuration, factory session.SessionFactory) (*App, *testutil.SafeBuffer) {
	t.Helper()
	out := &testutil.SafeBuffer{}
	appConfig.LogLevel = "debug"
	appConfig.ConfigPath = "stevedore.hcl"
	return NewApp(out, &appConfig, stubLoader{cfg: cfg}, WithSessionFactory(factory)), out
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid", cfg: Config{ConfigPath: "x.hcl", TaskName: "build"}},
		{name: "listing needs no task", cfg: Config{ConfigPath: "x.hcl", ListTasks: true}},
		{name: "missing path", cfg: Config{TaskName: "build"}, wantErr: "ConfigPath is a required"},
		{name: "missing task", cfg: Config{ConfigPath: "x.hcl"}, wantErr: "a task name is required"},
		{name: "negative parallelism", cfg: Config{ConfigPath: "x.hcl", TaskName: "b", MaxParallelism: -1}, wantErr: "max parallelism"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.cfg, *got)
		})
	}
}

func TestConfig_RunOptions(t *testing.T) {
	t.Parallel()

	cfg := Config{
		TaskName:              "build",
		MaxParallelism:        3,
		SkipPrerequisites:     true,
		NoCleanupAfterFailure: true,
		AdditionalArguments:   []string{"--verbose"},
	}

	assert.Equal(t, config.RunOptions{
		TaskName:                       "build",
		MaxParallelism:                 3,
		BehaviourAfterFailure:          config.DontCleanup,
		BehaviourAfterSuccess:          config.Cleanup,
		SkipPrerequisites:              true,
		AdditionalTaskCommandArguments: []string{"--verbose"},
	}, cfg.RunOptions())
}

func TestNewApp_PanicsOnLoadFailure(t *testing.T) {
	t.Parallel()

	assert.PanicsWithError(t, "failed to load configuration: bad file", func() {
		NewApp(&testutil.SafeBuffer{}, &Config{ConfigPath: "x"}, stubLoader{err: errors.New("bad file")})
	})
}

func TestApp_RunReturnsSessionExitCode(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewContext(t)

	factory := &stubFactory{session: &stubSession{exitCode: 5}}
	a, logs := setupAppTest(t, Config{TaskName: "build", MaxParallelism: 2}, sampleProject(t), factory)

	exitCode, err := a.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, 5, exitCode)
	assert.True(t, factory.session.closed)
	assert.Equal(t, "build", factory.opts.TaskName)
	assert.Equal(t, 2, factory.opts.MaxParallelism)
	assert.Contains(t, logs.String(), "App.Run method finished.")
}

func TestApp_RunWrapsSessionErrors(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewContext(t)

	factory := &stubFactory{session: &stubSession{err: errors.New("engine broke")}}
	a, _ := setupAppTest(t, Config{TaskName: "build"}, sampleProject(t), factory)

	_, err := a.Run(ctx)

	assert.EqualError(t, err, "execution failed: engine broke")
	assert.True(t, factory.session.closed)
}

func TestApp_ListTasks(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewContext(t)

	factory := &stubFactory{session: &stubSession{}}
	a, _ := setupAppTest(t, Config{ListTasks: true, LogFormat: "json"}, sampleProject(t), factory)

	var out testutil.SafeBuffer
	a.ListTasks(&out)

	assert.Equal(t, `Build tasks:
- build: Build the app.
- lint

Test tasks:
- test: Run the tests.

Other tasks:
- shell
`, out.String())

	exitCode, err := a.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode)
	assert.False(t, factory.session.closed, "listing tasks must not start a session")
}

func TestApp_HealthHandler(t *testing.T) {
	t.Parallel()

	a, _ := setupAppTest(t, Config{TaskName: "build"}, sampleProject(t), &stubFactory{})
	rec := httptest.NewRecorder()

	a.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("unknown level falls back to warn", func(t *testing.T) {
		t.Parallel()
		var buf testutil.SafeBuffer
		logger := newLogger("chatty", "text", &buf)

		logger.Info("hidden")
		logger.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("json format", func(t *testing.T) {
		t.Parallel()
		var buf testutil.SafeBuffer
		newLogger("DEBUG", "json", &buf).Debug("pulling", "image", "alpine")

		assert.Contains(t, buf.String(), `"msg":"pulling"`)
		assert.Contains(t, buf.String(), `"image":"alpine"`)
	})
}
