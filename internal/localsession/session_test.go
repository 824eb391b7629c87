package localsession

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/runtime"
	"github.com/specialistvlad/stevedore/internal/runtime/runtimetest"
	"github.com/specialistvlad/stevedore/internal/testutil"
)

type closeCounter struct{ closed int }

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestSession_RunsTaskAgainstRuntime(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewContext(t)

	// --- Arrange ---
	cfg := config.NewConfiguration("proj")
	require.NoError(t, cfg.AddContainer(&config.Container{Name: "app", Image: "alpine"}))
	require.NoError(t, cfg.AddTask(&config.Task{Name: "hello", Run: &config.TaskRunConfiguration{Container: "app"}}))

	client := runtimetest.NewClient()
	client.Output = map[string]string{"app": "hello world\n"}
	closer := &closeCounter{}
	var stdout, console bytes.Buffer
	factory := &SessionFactory{
		Console: &console,
		Stdout:  &stdout,
		NewClient: func() (runtime.Client, io.Closer, error) {
			return client, closer, nil
		},
	}

	// --- Act ---
	s, err := factory.NewSession(ctx, cfg, config.RunOptions{TaskName: "hello", MaxParallelism: 2})
	require.NoError(t, err)
	exitCode, runErr := s.Run(ctx)
	closeErr := s.Close(ctx)

	// --- Assert ---
	require.NoError(t, runErr)
	require.NoError(t, closeErr)
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "hello world\n", stdout.String())
	assert.Contains(t, console.String(), "Running hello...")
	assert.Equal(t, 1, closer.closed)

	opts, ok := client.Created("app")
	require.True(t, ok)
	runID := s.(*Session).RunID()
	assert.Equal(t, "proj-app-"+runID[:8], opts.Name)
}

func TestSessionFactory_ClientError(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewContext(t)

	factory := &SessionFactory{NewClient: func() (runtime.Client, io.Closer, error) {
		return nil, nil, errors.New("cannot connect to the Docker daemon")
	}}

	_, err := factory.NewSession(ctx, config.NewConfiguration("proj"), config.RunOptions{TaskName: "x"})

	assert.EqualError(t, err, "cannot connect to the Docker daemon")
}
