package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/graph"
	"github.com/specialistvlad/stevedore/internal/taskorder"
	"github.com/specialistvlad/stevedore/internal/testutil"
)

type recordingRunner struct {
	exitCodes map[string]int
	err       error
	ran       []string
	args      map[string][]string
}

func (r *recordingRunner) Run(_ context.Context, _ *config.Configuration, task *config.Task, opts config.RunOptions) (int, error) {
	r.ran = append(r.ran, task.Name)
	if r.args == nil {
		r.args = make(map[string][]string)
	}
	r.args[task.Name] = opts.AdditionalTaskCommandArguments
	return r.exitCodes[task.Name], r.err
}

func sequenceProject(t *testing.T) *config.Configuration {
	t.Helper()
	cfg := config.NewConfiguration("proj")
	require.NoError(t, cfg.AddContainer(&config.Container{Name: "app", Image: "alpine"}))
	run := &config.TaskRunConfiguration{Container: "app"}
	require.NoError(t, cfg.AddTask(&config.Task{Name: "setup", Run: run}))
	require.NoError(t, cfg.AddTask(&config.Task{Name: "group", Prerequisites: []string{"setup"}}))
	require.NoError(t, cfg.AddTask(&config.Task{Name: "lint", Run: run}))
	require.NoError(t, cfg.AddTask(&config.Task{Name: "build", Run: run, Prerequisites: []string{"group", "lint"}}))
	return cfg
}

func TestRunTaskSequence(t *testing.T) {
	t.Parallel()

	t.Run("runs prerequisites first and skips tasks without run", func(t *testing.T) {
		t.Parallel()
		ctx, _ := testutil.NewContext(t)
		runner := &recordingRunner{}

		exitCode, err := RunTaskSequence(ctx, sequenceProject(t), config.RunOptions{
			TaskName:                       "build",
			AdditionalTaskCommandArguments: []string{"-v"},
		}, runner)

		require.NoError(t, err)
		assert.Equal(t, 0, exitCode)
		assert.Equal(t, []string{"setup", "lint", "build"}, runner.ran)
		assert.Nil(t, runner.args["setup"])
		assert.Equal(t, []string{"-v"}, runner.args["build"])
	})

	t.Run("stops at the first failing task", func(t *testing.T) {
		t.Parallel()
		ctx, _ := testutil.NewContext(t)
		runner := &recordingRunner{exitCodes: map[string]int{"lint": 7}}

		exitCode, err := RunTaskSequence(ctx, sequenceProject(t), config.RunOptions{TaskName: "build"}, runner)

		require.NoError(t, err)
		assert.Equal(t, 7, exitCode)
		assert.Equal(t, []string{"setup", "lint"}, runner.ran)
	})

	t.Run("skip prerequisites", func(t *testing.T) {
		t.Parallel()
		ctx, _ := testutil.NewContext(t)
		runner := &recordingRunner{}

		_, err := RunTaskSequence(ctx, sequenceProject(t), config.RunOptions{TaskName: "build", SkipPrerequisites: true}, runner)

		require.NoError(t, err)
		assert.Equal(t, []string{"build"}, runner.ran)
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()
		ctx, _ := testutil.NewContext(t)

		for _, skip := range []bool{false, true} {
			_, err := RunTaskSequence(ctx, sequenceProject(t), config.RunOptions{TaskName: "deploy", SkipPrerequisites: skip}, &recordingRunner{})

			var resolutionErr *taskorder.ResolutionError
			require.ErrorAs(t, err, &resolutionErr)
			assert.Equal(t, "the task 'deploy' does not exist", err.Error())
		}
	})

	t.Run("broken later task fails before any task runs", func(t *testing.T) {
		t.Parallel()
		ctx, _ := testutil.NewContext(t)
		cfg := sequenceProject(t)
		require.NoError(t, cfg.AddContainer(&config.Container{Name: "a", Image: "alpine", Dependencies: []string{"b"}}))
		require.NoError(t, cfg.AddContainer(&config.Container{Name: "b", Image: "alpine", Dependencies: []string{"a"}}))
		require.NoError(t, cfg.AddTask(&config.Task{
			Name:          "main",
			Run:           &config.TaskRunConfiguration{Container: "a"},
			Prerequisites: []string{"setup"},
		}))
		runner := &recordingRunner{}

		_, err := RunTaskSequence(ctx, cfg, config.RunOptions{TaskName: "main"}, runner)

		var resolutionErr *graph.DependencyResolutionFailedError
		require.ErrorAs(t, err, &resolutionErr)
		assert.Equal(t, "There is a dependency cycle in task 'main'. The task unit 'a' depends on 'b', which depends on the task unit 'a'.", resolutionErr.Message)
		assert.Empty(t, runner.ran)
	})

	t.Run("runner errors are returned", func(t *testing.T) {
		t.Parallel()
		ctx, _ := testutil.NewContext(t)
		runner := &recordingRunner{err: errors.New("engine broke")}

		_, err := RunTaskSequence(ctx, sequenceProject(t), config.RunOptions{TaskName: "lint"}, runner)

		assert.EqualError(t, err, "engine broke")
	})
}
