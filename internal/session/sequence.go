package session

import (
	"context"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/ctxlog"
	"github.com/specialistvlad/stevedore/internal/graph"
	"github.com/specialistvlad/stevedore/internal/taskorder"
)

// RunTaskSequence runs opts.TaskName after its prerequisites, stopping at
// the first task that exits non-zero. Tasks without a container to run are
// skipped. Additional command arguments only apply to the requested task.
func RunTaskSequence(ctx context.Context, cfg *config.Configuration, opts config.RunOptions, runner TaskRunner) (int, error) {
	logger := ctxlog.FromContext(ctx)

	tasks, err := tasksToRun(ctx, cfg, opts)
	if err != nil {
		return -1, err
	}
	logger.Debug("Task order resolved.", "count", len(tasks))

	if err := validateTasks(ctx, cfg, tasks); err != nil {
		return -1, err
	}

	for _, task := range tasks {
		if task.Run == nil {
			logger.Info("Task has nothing to run, skipping.", "task", task.Name)
			continue
		}

		taskOpts := opts
		if task.Name != opts.TaskName {
			taskOpts.AdditionalTaskCommandArguments = nil
		}

		exitCode, err := runner.Run(ctx, cfg, task, taskOpts)
		if err != nil {
			return -1, err
		}
		if exitCode != 0 {
			if task.Name != opts.TaskName {
				logger.Warn("Prerequisite task failed, not running remaining tasks.", "task", task.Name, "exitCode", exitCode)
			}
			return exitCode, nil
		}
	}

	return 0, nil
}

func tasksToRun(ctx context.Context, cfg *config.Configuration, opts config.RunOptions) ([]*config.Task, error) {
	if !opts.SkipPrerequisites {
		return taskorder.Resolve(ctx, cfg, opts.TaskName)
	}

	task, ok := cfg.Tasks[opts.TaskName]
	if !ok {
		// Resolve produces the standard error for unknown tasks.
		return taskorder.Resolve(ctx, cfg, opts.TaskName)
	}
	return []*config.Task{task}, nil
}

// validateTasks builds the unit graph of every task up front so a broken
// task later in the sequence fails before any container is touched.
func validateTasks(ctx context.Context, cfg *config.Configuration, tasks []*config.Task) error {
	for _, task := range tasks {
		if task.Run == nil {
			continue
		}
		if _, err := graph.Build(ctx, task, cfg.Containers, graph.TaskCommandResolver{}); err != nil {
			return err
		}
	}
	return nil
}
