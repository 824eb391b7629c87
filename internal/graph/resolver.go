package graph

import (
	"strings"

	"github.com/specialistvlad/stevedore/internal/config"
)

// CommandResolver decides which command and entrypoint a container runs
// with in the context of a task.
type CommandResolver interface {
	ResolveCommand(container *config.Container, task *config.Task) *config.Command
	ResolveEntrypoint(container *config.Container, task *config.Task) *config.Command
}

// TaskCommandResolver applies the task's run overrides to the task's own
// container and leaves every other container untouched. Additional
// arguments are appended to the task container's command.
type TaskCommandResolver struct {
	AdditionalArguments []string
}

func (r TaskCommandResolver) ResolveCommand(container *config.Container, task *config.Task) *config.Command {
	if !runsContainer(task, container) {
		return container.Command
	}

	command := container.Command
	if task.Run.Command != nil {
		command = task.Run.Command
	}
	if len(r.AdditionalArguments) == 0 {
		return command
	}
	if command == nil {
		return &config.Command{
			Original: strings.Join(r.AdditionalArguments, " "),
			Parsed:   append([]string(nil), r.AdditionalArguments...),
		}
	}
	return command.Append(r.AdditionalArguments)
}

func (r TaskCommandResolver) ResolveEntrypoint(container *config.Container, task *config.Task) *config.Command {
	if runsContainer(task, container) && task.Run.Entrypoint != nil {
		return task.Run.Entrypoint
	}
	return container.Entrypoint
}

func runsContainer(task *config.Task, container *config.Container) bool {
	return task.Run != nil && task.Run.Container == container.Name
}
