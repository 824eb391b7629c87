// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/ctxlog"
)

// translateContainer converts the HCL container schema into the agnostic model.
func (l *Loader) translateContainer(ctx context.Context, c *containerBlock) (*config.Container, error) {
	logger := ctxlog.FromContext(ctx).With("container", c.Name)
	logger.Debug("Translating HCL container to internal config model.")

	image := deref(c.Image)
	if image == "" {
		return nil, fmt.Errorf("the container '%s' must have an image", c.Name)
	}

	command, err := config.ParseCommand(deref(c.Command))
	if err != nil {
		return nil, fmt.Errorf("the container '%s' has an invalid command: %w", c.Name, err)
	}
	entrypoint, err := config.ParseCommand(deref(c.Entrypoint))
	if err != nil {
		return nil, fmt.Errorf("the container '%s' has an invalid entrypoint: %w", c.Name, err)
	}
	ports, err := translatePorts(c.Ports)
	if err != nil {
		return nil, fmt.Errorf("the container '%s' has an invalid port: %w", c.Name, err)
	}

	return &config.Container{
		Name:             c.Name,
		Image:            image,
		Command:          command,
		Entrypoint:       entrypoint,
		WorkingDirectory: deref(c.WorkingDirectory),
		Environment:      c.Environment,
		Ports:            ports,
		Volumes:          c.Volumes,
		Dependencies:     c.Dependencies,
	}, nil
}

// translateTask converts the HCL task schema into the agnostic model.
func (l *Loader) translateTask(ctx context.Context, t *taskBlock) (*config.Task, error) {
	logger := ctxlog.FromContext(ctx).With("task", t.Name)
	logger.Debug("Translating HCL task to internal config model.", "has_run", t.Run != nil)

	task := &config.Task{
		Name:          t.Name,
		Description:   deref(t.Description),
		Group:         deref(t.Group),
		Dependencies:  t.Dependencies,
		Prerequisites: t.Prerequisites,
	}
	if t.Run == nil {
		return task, nil
	}

	command, err := config.ParseCommand(deref(t.Run.Command))
	if err != nil {
		return nil, fmt.Errorf("the task '%s' has an invalid command: %w", t.Name, err)
	}
	entrypoint, err := config.ParseCommand(deref(t.Run.Entrypoint))
	if err != nil {
		return nil, fmt.Errorf("the task '%s' has an invalid entrypoint: %w", t.Name, err)
	}
	ports, err := translatePorts(t.Run.Ports)
	if err != nil {
		return nil, fmt.Errorf("the task '%s' has an invalid port: %w", t.Name, err)
	}

	task.Run = &config.TaskRunConfiguration{
		Container:        t.Run.Container,
		Command:          command,
		Entrypoint:       entrypoint,
		Environment:      t.Run.Environment,
		Ports:            ports,
		WorkingDirectory: deref(t.Run.WorkingDirectory),
	}
	return task, nil
}

func translatePorts(values []string) ([]config.PortMapping, error) {
	if len(values) == 0 {
		return nil, nil
	}
	ports := make([]config.PortMapping, 0, len(values))
	for _, value := range values {
		mapping, err := config.ParsePortMapping(value)
		if err != nil {
			return nil, err
		}
		ports = append(ports, mapping)
	}
	return ports, nil
}
