package config

import (
	"fmt"
	"sort"
)

// Configuration is the unified representation of a project.
type Configuration struct {
	ProjectName string
	Containers  map[string]*Container
	Tasks       map[string]*Task
}

// NewConfiguration returns an empty, ready to populate Configuration.
func NewConfiguration(projectName string) *Configuration {
	return &Configuration{
		ProjectName: projectName,
		Containers:  make(map[string]*Container),
		Tasks:       make(map[string]*Task),
	}
}

// Container is a single execution unit backed by a container image.
type Container struct {
	Name             string
	Image            string
	Command          *Command
	Entrypoint       *Command
	WorkingDirectory string
	Environment      map[string]string
	Ports            []PortMapping
	Volumes          []string
	Dependencies     []string
}

// Task is a named unit of work. A task may run one container, start other
// containers alongside it, and require other tasks to run first.
type Task struct {
	Name          string
	Description   string
	Group         string
	Run           *TaskRunConfiguration
	Dependencies  []string
	Prerequisites []string
}

// TaskRunConfiguration names the container a task runs and the overrides
// applied to it for this task only.
type TaskRunConfiguration struct {
	Container        string
	Command          *Command
	Entrypoint       *Command
	Environment      map[string]string
	Ports            []PortMapping
	WorkingDirectory string
}

// AddContainer registers a container, rejecting duplicate names.
func (c *Configuration) AddContainer(container *Container) error {
	if _, exists := c.Containers[container.Name]; exists {
		return fmt.Errorf("the container '%s' is defined more than once", container.Name)
	}
	c.Containers[container.Name] = container
	return nil
}

// AddTask registers a task, rejecting duplicate names.
func (c *Configuration) AddTask(task *Task) error {
	if _, exists := c.Tasks[task.Name]; exists {
		return fmt.Errorf("the task '%s' is defined more than once", task.Name)
	}
	c.Tasks[task.Name] = task
	return nil
}

// SortedTaskNames returns every task name in lexical order.
func (c *Configuration) SortedTaskNames() []string {
	names := make([]string, 0, len(c.Tasks))
	for name := range c.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
