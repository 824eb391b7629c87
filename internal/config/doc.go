// Package config defines the format-agnostic project model: containers,
// tasks and the options a task is run with. Concrete loaders, such as the
// HCL one, live in separate packages and produce a *Configuration.
//
// The model is read-only once loaded and is shared freely between the
// graph builder, the planners and the step runner.
package config
