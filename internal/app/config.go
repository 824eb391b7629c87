package app

import (
	"errors"

	"github.com/specialistvlad/stevedore/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl file or directory
	TaskName   string
	ListTasks  bool

	LogFormat    string
	LogLevel     string
	MetricsPort  int
	OtelEndpoint string

	MaxParallelism        int
	SkipPrerequisites     bool
	NoCleanupAfterFailure bool
	NoCleanupAfterSuccess bool
	AdditionalArguments   []string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.TaskName == "" && !cfg.ListTasks {
		return nil, errors.New("a task name is required unless listing tasks")
	}
	if cfg.MaxParallelism < 0 {
		return nil, errors.New("max parallelism cannot be negative")
	}
	if cfg.MetricsPort < 0 {
		return nil, errors.New("metrics port cannot be negative")
	}

	return &cfg, nil
}

// RunOptions translates the settings that apply to every task in a session.
func (c *Config) RunOptions() config.RunOptions {
	opts := config.RunOptions{
		TaskName:                       c.TaskName,
		MaxParallelism:                 c.MaxParallelism,
		SkipPrerequisites:              c.SkipPrerequisites,
		AdditionalTaskCommandArguments: c.AdditionalArguments,
	}
	if c.NoCleanupAfterFailure {
		opts.BehaviourAfterFailure = config.DontCleanup
	}
	if c.NoCleanupAfterSuccess {
		opts.BehaviourAfterSuccess = config.DontCleanup
	}
	return opts
}
