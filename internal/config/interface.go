package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads every configuration file found at the given paths and
	// merges them into a single Configuration.
	Load(ctx context.Context, paths ...string) (*Configuration, error)
}
