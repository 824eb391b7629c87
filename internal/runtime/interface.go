// Package runtime talks to the container engine on behalf of the step runner.
package runtime

import (
	"context"
	"io"

	"github.com/specialistvlad/stevedore/internal/config"
)

// Client is the subset of container engine operations a task needs.
type Client interface {
	CreateNetwork(ctx context.Context, name string) (string, error)
	DeleteNetwork(ctx context.Context, networkID string) error

	// PullImage makes the image available locally and returns its ID.
	PullImage(ctx context.Context, image string) (string, error)

	CreateContainer(ctx context.Context, opts CreateOptions) (string, error)
	StartContainer(ctx context.Context, containerID string) error
	// StreamOutput copies the container's stdout and stderr until it exits.
	StreamOutput(ctx context.Context, containerID string, stdout, stderr io.Writer) error
	WaitForExit(ctx context.Context, containerID string) (int64, error)
	WaitForHealthy(ctx context.Context, containerID string) error
	StopContainer(ctx context.Context, containerID string) error
	RemoveContainer(ctx context.Context, containerID string) error
}

// CreateOptions describes a container to create.
type CreateOptions struct {
	Name             string
	NetworkID        string
	NetworkAlias     string
	Image            string
	Command          []string
	Entrypoint       []string
	WorkingDirectory string
	Environment      map[string]string
	Ports            []config.PortMapping
	Volumes          []string
	Labels           map[string]string
}
