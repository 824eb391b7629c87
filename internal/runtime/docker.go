package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
)

const (
	stopTimeoutSeconds = 10
	healthPollInterval = 500 * time.Millisecond
)

// ErrUnhealthy is returned by WaitForHealthy when the container's health
// check reports it unhealthy or the container exits first.
var ErrUnhealthy = errors.New("container became unhealthy")

// DockerClient implements Client using the Docker Engine API.
type DockerClient struct {
	client *client.Client
}

var _ Client = (*DockerClient)(nil)

// NewDockerClient connects using the standard environment variables
// (DOCKER_HOST and friends).
func NewDockerClient() (*DockerClient, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return &DockerClient{client: cli}, nil
}

// Close releases the underlying connection.
func (d *DockerClient) Close() error {
	return d.client.Close()
}

func (d *DockerClient) CreateNetwork(ctx context.Context, name string) (string, error) {
	resp, err := d.client.NetworkCreate(ctx, name, network.CreateOptions{Driver: "bridge"})
	if err != nil {
		return "", fmt.Errorf("failed to create network %s: %w", name, err)
	}
	return resp.ID, nil
}

func (d *DockerClient) DeleteNetwork(ctx context.Context, networkID string) error {
	return d.client.NetworkRemove(ctx, networkID)
}

func (d *DockerClient) PullImage(ctx context.Context, ref string) (string, error) {
	// Check if it exists locally first to save time.
	if inspected, err := d.client.ImageInspect(ctx, ref); err == nil {
		return inspected.ID, nil
	}

	reader, err := d.client.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	defer reader.Close()
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", fmt.Errorf("failed to read pull progress for %s: %w", ref, err)
	}

	inspected, err := d.client.ImageInspect(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("image %s not available after pull: %w", ref, err)
	}
	return inspected.ID, nil
}

func (d *DockerClient) CreateContainer(ctx context.Context, opts CreateOptions) (string, error) {
	exposed, bindings, err := portBindings(opts)
	if err != nil {
		return "", err
	}

	containerConfig := &container.Config{
		Image:        opts.Image,
		Cmd:          opts.Command,
		Entrypoint:   opts.Entrypoint,
		WorkingDir:   opts.WorkingDirectory,
		Env:          mapToEnvList(opts.Environment),
		ExposedPorts: exposed,
		Labels:       opts.Labels,
		AttachStdout: true,
		AttachStderr: true,
	}
	hostConfig := &container.HostConfig{
		Binds:        opts.Volumes,
		PortBindings: bindings,
	}
	networkingConfig := &network.NetworkingConfig{
		EndpointsConfig: map[string]*network.EndpointSettings{
			opts.NetworkID: {Aliases: []string{opts.NetworkAlias}},
		},
	}

	resp, err := d.client.ContainerCreate(ctx, containerConfig, hostConfig, networkingConfig, nil, opts.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}
	return resp.ID, nil
}

func (d *DockerClient) StartContainer(ctx context.Context, containerID string) error {
	return d.client.ContainerStart(ctx, containerID, container.StartOptions{})
}

func (d *DockerClient) StreamOutput(ctx context.Context, containerID string, stdout, stderr io.Writer) error {
	reader, err := d.client.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to attach to container output: %w", err)
	}
	defer reader.Close()

	_, err = stdcopy.StdCopy(stdout, stderr, reader)
	return err
}

func (d *DockerClient) WaitForExit(ctx context.Context, containerID string) (int64, error) {
	statusCh, errCh := d.client.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)

	select {
	case err := <-errCh:
		return -1, err
	case status := <-statusCh:
		if status.Error != nil {
			return status.StatusCode, fmt.Errorf("%s", status.Error.Message)
		}
		return status.StatusCode, nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

// WaitForHealthy returns once the container reports healthy. Containers
// without a health check are considered healthy as soon as they run.
func (d *DockerClient) WaitForHealthy(ctx context.Context, containerID string) error {
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()

	for {
		inspected, err := d.client.ContainerInspect(ctx, containerID)
		if err != nil {
			return fmt.Errorf("failed to inspect container: %w", err)
		}
		state := inspected.State
		if state == nil {
			return fmt.Errorf("container %s reported no state", containerID)
		}
		if !state.Running {
			return fmt.Errorf("%w: container exited with code %d", ErrUnhealthy, state.ExitCode)
		}
		if state.Health == nil {
			return nil
		}
		switch state.Health.Status {
		case "healthy":
			return nil
		case "unhealthy":
			return fmt.Errorf("%w: %s", ErrUnhealthy, lastHealthOutput(inspected.State.Health.Log))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (d *DockerClient) StopContainer(ctx context.Context, containerID string) error {
	timeout := stopTimeoutSeconds
	return d.client.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout})
}

func (d *DockerClient) RemoveContainer(ctx context.Context, containerID string) error {
	return d.client.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true, RemoveVolumes: true})
}

func mapToEnvList(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(m))
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, m[k]))
	}
	return env
}

func portBindings(opts CreateOptions) (nat.PortSet, nat.PortMap, error) {
	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for _, mapping := range opts.Ports {
		port, err := nat.NewPort(mapping.Protocol, strconv.Itoa(mapping.ContainerPort))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid port mapping %s: %w", mapping, err)
		}
		exposed[port] = struct{}{}
		bindings[port] = append(bindings[port], nat.PortBinding{HostPort: strconv.Itoa(mapping.LocalPort)})
	}
	return exposed, bindings, nil
}

func lastHealthOutput(log []*container.HealthcheckResult) string {
	if len(log) == 0 {
		return "health check failed"
	}
	return log[len(log)-1].Output
}
