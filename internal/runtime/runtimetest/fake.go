// Package runtimetest provides an in-memory runtime.Client for tests.
package runtimetest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/specialistvlad/stevedore/internal/runtime"
)

// Client is a fake runtime.Client. Container IDs are "<alias>-id" and the
// network ID is "network-id". Failures are keyed by image or container alias.
type Client struct {
	mu sync.Mutex

	FailNetworkCreate bool
	FailNetworkDelete bool
	FailPull          map[string]error
	FailCreate        map[string]error
	FailStart         map[string]error
	FailHealthy       map[string]error
	FailStop          map[string]error
	FailRemove        map[string]error
	ExitCodes         map[string]int64
	Output            map[string]string

	// BlockUntilCancelled makes WaitForExit wait for its context.
	BlockUntilCancelled bool

	calls      []string
	created    map[string]runtime.CreateOptions
	idToAlias  map[string]string
	containers map[string]bool
	networks   map[string]bool
}

var _ runtime.Client = (*Client)(nil)

func NewClient() *Client {
	return &Client{
		created:    make(map[string]runtime.CreateOptions),
		idToAlias:  make(map[string]string),
		containers: make(map[string]bool),
		networks:   make(map[string]bool),
	}
}

// Calls returns every call made so far, in order.
func (c *Client) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// Created returns the options a container was created with.
func (c *Client) Created(alias string) (runtime.CreateOptions, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	opts, ok := c.created[alias]
	return opts, ok
}

// Leftovers lists containers and networks that still exist.
func (c *Client) Leftovers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for id := range c.containers {
		out = append(out, "container "+id)
	}
	for id := range c.networks {
		out = append(out, "network "+id)
	}
	return out
}

func (c *Client) record(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
}

func (c *Client) alias(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idToAlias[id]
}

func (c *Client) CreateNetwork(_ context.Context, name string) (string, error) {
	c.record("create network %s", name)
	if c.FailNetworkCreate {
		return "", fmt.Errorf("network create refused")
	}
	c.mu.Lock()
	c.networks["network-id"] = true
	c.mu.Unlock()
	return "network-id", nil
}

func (c *Client) DeleteNetwork(_ context.Context, networkID string) error {
	c.record("delete network %s", networkID)
	if c.FailNetworkDelete {
		return fmt.Errorf("network delete refused")
	}
	c.mu.Lock()
	delete(c.networks, networkID)
	c.mu.Unlock()
	return nil
}

func (c *Client) PullImage(_ context.Context, image string) (string, error) {
	c.record("pull %s", image)
	if err := c.FailPull[image]; err != nil {
		return "", err
	}
	return "sha-" + image, nil
}

func (c *Client) CreateContainer(_ context.Context, opts runtime.CreateOptions) (string, error) {
	c.record("create %s", opts.NetworkAlias)
	if err := c.FailCreate[opts.NetworkAlias]; err != nil {
		return "", err
	}
	id := opts.NetworkAlias + "-id"
	c.mu.Lock()
	c.created[opts.NetworkAlias] = opts
	c.idToAlias[id] = opts.NetworkAlias
	c.containers[id] = true
	c.mu.Unlock()
	return id, nil
}

func (c *Client) StartContainer(_ context.Context, containerID string) error {
	alias := c.alias(containerID)
	c.record("start %s", alias)
	return c.FailStart[alias]
}

func (c *Client) StreamOutput(_ context.Context, containerID string, stdout, _ io.Writer) error {
	alias := c.alias(containerID)
	if out, ok := c.Output[alias]; ok {
		_, err := io.WriteString(stdout, out)
		return err
	}
	return nil
}

func (c *Client) WaitForExit(ctx context.Context, containerID string) (int64, error) {
	alias := c.alias(containerID)
	c.record("wait %s", alias)
	if c.BlockUntilCancelled {
		<-ctx.Done()
		return -1, ctx.Err()
	}
	return c.ExitCodes[alias], nil
}

func (c *Client) WaitForHealthy(_ context.Context, containerID string) error {
	alias := c.alias(containerID)
	c.record("healthy %s", alias)
	return c.FailHealthy[alias]
}

func (c *Client) StopContainer(_ context.Context, containerID string) error {
	alias := c.alias(containerID)
	c.record("stop %s", alias)
	return c.FailStop[alias]
}

func (c *Client) RemoveContainer(_ context.Context, containerID string) error {
	alias := c.alias(containerID)
	c.record("remove %s", alias)
	if err := c.FailRemove[alias]; err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.containers, containerID)
	c.mu.Unlock()
	return nil
}
