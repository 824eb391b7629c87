package config

import (
	"fmt"
	"strconv"
	"strings"
)

// PortMapping publishes a container port on the host.
type PortMapping struct {
	LocalPort     int
	ContainerPort int
	Protocol      string
}

// ParsePortMapping parses "local:container" with an optional "/protocol"
// suffix, for example "8080:80" or "5353:53/udp".
func ParsePortMapping(value string) (PortMapping, error) {
	ports, protocol, hasProtocol := strings.Cut(value, "/")
	if !hasProtocol {
		protocol = "tcp"
	}
	protocol = strings.ToLower(protocol)
	if protocol != "tcp" && protocol != "udp" && protocol != "sctp" {
		return PortMapping{}, fmt.Errorf("port mapping '%s' has unknown protocol '%s'", value, protocol)
	}

	local, container, ok := strings.Cut(ports, ":")
	if !ok {
		return PortMapping{}, fmt.Errorf("port mapping '%s' must be in the form 'local:container'", value)
	}

	localPort, err := parsePort(local)
	if err != nil {
		return PortMapping{}, fmt.Errorf("port mapping '%s' has an invalid local port: %w", value, err)
	}
	containerPort, err := parsePort(container)
	if err != nil {
		return PortMapping{}, fmt.Errorf("port mapping '%s' has an invalid container port: %w", value, err)
	}

	return PortMapping{LocalPort: localPort, ContainerPort: containerPort, Protocol: protocol}, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%d is out of range", port)
	}
	return port, nil
}

func (p PortMapping) String() string {
	return fmt.Sprintf("%d:%d/%s", p.LocalPort, p.ContainerPort, p.Protocol)
}
