package docker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
)

// defaultPingTimeout bounds the daemon reachability probe. Docker Desktop
// on macOS answers noticeably slower than a native Linux daemon.
const defaultPingTimeout = 5 * time.Second

var (
	// errUnsupportedOS is returned when no socket probing strategy exists
	// for the current platform.
	errUnsupportedOS = errors.New("operating system is not supported")
	// errDaemonNotFound is returned when no Docker socket could be located.
	errDaemonNotFound = errors.New("docker socket not found, is Docker running?")
)

// Client wraps the Docker Engine SDK client with automatic socket detection.
type Client struct {
	inner *client.Client
}

// NewClient creates a Docker client. DOCKER_HOST wins when set, otherwise
// the platform's default socket locations are probed.
func NewClient() (*Client, error) {
	host := os.Getenv("DOCKER_HOST")
	if host == "" {
		detected, err := detectDockerHost()
		if err != nil {
			return nil, err
		}

		host = detected
	}

	inner, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create docker client for %s: %w", host, err)
	}

	return &Client{
		inner: inner,
	}, nil
}

// Ping verifies the Docker daemon answers within the probe timeout.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return fmt.Errorf("docker daemon is not responding: %w", err)
	}

	return nil
}

// HasImage reports whether the image is already present on the daemon.
func (c *Client) HasImage(ctx context.Context, imageName string) (bool, error) {
	images, err := c.inner.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", imageName)),
	})
	if err != nil {
		return false, fmt.Errorf("list docker images: %w", err)
	}

	return len(images) > 0, nil
}

// Close releases the resources held by the client.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}

	return nil
}

// detectDockerHost probes the platform's known daemon socket locations.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return detectUnixSocket([]string{"/var/run/docker.sock"})
	case "darwin":
		// Newer Docker Desktop versions keep the socket in the user's home
		// directory instead of symlinking /var/run/docker.sock.
		candidates := []string{"/var/run/docker.sock"}
		if homeDir, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, homeDir+"/.docker/run/docker.sock")
		}

		return detectUnixSocket(candidates)
	case "windows":
		// Named pipes do not answer os.Stat, a short dial is the only probe.
		pipePath := `//./pipe/docker_engine`

		conn, err := net.DialTimeout("pipe", pipePath, time.Second)
		if err != nil {
			return "", fmt.Errorf("docker named pipe not found at %s: %w", pipePath, err)
		}

		_ = conn.Close()

		return "npipe://" + pipePath, nil
	default:
		return "", fmt.Errorf("%s: %w", runtime.GOOS, errUnsupportedOS)
	}
}

// detectUnixSocket returns the host URI for the first socket path that exists.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}

	return "", fmt.Errorf("probed %v: %w", paths, errDaemonNotFound)
}
