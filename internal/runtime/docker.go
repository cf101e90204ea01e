package runtime

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/cloudsim-labs/fireprox-ctl/internal/logging"
)

// DockerRuntime implements Runtime against the Docker Engine API.
type DockerRuntime struct {
	client client.APIClient
}

// NewDockerRuntime creates a runtime backed by the local Docker Engine,
// configured from the environment. The caller owns Close.
func NewDockerRuntime() (*DockerRuntime, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	return &DockerRuntime{client: cli}, nil
}

// NewDockerRuntimeWithClient wraps an existing engine client. Used by tests
// that inject a fake APIClient.
func NewDockerRuntimeWithClient(cli client.APIClient) *DockerRuntime {
	return &DockerRuntime{client: cli}
}

// Close releases the engine client.
func (d *DockerRuntime) Close() error {
	return d.client.Close()
}

// Name identifies the runtime implementation.
func (d *DockerRuntime) Name() string {
	return "docker"
}

// Run launches a detached container per opts and returns its inspected
// state. The network endpoint is requested at create time so the engine
// assigns the address on the named network, not the default bridge.
func (d *DockerRuntime) Run(ctx context.Context, opts RunOptions) (*Container, error) {
	initProcess := opts.Init

	cfg := &container.Config{
		Image:     opts.Image,
		Hostname:  opts.Hostname,
		Env:       opts.Env,
		Tty:       opts.Tty,
		OpenStdin: opts.OpenStdin,
	}

	hostCfg := &container.HostConfig{
		Privileged: opts.Privileged,
		AutoRemove: opts.AutoRemove,
		Init:       &initProcess,
	}

	var netCfg *network.NetworkingConfig
	if opts.Network != "" {
		netCfg = &network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				opts.Network: {},
			},
		}
	}

	resp, err := d.client.ContainerCreate(ctx, cfg, hostCfg, netCfg, nil, opts.Name)
	if err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}

	if err := d.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("start container: %w", err)
	}

	return d.inspect(ctx, resp.ID)
}

// List returns all running containers, inspected for full metadata.
// Containers that disappear between enumeration and inspection are skipped.
func (d *DockerRuntime) List(ctx context.Context) ([]*Container, error) {
	summaries, err := d.client.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	containers := make([]*Container, 0, len(summaries))
	for _, summary := range summaries {
		c, err := d.inspect(ctx, summary.ID)
		if err != nil {
			logging.Debug("skipping container that vanished during list", "id", summary.ID, "error", err)
			continue
		}
		containers = append(containers, c)
	}

	return containers, nil
}

// Reload refreshes the container's metadata in place.
func (d *DockerRuntime) Reload(ctx context.Context, c *Container) error {
	fresh, err := d.inspect(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *fresh
	return nil
}

// Stop stops a container with the engine's default grace period.
func (d *DockerRuntime) Stop(ctx context.Context, id string) error {
	if err := d.client.ContainerStop(ctx, id, container.StopOptions{}); err != nil {
		return fmt.Errorf("stop container: %w", err)
	}
	return nil
}

// Exec runs argv inside the container, capturing its output streams.
func (d *DockerRuntime) Exec(ctx context.Context, id string, argv []string) (*ExecResult, error) {
	created, err := d.client.ContainerExecCreate(ctx, id, container.ExecOptions{
		Cmd:          argv,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create exec: %w", err)
	}

	attach, err := d.client.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return nil, fmt.Errorf("attach exec: %w", err)
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader); err != nil {
		return nil, fmt.Errorf("read exec output: %w", err)
	}

	info, err := d.client.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return nil, fmt.Errorf("inspect exec: %w", err)
	}

	return &ExecResult{
		ExitCode: info.ExitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

func (d *DockerRuntime) inspect(ctx context.Context, id string) (*Container, error) {
	info, err := d.client.ContainerInspect(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("inspect container: %w", err)
	}

	c := &Container{
		ID:       info.ID,
		Name:     strings.TrimPrefix(info.Name, "/"),
		Created:  info.Created,
		Networks: map[string]string{},
	}

	if info.Config != nil {
		c.Hostname = info.Config.Hostname
		c.Env = info.Config.Env
	}

	if info.NetworkSettings != nil {
		for name, endpoint := range info.NetworkSettings.Networks {
			if endpoint != nil {
				c.Networks[name] = endpoint.IPAddress
			}
		}
	}

	return c, nil
}
