// Package proxy manages the lifecycle of ephemeral reverse-proxy
// endpoints. There is no database: the set of live proxies is
// reconstructed on every operation by enumerating the engine's containers
// and parsing the naming convention out of their metadata.
package proxy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudsim-labs/fireprox-ctl/internal/appid"
	"github.com/cloudsim-labs/fireprox-ctl/internal/config"
	"github.com/cloudsim-labs/fireprox-ctl/internal/errors"
	"github.com/cloudsim-labs/fireprox-ctl/internal/hosts"
	"github.com/cloudsim-labs/fireprox-ctl/internal/logging"
	"github.com/cloudsim-labs/fireprox-ctl/internal/network"
	"github.com/cloudsim-labs/fireprox-ctl/internal/runtime"
)

// TargetEnvVar carries the forwarding target in the container environment.
// It must be the first environment entry: listing recovers the target from
// env position zero.
const TargetEnvVar = "JWAPIGW_TARGET"

// Record is the logical proxy entity, derived from a running container's
// name and metadata. It is immutable for the container's lifetime.
type Record struct {
	ID          string
	Hostname    string
	Target      string
	CreatedAt   string
	ContainerID string
	IP          string
}

// Registry creates, lists, and deletes proxy records against a container
// runtime, keeping the host-resolution table in sync.
type Registry struct {
	rt       runtime.Runtime
	hosts    *hosts.File
	settings *config.Settings
	region   string
}

// NewRegistry wires a registry over a runtime, hosts table, and settings.
func NewRegistry(rt runtime.Runtime, hostsFile *hosts.File, settings *config.Settings, region string) *Registry {
	return &Registry{
		rt:       rt,
		hosts:    hostsFile,
		settings: settings,
		region:   region,
	}
}

// Create launches a proxy forwarding to rawURL's host, waits for the
// container to get an address on the lab network, fixes its default route
// through the lab gateway, and registers the hostname in the hosts table.
func (r *Registry) Create(ctx context.Context, rawURL string) (*Record, error) {
	if rawURL == "" {
		return nil, errors.InvalidInput("please provide a valid URL end-point")
	}

	target, err := targetHost(rawURL)
	if err != nil {
		return nil, err
	}

	id := appid.New()
	hostname := appid.Hostname(id, r.region)

	logging.Debug("launching proxy container",
		"id", id, "hostname", hostname, "target", target, "network", r.settings.Network)

	c, err := r.rt.Run(ctx, runtime.RunOptions{
		Image:      r.settings.Image,
		Name:       hostname,
		Hostname:   hostname,
		Network:    r.settings.Network,
		Env:        []string{TargetEnvVar + "=" + target},
		Privileged: true,
		AutoRemove: true,
		Init:       true,
		Tty:        true,
		OpenStdin:  true,
	})
	if err != nil {
		return nil, errors.RuntimeUnavailable(err)
	}

	ip, err := r.awaitIP(ctx, c)
	if err != nil {
		return nil, err
	}
	logging.Debug("container address assigned", "id", id, "ip", ip)

	// Point the container's default route back through the lab gateway so
	// return traffic reaches the host fabric. The container keeps working
	// for same-subnet peers even if this fails, so failures are warnings.
	for _, argv := range [][]string{
		{"ip", "route", "del", "default"},
		{"ip", "route", "add", "default", "via", r.settings.Gateway},
	} {
		if _, err := r.rt.Exec(ctx, c.ID, argv); err != nil {
			logging.Warn("routing fix failed", "command", strings.Join(argv, " "), "error", err)
		}
	}

	if err := r.hosts.Add(hostname, ip); err != nil {
		return nil, fmt.Errorf("register hostname: %w", err)
	}

	return &Record{
		ID:          id,
		Hostname:    hostname,
		Target:      target,
		CreatedAt:   deriveCreatedAt(c.Created),
		ContainerID: c.ID,
		IP:          ip,
	}, nil
}

// List reconstructs all live proxy records from the engine's running
// containers. Ordering follows the engine's enumeration order.
func (r *Registry) List(ctx context.Context) ([]Record, error) {
	containers, err := r.rt.List(ctx)
	if err != nil {
		return nil, errors.RuntimeUnavailable(err)
	}

	var records []Record
	for _, c := range containers {
		id, ok := appid.Parse(c.Name)
		if !ok {
			continue
		}

		ip, _ := network.ContainerIP(c, r.settings.Network)
		records = append(records, Record{
			ID:          id,
			Hostname:    c.Name,
			Target:      targetFromEnv(c.Env),
			CreatedAt:   deriveCreatedAt(c.Created),
			ContainerID: c.ID,
			IP:          ip,
		})
	}

	return records, nil
}

// Delete stops the first container whose name contains id as a substring
// and drops its hosts-table entry. A missing proxy is a normal negative
// result, not an error. The substring match is historical behavior: an id
// that is a substring of another proxy's hostname can select the wrong
// container.
func (r *Registry) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, errors.InvalidInput("please provide a valid API ID")
	}

	containers, err := r.rt.List(ctx)
	if err != nil {
		return false, errors.RuntimeUnavailable(err)
	}

	for _, c := range containers {
		if !strings.Contains(c.Name, id) {
			continue
		}

		logging.Debug("stopping proxy container", "id", id, "container", c.ID)
		if err := r.rt.Stop(ctx, c.ID); err != nil {
			return false, fmt.Errorf("stop container: %w", err)
		}

		hostname := c.Hostname
		if hostname == "" {
			hostname = c.Name
		}
		if err := r.hosts.Remove(hostname); err != nil {
			return false, fmt.Errorf("deregister hostname: %w", err)
		}
		return true, nil
	}

	return false, nil
}

// Update is not supported in this deployment mode: records are immutable
// for their lifetime. Recreate the proxy instead.
func (r *Registry) Update(ctx context.Context, id, rawURL string) error {
	return errors.Unsupported("update")
}

// awaitIP polls the container until the lab network assigns it an address,
// reloading metadata between attempts. Attachment that has not happened
// yet and an endpoint with no address are both treated as "not ready".
func (r *Registry) awaitIP(ctx context.Context, c *runtime.Container) (string, error) {
	deadline := time.Now().Add(r.settings.PollTimeout)

	for {
		if ip, ok := network.ContainerIP(c, r.settings.Network); ok {
			return ip, nil
		}

		if time.Now().After(deadline) {
			return "", errors.Timeout(fmt.Sprintf(
				"container %s got no address on network %s within %s",
				c.Name, r.settings.Network, r.settings.PollTimeout))
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.settings.PollInterval):
		}

		if err := r.rt.Reload(ctx, c); err != nil {
			return "", fmt.Errorf("reload container: %w", err)
		}
	}
}

// targetHost extracts the host[:port] portion of a scheme://host/... URL:
// the third slash-delimited segment.
func targetHost(rawURL string) (string, error) {
	parts := strings.Split(rawURL, "/")
	if len(parts) < 3 || parts[2] == "" {
		return "", errors.InvalidInput(fmt.Sprintf("invalid URL end-point: %s", rawURL))
	}
	return parts[2], nil
}

// targetFromEnv recovers the forwarding target from the first environment
// entry, which by convention is TargetEnvVar.
func targetFromEnv(env []string) string {
	if len(env) == 0 {
		return ""
	}
	_, value, _ := strings.Cut(env[0], "=")
	return value
}

// deriveCreatedAt turns the engine's raw timestamp
// (2022-04-06T12:47:31.747842357Z) into the listing form
// (2022-04-06 12:47:31-00:00). The transformation is textual and lossy;
// the fixed -00:00 marker is part of the listing wire format.
func deriveCreatedAt(created string) string {
	day, rest, found := strings.Cut(created, "T")
	if !found {
		return created
	}
	timePart, _, _ := strings.Cut(rest, ".")
	return day + " " + timePart + "-00:00"
}
