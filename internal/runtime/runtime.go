// Package runtime abstracts the container engine behind the small surface
// this tool needs: launch, enumerate, refresh, stop, and exec. The engine
// owns all authoritative state; callers re-query on every operation and
// never cache container lists.
package runtime

import "context"

// Container is a point-in-time view of one engine container. Created is
// kept as the engine's raw timestamp string because the listing output
// format slices it textually.
type Container struct {
	ID       string
	Name     string
	Hostname string
	Created  string
	Env      []string
	Networks map[string]string // network name -> assigned IP, may be empty right after launch
}

// RunOptions describe a detached container launch.
type RunOptions struct {
	Image      string
	Name       string
	Hostname   string
	Network    string
	Env        []string
	Privileged bool
	AutoRemove bool
	Init       bool
	Tty        bool
	OpenStdin  bool
}

// ExecResult is the outcome of a command executed inside a container.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runtime is the container engine interface.
type Runtime interface {
	// Run launches a detached container and returns its initial state.
	// The returned Networks map may not carry an IP yet.
	Run(ctx context.Context, opts RunOptions) (*Container, error)

	// List returns all running containers.
	List(ctx context.Context) ([]*Container, error)

	// Reload refreshes the container's metadata in place.
	Reload(ctx context.Context, c *Container) error

	// Stop stops a container by engine ID.
	Stop(ctx context.Context, id string) error

	// Exec runs a command inside a running container.
	Exec(ctx context.Context, id string, argv []string) (*ExecResult, error)

	// Name identifies the runtime implementation.
	Name() string
}
