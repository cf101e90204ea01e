package runtime

import (
	"context"
	"fmt"
	"sync"
)

// mockCreated is the engine-style timestamp stamped on mock containers.
const mockCreated = "2022-04-06T12:47:31.747842357Z"

// Call records one method invocation on the mock.
type Call struct {
	Method string
	Args   []any
}

// MockRuntime is an in-memory Runtime for tests. It records every call,
// supports injected per-method errors, and can delay IP assignment to
// simulate asynchronous container startup.
type MockRuntime struct {
	mu sync.Mutex

	containers map[string]*Container
	CallLog    []Call
	errs       map[string]error
	execs      map[string]*ExecResult

	// RunIPs maps network name to the IP assigned to containers launched
	// via Run. ReloadsUntilIP defers that assignment until the container
	// has been reloaded that many times.
	RunIPs         map[string]string
	ReloadsUntilIP int

	reloads map[string]int
	nextID  int
}

// NewMockRuntime creates an empty mock.
func NewMockRuntime() *MockRuntime {
	return &MockRuntime{
		containers: make(map[string]*Container),
		errs:       make(map[string]error),
		execs:      make(map[string]*ExecResult),
		reloads:    make(map[string]int),
	}
}

// SetError makes the named method return err.
func (m *MockRuntime) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[method] = err
}

// SetExecResult sets the result returned by Exec for a container ID.
func (m *MockRuntime) SetExecResult(id string, result *ExecResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execs[id] = result
}

// AddContainer registers a pre-existing container.
func (m *MockRuntime) AddContainer(c *Container) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Networks == nil {
		c.Networks = map[string]string{}
	}
	if c.Created == "" {
		c.Created = mockCreated
	}
	m.containers[c.ID] = c
}

// GetCalls returns every recorded call.
func (m *MockRuntime) GetCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.CallLog...)
}

// GetCallsFor returns the recorded calls for one method.
func (m *MockRuntime) GetCallsFor(method string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []Call
	for _, call := range m.CallLog {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// Reset clears containers, calls, and injected behavior.
func (m *MockRuntime) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.containers = make(map[string]*Container)
	m.CallLog = nil
	m.errs = make(map[string]error)
	m.execs = make(map[string]*ExecResult)
	m.reloads = make(map[string]int)
}

// Name identifies the runtime implementation.
func (m *MockRuntime) Name() string {
	return "mock"
}

// Run registers a new container built from opts. The container gets an IP
// from RunIPs immediately unless ReloadsUntilIP is positive.
func (m *MockRuntime) Run(ctx context.Context, opts RunOptions) (*Container, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Run", opts)
	if err := m.errs["Run"]; err != nil {
		return nil, err
	}

	m.nextID++
	c := &Container{
		ID:       fmt.Sprintf("mock-%d", m.nextID),
		Name:     opts.Name,
		Hostname: opts.Hostname,
		Created:  mockCreated,
		Env:      append([]string(nil), opts.Env...),
		Networks: map[string]string{},
	}
	if opts.Network != "" {
		c.Networks[opts.Network] = ""
	}
	if m.ReloadsUntilIP == 0 {
		m.assignIPs(c)
	}

	m.containers[c.ID] = c
	return copyContainer(c), nil
}

// List returns all registered containers.
func (m *MockRuntime) List(ctx context.Context) ([]*Container, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("List")
	if err := m.errs["List"]; err != nil {
		return nil, err
	}

	containers := make([]*Container, 0, len(m.containers))
	for _, c := range m.containers {
		containers = append(containers, copyContainer(c))
	}
	return containers, nil
}

// Reload refreshes c from the mock's state, applying deferred IPs once the
// container has been reloaded ReloadsUntilIP times.
func (m *MockRuntime) Reload(ctx context.Context, c *Container) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Reload", c.ID)
	if err := m.errs["Reload"]; err != nil {
		return err
	}

	stored, ok := m.containers[c.ID]
	if !ok {
		return fmt.Errorf("no such container: %s", c.ID)
	}

	m.reloads[c.ID]++
	if m.reloads[c.ID] >= m.ReloadsUntilIP {
		m.assignIPs(stored)
	}

	*c = *copyContainer(stored)
	return nil
}

// Stop removes the container, matching an auto-remove engine setup where a
// stopped container no longer appears in listings.
func (m *MockRuntime) Stop(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Stop", id)
	if err := m.errs["Stop"]; err != nil {
		return err
	}

	if _, ok := m.containers[id]; !ok {
		return fmt.Errorf("no such container: %s", id)
	}
	delete(m.containers, id)
	return nil
}

// Exec returns the configured result for the container, or a zero result.
func (m *MockRuntime) Exec(ctx context.Context, id string, argv []string) (*ExecResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Exec", id, argv)
	if err := m.errs["Exec"]; err != nil {
		return nil, err
	}

	if result, ok := m.execs[id]; ok {
		return result, nil
	}
	return &ExecResult{}, nil
}

func (m *MockRuntime) assignIPs(c *Container) {
	for netName, ip := range m.RunIPs {
		if _, attached := c.Networks[netName]; attached {
			c.Networks[netName] = ip
		}
	}
}

func (m *MockRuntime) record(method string, args ...any) {
	m.CallLog = append(m.CallLog, Call{Method: method, Args: args})
}

func copyContainer(c *Container) *Container {
	dup := *c
	dup.Env = append([]string(nil), c.Env...)
	dup.Networks = make(map[string]string, len(c.Networks))
	for k, v := range c.Networks {
		dup.Networks[k] = v
	}
	return &dup
}
