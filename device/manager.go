package device

import (
	"context"
	"sync"

	"github.com/camkit/camkit/core"
	"github.com/camkit/camkit/logging"
)

// ManagerOptions configures the device manager.
type ManagerOptions struct {
	Logger logging.Logger
}

// Manager tracks the current set of devices and routes feed messages to them.
type Manager struct {
	mu      sync.RWMutex
	devices map[string]*Device
	logger  logging.Logger
}

// NewManager creates an empty device manager.
func NewManager(optFns ...func(o *ManagerOptions)) *Manager {
	opts := ManagerOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Manager{
		devices: map[string]*Device{},
		logger:  opts.Logger,
	}
}

// Add registers a device, replacing any previous device with the same name.
func (m *Manager) Add(d *Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices[d.Name()] = d
}

// Get returns the device with the given resource name.
func (m *Manager) Get(name string) (*Device, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.devices[name]
	return d, ok
}

// Devices returns a snapshot of all registered devices keyed by name.
func (m *Manager) Devices() map[string]*Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*Device, len(m.devices))
	for name, d := range m.devices {
		out[name] = d
	}
	return out
}

// HandleEvent routes a feed message to the device it addresses. Messages for
// unknown devices are dropped.
func (m *Manager) HandleEvent(ctx context.Context, msg *core.EventMessage) error {
	if msg == nil || msg.ResourceUpdateName == "" {
		return nil
	}
	d, ok := m.Get(msg.ResourceUpdateName)
	if !ok {
		m.logger.Debug("dropping message for unknown device", "device", msg.ResourceUpdateName)
		return nil
	}
	return d.HandleEventMessage(ctx, msg)
}
