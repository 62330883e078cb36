package node

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gridnode/supervisor/internal/config"
	"github.com/gridnode/supervisor/internal/observer"
	"github.com/gridnode/supervisor/internal/supervisor"
	"github.com/gridnode/supervisor/pkg/metrics"
)

// Manager owns every Supervisor this node hosts, keyed by server id. It
// is the node-local registry the admin HTTP surface goes through to
// reach a particular server's Supervisor.
type Manager struct {
	logger  *slog.Logger
	cfg     *config.NodeConfig
	bus     observer.Bus
	metrics *metrics.MetricsRegistry

	activator       supervisor.Activator
	registrySession supervisor.RegistrySession
	userMapper      supervisor.UserAccountMapper
	adapterRegistry supervisor.AdapterRegistry
	patcher         supervisor.Patcher

	mu          sync.RWMutex
	supervisors map[string]*supervisor.Supervisor
}

// NewManager builds a Manager sharing one set of collaborators across
// every Supervisor it creates.
func NewManager(logger *slog.Logger, cfg *config.NodeConfig, bus observer.Bus, registry *metrics.MetricsRegistry) (*Manager, error) {
	adapterRegistry, err := NewAdapterRegistry(1024)
	if err != nil {
		return nil, fmt.Errorf("building adapter registry: %w", err)
	}
	return &Manager{
		logger:          logger,
		cfg:             cfg,
		bus:             bus,
		metrics:         registry,
		activator:       NewOSActivator(logger),
		registrySession: SingleNodeRegistrySession{},
		userMapper:      OSUserMapper{},
		adapterRegistry: adapterRegistry,
		patcher:         LocalPatcher{},
		supervisors:     make(map[string]*supervisor.Supervisor),
	}, nil
}

// Get returns the Supervisor for id, creating it (Inactive, no
// descriptor) on first reference.
func (m *Manager) Get(id string) *supervisor.Supervisor {
	m.mu.RLock()
	s, ok := m.supervisors[id]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.supervisors[id]; ok {
		return s
	}
	s = supervisor.New(id, supervisor.Deps{
		Logger:            m.logger,
		SupervisorMetrics: m.metrics.Supervisor(),
		ProcessMetrics:    m.metrics.Process(),
		Bus:               m.bus,
		NodeConfig:        m.cfg,
		Activator:         m.activator,
		RegistrySession:   m.registrySession,
		UserMapper:        m.userMapper,
		AdapterRegistry:   m.adapterRegistry,
		Patcher:           m.patcher,
	})
	m.supervisors[id] = s
	if m.bus != nil {
		_ = m.bus.Publish(*observer.NewEvent(observer.EventTypeServerAdded, id, observer.EventSourceSupervisor))
	}
	return s
}

// Lookup returns the Supervisor for id without creating one.
func (m *Manager) Lookup(id string) (*supervisor.Supervisor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.supervisors[id]
	return s, ok
}

// Remove drops id from the registry once its Supervisor has reached
// Destroyed, so a future Get starts a fresh state machine.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.supervisors, id)
	if m.bus != nil {
		_ = m.bus.Publish(*observer.NewEvent(observer.EventTypeServerRemoved, id, observer.EventSourceSupervisor))
	}
}

// List returns the ids of every server this node currently hosts.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.supervisors))
	for id := range m.supervisors {
		ids = append(ids, id)
	}
	return ids
}
