package supervisor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gridnode/supervisor/internal/config"
	"github.com/gridnode/supervisor/internal/observer"
	"github.com/gridnode/supervisor/pkg/metrics"
)

// Supervisor owns one managed server end-to-end: the internal state
// machine, the five-slot command scheduler, and the collaborators needed
// to reconcile descriptor changes and bridge the Activator (§1, §5).
//
// All internal state is mutated only under mu. Suspension points
// (command execute bodies and collaborator calls) run outside the lock
// per §5; cond wakes goroutines waiting out an in-flight Activating
// transition.
type Supervisor struct {
	mu   sync.Mutex
	cond *sync.Cond

	id     string
	logger *slog.Logger

	supMetrics  *metrics.SupervisorMetrics
	procMetrics *metrics.ProcessMetrics
	bus         observer.Bus

	nodeCfg *config.NodeConfig

	activator       Activator
	registrySession RegistrySession
	userMapper      UserAccountMapper
	adapterRegistry AdapterRegistry
	patcher         Patcher

	state InternalState

	descriptor *Descriptor

	activation         ActivationMode
	previousActivation ActivationMode
	hasFailureTime     bool
	failureTime        time.Time

	adapters               map[string]AdapterHandle
	serverLifetimeAdapters map[string]bool
	activatedAdapters      map[string]bool

	pid                 int
	processProxySet     bool
	waitForReplication  bool
	pendingWipe         bool
	loadFailureOnDestroy bool

	slots [numCommandKinds]*command

	// pending{Start,Stop,Destroy} hold the in-flight command for a kind
	// once the scheduler has dispatched it (and cleared its slot), so
	// entry-effect handlers in transitions.go can still reach its
	// callback queue.
	pendingStart   *command
	pendingStop    *command
	pendingDestroy *command

	activationTimer   *time.Timer
	deactivationTimer *time.Timer
	delayedTimer      *time.Timer

	patchWaiters []chan error

	// reenableLimiter throttles how often armDelayedStartLocked is
	// allowed to re-arm a disabled-on-failure auto re-enable timer, so a
	// server that flaps (fails immediately every time it's re-enabled)
	// backs off instead of busy-looping the disable/re-enable cycle
	// (§4.8 supplement).
	reenableLimiter *rate.Limiter

	destroyed bool
}

// Deps bundles the external collaborators a Supervisor needs; all fields
// are optional for tests, which may supply fakes or leave them nil.
type Deps struct {
	Logger          *slog.Logger
	SupervisorMetrics *metrics.SupervisorMetrics
	ProcessMetrics  *metrics.ProcessMetrics
	Bus             observer.Bus
	NodeConfig      *config.NodeConfig
	Activator       Activator
	RegistrySession RegistrySession
	UserMapper      UserAccountMapper
	AdapterRegistry AdapterRegistry
	Patcher         Patcher
}

// New creates a Supervisor for server id, initially Inactive with no
// descriptor loaded.
func New(id string, deps Deps) *Supervisor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Supervisor{
		id:                     id,
		logger:                 logger.With("server_id", id),
		supMetrics:             deps.SupervisorMetrics,
		procMetrics:            deps.ProcessMetrics,
		bus:                    deps.Bus,
		nodeCfg:                deps.NodeConfig,
		activator:              deps.Activator,
		registrySession:        deps.RegistrySession,
		userMapper:             deps.UserMapper,
		adapterRegistry:        deps.AdapterRegistry,
		patcher:                deps.Patcher,
		state:                  StateInactive,
		activation:             ActivationManual,
		adapters:               make(map[string]AdapterHandle),
		serverLifetimeAdapters: make(map[string]bool),
		activatedAdapters:      make(map[string]bool),
		reenableLimiter:        rate.NewLimiter(rate.Every(30*time.Second), 1),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// ID returns the server id this supervisor owns.
func (s *Supervisor) ID() string { return s.id }

// GetState returns the externally published (coarsened) state.
func (s *Supervisor) GetState() ExternalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Coarsen(s.state)
}

// GetPid returns the managed process id, or 0 if none is tracked.
func (s *Supervisor) GetPid() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pid
}

// IsEnabled reports whether the server's activation mode is not Disabled.
func (s *Supervisor) IsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activation != ActivationDisabled
}

// SetEnabled forcibly enables or disables the server, independent of any
// failure-triggered disable (§6).
func (s *Supervisor) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enabled {
		s.clearFailureLocked()
	} else {
		s.previousActivation = s.activation
		s.activation = ActivationDisabled
		s.hasFailureTime = false
	}
}

// notifyLocked signals the condition variable; callers must hold mu.
func (s *Supervisor) notifyLocked() {
	s.cond.Broadcast()
}

// waitWhileActivatingLocked blocks the caller, which must hold mu, while
// the supervisor is in StateActivating, so that activation never races
// termination or adapter-deactivation handling (§5, §4.6, §4.7).
func (s *Supervisor) waitWhileActivatingLocked() {
	for s.state == StateActivating {
		s.cond.Wait()
	}
}

// publish pushes a state-changed event to the observer bus (§1, §5:
// "the observer channel is pushed to on every coarsened state change").
func (s *Supervisor) publish(previous, current InternalState, reason string) {
	if s.bus == nil {
		return
	}
	prevExt, curExt := Coarsen(previous), Coarsen(current)
	if prevExt == curExt {
		return
	}
	evt := observer.NewEvent(observer.EventTypeStateChanged, s.id, observer.EventSourceSupervisor)
	evt.State = string(curExt)
	evt.PreviousState = string(prevExt)
	evt.Reason = reason
	s.mu.Lock()
	evt.Pid = s.pid
	s.mu.Unlock()
	if err := s.bus.Publish(*evt); err != nil {
		s.logger.Warn("failed to publish observer event", "error", err)
	}
}

// recordTransitionMetric records a state_transitions_total increment.
func (s *Supervisor) recordTransitionMetric(from, to InternalState) {
	if s.supMetrics != nil {
		s.supMetrics.StateTransitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
	}
}

// backgroundCtx is used for collaborator calls that don't carry a
// caller-supplied context (internal callbacks from timers/activator).
func (s *Supervisor) backgroundCtx() context.Context {
	return context.Background()
}
