package supervisor

import (
	"runtime"
	"time"
)

// activate implements §4.6 "Activate". Runs outside the scheduler's
// lock except for the bracketed state reads/writes it needs.
func (s *Supervisor) activate() {
	s.mu.Lock()
	if s.waitForReplication && s.registrySession != nil {
		desc := s.descriptor
		app, uuid, rev := "", "", int64(0)
		if desc != nil {
			app, uuid, rev = desc.Application, desc.UUID, desc.Revision
		}
		s.mu.Unlock()
		s.registrySession.WaitForApplicationUpdate(s.backgroundCtx(), app, uuid, rev, func(err error) {
			s.mu.Lock()
			s.waitForReplication = false
			s.mu.Unlock()
			s.activate()
		})
		return
	}

	desc := s.descriptor
	if desc == nil {
		s.mu.Unlock()
		return
	}
	s.processProxySet = false
	for _, handle := range s.adapters {
		if s.adapterRegistry != nil {
			s.adapterRegistry.ClearProxyCache(handle)
		}
	}

	env := expandEnvEntries(desc.Envs, runtime.GOOS)
	options := append(append([]string{}, desc.Options...), "--Ice.Config="+s.serverDirLocked("config/config"))
	req := ActivationRequest{
		ServerID: s.id,
		Exe:      desc.Exe,
		Pwd:      desc.Pwd,
		User:     desc.User,
		Options:  options,
		Env:      env,
	}
	timeout := desc.ActivationTimeoutSeconds
	s.mu.Unlock()

	if s.activator == nil {
		s.mu.Lock()
		s.applyActivationFailureLocked("no activator configured")
		s.mu.Unlock()
		return
	}

	pid, err := s.activator.Activate(s.backgroundCtx(), req, s.onTerminated)
	if err != nil {
		s.mu.Lock()
		s.applyActivationFailureLocked(err.Error())
		s.mu.Unlock()
		if s.procMetrics != nil {
			s.procMetrics.ActivationFailuresTotal.Inc()
		}
		return
	}

	s.mu.Lock()
	s.pid = pid
	prev := s.state
	if prev == StateActivating {
		s.state = StateWaitForActivation
		s.recordTransitionMetric(prev, StateWaitForActivation)
		s.activationTimer = time.AfterFunc(time.Duration(timeout)*time.Second, s.onActivationTimeout)
		s.notifyLocked()
		s.mu.Unlock()
		s.publish(prev, StateWaitForActivation, "")
		s.mu.Lock()
		s.activationGateLocked()
	}
	s.mu.Unlock()
}

// applyActivationFailureLocked applies the disable-on-failure policy and
// moves the server toward Inactive via Deactivating, notifying adapters
// that activation failed (§4.6). Must be called with mu held.
func (s *Supervisor) applyActivationFailureLocked(reason string) {
	s.disableOnFailureLocked()
	s.enterStateLocked(StateDeactivating, "activation failed: "+reason)
	s.enterStateLocked(StateInactive, "activation failed: "+reason)
}

// deactivate implements §4.6 "Deactivate".
func (s *Supervisor) deactivate() {
	s.mu.Lock()
	if s.descriptor != nil && s.descriptor.ProcessRegistered && !s.processProxySet {
		s.enterStateLocked(StateDeactivatingWaitForProcess, "")
		s.mu.Unlock()
		return
	}
	pid := s.pid
	deactTimeout := 60
	if s.descriptor != nil {
		deactTimeout = s.descriptor.DeactivationTimeoutSeconds
	}
	s.deactivationTimer = time.AfterFunc(time.Duration(deactTimeout)*time.Second, s.onDeactivationTimeout)
	activator := s.activator
	s.mu.Unlock()

	if activator == nil || pid == 0 {
		return
	}
	if err := activator.Deactivate(pid); err != nil {
		s.kill()
	}
}

func (s *Supervisor) onDeactivationTimeout() {
	s.kill()
}

// kill implements §4.6 "kill": a no-op unless Deactivating,
// DeactivatingWaitForProcess, or Destroying.
func (s *Supervisor) kill() {
	s.mu.Lock()
	if !inSet(s.state, StateDeactivating, StateDeactivatingWaitForProcess, StateDestroying) {
		s.mu.Unlock()
		return
	}
	pid := s.pid
	activator := s.activator
	s.mu.Unlock()

	if activator == nil || pid == 0 {
		return
	}
	if err := activator.Kill(pid); err == nil && s.procMetrics != nil {
		s.procMetrics.KillsTotal.Inc()
	}
}

// killedSignals identifies signals treated as an abnormal exit (§4.6).
var killedSignals = map[string]bool{
	"SIGABRT": true,
	"SIGILL":  true,
	"SIGBUS":  true,
	"SIGFPE":  true,
	"SIGSEGV": true,
}

// onTerminated is the Activator's terminated callback (§4.6 "Terminated").
func (s *Supervisor) onTerminated(exitCode int, signal string, message string) {
	s.mu.Lock()
	s.waitWhileActivatingLocked()

	s.activatedAdapters = make(map[string]bool)
	s.pid = 0

	failed := exitCode != 0 || killedSignals[signal]
	if failed {
		s.disableOnFailureLocked()
	}
	if s.procMetrics != nil {
		label := "false"
		if failed {
			label = "true"
		}
		s.procMetrics.TerminationsTotal.WithLabelValues(label).Inc()
	}

	reason := message
	if reason == "" && failed {
		reason = "process terminated abnormally"
	}

	if !inSet(s.state, StateDeactivating, StateDeactivatingWaitForProcess, StateDestroying, StateDestroyed) {
		s.enterStateLocked(StateDeactivating, reason)
	}

	if s.slots[CommandDestroy] != nil {
		s.mu.Unlock()
		return
	}
	s.enterStateLocked(StateInactive, reason)
	s.mu.Unlock()
}

// ActivationTimedOut is invoked by the timer service when the activation
// timer fires (§4.2, §4.6).
func (s *Supervisor) ActivationTimedOut() {
	s.onActivationTimeout()
}

func (s *Supervisor) onActivationTimeout() {
	s.mu.Lock()
	if s.state != StateWaitForActivation {
		s.mu.Unlock()
		return
	}
	s.enterStateLocked(StateActivationTimeout, "")
	s.mu.Unlock()
}
