package supervisor

import "time"

// enterStateLocked applies the state and the entry-effects of §4.4 for
// states that are reached from inside a command's execute body or an
// asynchronous callback (as opposed to the transitional states a command
// installs directly at dispatch time, handled in scheduler.go). Must be
// called with mu held; it calls scheduleLocked() before returning so any
// newly eligible command runs immediately.
func (s *Supervisor) enterStateLocked(newState InternalState, reason string) {
	prev := s.state
	s.state = newState
	s.recordTransitionMetric(prev, newState)

	switch newState {
	case StateInactive:
		if prev == StateLoading {
			s.finishLoadLocked(nil)
		}
		if prev == StatePatching {
			s.finishPatchLocked(nil)
		}
		s.finishStopLocked(true, "")
		s.armDelayedStartLocked()

	case StateActive:
		s.finishStartLocked(true, "")

	case StateActivationTimeout:
		s.finishStartLocked(false, "activation timed out")

	case StateDeactivating:
		if prev == StateActivating || prev == StateWaitForActivation {
			s.finishStartLocked(false, reason)
		}

	case StateDestroying:
		s.loadFailureOnDestroy = reason == "load failure"
		s.failSlotAndNotify(CommandLoad, reason)
		s.failSlotAndNotify(CommandStart, reason)
		s.failSlotAndNotify(CommandStop, reason)
		s.finishPatchLocked(&DestroyedWhileQueuedError{ServerID: s.id})

	case StateDestroyed:
		s.finishDestroyLocked(true, nil)
		s.destroyed = true
		if s.slots[CommandLoad] == nil {
			// No load queued: the caller (node) deregisters the
			// supervisor object; the Supervisor itself has nothing
			// further to do.
		}
	}

	s.cancelTimersLocked()
	s.notifyLocked()
	s.mu.Unlock()
	s.publish(prev, newState, reason)
	s.mu.Lock()
	s.scheduleLocked()
}

func (s *Supervisor) failSlotAndNotify(kind CommandKind, reason string) {
	cmd := s.slots[kind]
	if cmd == nil {
		return
	}
	s.slots[kind] = nil
	if s.supMetrics != nil {
		s.supMetrics.CommandQueueDepth.WithLabelValues(kind.String()).Dec()
	}
	msg := reason
	if msg == "" {
		msg = "server is being destroyed"
	}
	switch kind {
	case CommandLoad:
		for _, cb := range cmd.loadCallbacks {
			cb(LoadResult{Err: &DestroyedWhileQueuedError{ServerID: s.id}})
		}
	case CommandStart:
		for _, cb := range cmd.startCallbacks {
			cb(StartResult{Success: false, Reason: msg})
		}
	case CommandStop:
		for _, cb := range cmd.stopCallbacks {
			cb(StartResult{Success: false, Reason: msg})
		}
	}
}

func (s *Supervisor) finishLoadLocked(err error) {
	cmd := s.slots[CommandLoad]
	// Load finishing here means the slot itself already was cleared by
	// the scheduler at dispatch; completion callbacks are invoked by
	// execLoad directly once updateImpl returns. This hook exists for
	// symmetry with the other Entering-Inactive effects in §4.4 and is a
	// no-op unless a stale slot is somehow still present.
	if cmd != nil && cmd.kind == CommandLoad {
		s.slots[CommandLoad] = nil
	}
}

func (s *Supervisor) finishPatchLocked(err error) {
	for _, waiter := range s.patchWaiters {
		ch := waiter
		go func() { ch <- err }()
	}
	s.patchWaiters = nil
}

func (s *Supervisor) finishStopLocked(success bool, reason string) {
	cmd := s.pendingStop
	if cmd == nil {
		return
	}
	s.pendingStop = nil
	for _, cb := range cmd.stopCallbacks {
		cb(StartResult{Success: success, Reason: reason})
	}
}

func (s *Supervisor) finishStartLocked(success bool, reason string) {
	cmd := s.pendingStart
	if cmd == nil {
		return
	}
	s.pendingStart = nil
	for _, cb := range cmd.startCallbacks {
		cb(StartResult{Success: success, Reason: reason})
	}
}

func (s *Supervisor) finishDestroyLocked(success bool, err error) {
	cmd := s.pendingDestroy
	if cmd == nil {
		return
	}
	s.pendingDestroy = nil
	for _, cb := range cmd.destroyCallbacks {
		cb(DestroyResult{Success: success, Err: err})
	}
}

func (s *Supervisor) cancelTimersLocked() {
	if s.activationTimer != nil {
		s.activationTimer.Stop()
		s.activationTimer = nil
	}
	if s.deactivationTimer != nil {
		s.deactivationTimer.Stop()
		s.deactivationTimer = nil
	}
}

// armDelayedStartLocked schedules a delayed re-start per §4.8: 500ms for
// Always-mode, or failureTime+disableOnFailure+500ms while disabled due
// to failure with a positive window. When reenableLimiter has no token,
// the re-enable delay is stretched to at least one limiter interval.
func (s *Supervisor) armDelayedStartLocked() {
	if s.delayedTimer != nil {
		s.delayedTimer.Stop()
		s.delayedTimer = nil
	}

	if s.activation == ActivationAlways {
		s.delayedTimer = time.AfterFunc(500*time.Millisecond, s.delayedAlwaysStart)
		return
	}

	if s.activation == ActivationDisabled && s.hasFailureTime && s.disableOnFailureSeconds() > 0 {
		delay := time.Until(s.failureTime.Add(time.Duration(s.disableOnFailureSeconds())*time.Second)) + 500*time.Millisecond
		if delay < 0 {
			delay = 500 * time.Millisecond
		}
		if !s.reenableLimiter.Allow() {
			if interval := time.Duration(float64(time.Second) / float64(s.reenableLimiter.Limit())); delay < interval {
				delay = interval
			}
		}
		s.delayedTimer = time.AfterFunc(delay, s.delayedReenable)
	}
}

func (s *Supervisor) delayedAlwaysStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInactive || s.activation != ActivationAlways {
		return
	}
	s.enqueueLocked(newStartCommand(ActivationAlways))
}

func (s *Supervisor) delayedReenable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activation != ActivationDisabled || !s.hasFailureTime {
		return
	}
	if time.Now().Before(s.failureTime.Add(time.Duration(s.disableOnFailureSeconds()) * time.Second)) {
		return
	}
	s.clearFailureLocked()
	if s.state == StateInactive && s.previousActivation == ActivationAlways {
		s.enqueueLocked(newStartCommand(ActivationAlways))
	}
}

func (s *Supervisor) disableOnFailureSeconds() int {
	if s.nodeCfg == nil {
		return 0
	}
	return s.nodeCfg.DisableOnFailure
}
