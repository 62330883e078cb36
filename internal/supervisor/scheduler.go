package supervisor

// scheduleLocked implements nextCommand() from §4.3: after any state
// change or slot mutation, pick the first slot (in fixed priority order)
// whose precondition holds, install its next state while still holding
// the lock, then run its execute body after releasing the lock. Must be
// called with mu held; it unlocks/relocks internally around execute.
func (s *Supervisor) scheduleLocked() {
	for {
		var selected *command
		for _, kind := range schedulerPriority {
			cmd := s.slots[kind]
			if cmd == nil {
				continue
			}
			if cmd.precondition(s.state) {
				selected = cmd
				break
			}
		}
		if selected == nil {
			return
		}

		s.slots[selected.kind] = nil
		if s.supMetrics != nil {
			s.supMetrics.CommandQueueDepth.WithLabelValues(selected.kind.String()).Dec()
		}
		prev := s.state
		s.state = selected.nextState
		s.recordTransitionMetric(prev, selected.nextState)
		s.notifyLocked()

		s.mu.Unlock()
		s.publish(prev, selected.nextState, "")
		s.dispatch(selected)
		s.mu.Lock()
		// Loop again: dispatch may have changed state/slots, so another
		// command might now be eligible.
	}
}

// dispatch runs one command's body outside the lock (§5 suspension
// points). Each command kind is responsible for re-entering the
// scheduler (via scheduleLocked, called under lock) once it has applied
// whatever follow-on state transition its completion implies.
func (s *Supervisor) dispatch(cmd *command) {
	switch cmd.kind {
	case CommandStop:
		s.mu.Lock()
		s.pendingStop = cmd
		s.mu.Unlock()
		s.execStop(cmd)
	case CommandDestroy:
		s.mu.Lock()
		s.pendingDestroy = cmd
		s.mu.Unlock()
		s.execDestroy(cmd)
	case CommandLoad:
		s.execLoad(cmd)
	case CommandPatch:
		s.execPatch(cmd)
	case CommandStart:
		s.mu.Lock()
		s.pendingStart = cmd
		s.mu.Unlock()
		s.execStart(cmd)
	}
}

// enqueueLocked installs cmd in its slot, coalescing with any existing
// command of the same kind by merging callback queues, then reschedules.
// Must be called with mu held.
func (s *Supervisor) enqueueLocked(cmd *command) {
	if existing := s.slots[cmd.kind]; existing != nil {
		existing.loadCallbacks = append(existing.loadCallbacks, cmd.loadCallbacks...)
		existing.startCallbacks = append(existing.startCallbacks, cmd.startCallbacks...)
		existing.stopCallbacks = append(existing.stopCallbacks, cmd.stopCallbacks...)
		existing.destroyCallbacks = append(existing.destroyCallbacks, cmd.destroyCallbacks...)
		existing.patchCallbacks = append(existing.patchCallbacks, cmd.patchCallbacks...)
		if cmd.loadDescriptor != nil {
			existing.loadDescriptor = cmd.loadDescriptor
			existing.loadReplica = cmd.loadReplica
		}
		s.scheduleLocked()
		return
	}
	s.slots[cmd.kind] = cmd
	if s.supMetrics != nil {
		s.supMetrics.CommandQueueDepth.WithLabelValues(cmd.kind.String()).Inc()
	}
	s.scheduleLocked()
}
