package supervisor

// SendSignal delivers signal to the tracked process (§6, §12.5).
func (s *Supervisor) SendSignal(signal string) error {
	s.mu.Lock()
	pid := s.pid
	activator := s.activator
	s.mu.Unlock()

	if pid == 0 {
		return &RequestInvalidError{Operation: "sendSignal", State: s.GetInternalState(), Reason: "no process tracked"}
	}
	if activator == nil {
		return nil
	}
	return activator.SendSignal(pid, signal)
}

// WriteMessage writes msg to fd of the tracked process (§6, §12.5).
func (s *Supervisor) WriteMessage(msg string, fd int) error {
	s.mu.Lock()
	pid := s.pid
	activator := s.activator
	s.mu.Unlock()

	if pid == 0 {
		return &RequestInvalidError{Operation: "writeMessage", State: s.GetInternalState(), Reason: "no process tracked"}
	}
	if activator == nil {
		return nil
	}
	return activator.WriteMessage(pid, fd, msg)
}

// GetInternalState exposes the fine-grained state for diagnostics and
// error messages (the externally published state is GetState/Coarsen).
func (s *Supervisor) GetInternalState() InternalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GetRealAdmin is a placeholder for the real admin facet forwarded to
// the managed process's own admin endpoint, out of scope for this core
// (§1); it reports whether the server is currently positioned to accept
// admin forwarding (Active with a tracked pid).
func (s *Supervisor) GetRealAdmin() (pid int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pid, s.state == StateActive
}
