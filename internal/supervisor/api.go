package supervisor

// Start enqueues a Start intent (§6). mode distinguishes a caller-driven
// Manual start from an Always-mode auto-restart; cb is invoked exactly
// once, asynchronously, with the outcome. Returns a *RequestInvalidError
// synchronously if the server is already Destroying/Destroyed.
func (s *Supervisor) Start(mode ActivationMode, cb func(StartResult)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inSet(s.state, StateDestroying, StateDestroyed) {
		return &RequestInvalidError{Operation: "start", State: s.state, Reason: "server is being destroyed"}
	}
	cmd := newStartCommand(mode)
	if cb != nil {
		cmd.startCallbacks = []func(StartResult){cb}
	}
	s.enqueueLocked(cmd)
	return nil
}

// Stop enqueues a Stop intent (§6).
func (s *Supervisor) Stop(cb func(StartResult)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inSet(s.state, StateDestroying, StateDestroyed) {
		return &RequestInvalidError{Operation: "stop", State: s.state, Reason: "server is being destroyed"}
	}
	cmd := newStopCommand()
	if cb != nil {
		cmd.stopCallbacks = []func(StartResult){cb}
	}
	s.enqueueLocked(cmd)
	return nil
}

// Load enqueues a Load intent carrying the new descriptor (§4.5, §6).
// replicaName is used only for the IsMaster check the update engine may
// perform on a subsequent revision-sensitive Destroy.
func (s *Supervisor) Load(descriptor *Descriptor, replicaName string, cb func(LoadResult)) error {
	if descriptor == nil {
		return &RequestInvalidError{Operation: "load", Reason: "nil descriptor"}
	}
	if err := descriptor.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if inSet(s.state, StateDestroying, StateDestroyed) {
		return &RequestInvalidError{Operation: "load", State: s.state, Reason: "server is being destroyed"}
	}
	cmd := newLoadCommand(descriptor, replicaName)
	if cb != nil {
		cmd.loadCallbacks = []func(LoadResult){cb}
	}
	s.enqueueLocked(cmd)
	return nil
}

// Destroy enqueues a Destroy intent, optionally revision-checked against
// (uuid, revision) when uuid is non-empty (§6, §12.2). wipeDir requests
// that the on-disk layout be cleared once the destroy completes.
func (s *Supervisor) Destroy(uuid string, revision int64, replicaName string, wipeDir bool, cb func(DestroyResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd := newDestroyCommand(uuid, revision, replicaName)
	cmd.wipeDir = wipeDir
	if cb != nil {
		cmd.destroyCallbacks = []func(DestroyResult){cb}
	}
	s.enqueueLocked(cmd)
}

// Patch enqueues a Patch intent (§6). When shutdown is true and the
// server is not Inactive, Patch also enqueues a Stop, which the scheduler
// runs ahead of the Patch by priority (a Patch's precondition is
// Inactive). It returns false if the server is already being destroyed.
func (s *Supervisor) Patch(shutdown bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inSet(s.state, StateDestroying, StateDestroyed) {
		return false
	}
	if shutdown && s.state != StateInactive {
		s.enqueueLocked(newStopCommand())
	}
	s.enqueueLocked(newPatchCommand(shutdown))
	return true
}

// WaitForPatch blocks until the currently queued (or in-flight) patch
// completes, returning its error. If no patch is pending or running, it
// returns nil immediately.
func (s *Supervisor) WaitForPatch() error {
	s.mu.Lock()
	if s.slots[CommandPatch] == nil && s.state != StatePatching {
		s.mu.Unlock()
		return nil
	}
	ch := make(chan error, 1)
	s.patchWaiters = append(s.patchWaiters, ch)
	s.mu.Unlock()
	return <-ch
}

// Terminated applies the same handling as onTerminated, the callback
// that activate() hands to the Activator for the child's exit.
func (s *Supervisor) Terminated(exitCode int, signal string, message string) {
	s.onTerminated(exitCode, signal, message)
}
