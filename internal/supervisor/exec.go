package supervisor

// execStart implements the Start command's execute body (§4.2, §4.6): it
// simply calls activate() and lets the Activator/timer/gate callbacks
// drive the eventual StateActive/StateActivationTimeout/StateDeactivating
// transition that finishStartLocked reports back on.
func (s *Supervisor) execStart(cmd *command) {
	s.mu.Lock()
	if s.descriptor == nil {
		s.enterStateLocked(StateDeactivating, "no descriptor loaded")
		s.enterStateLocked(StateInactive, "no descriptor loaded")
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.activate()
}

// execStop implements the Stop command's execute body: it calls
// deactivate() and lets the child's eventual exit (via onTerminated)
// drive the transition back to Inactive.
func (s *Supervisor) execStop(cmd *command) {
	s.deactivate()
}

// execDestroy implements the Destroy command's execute body (§4.2, §6,
// §12.2): after an optional revision check, it tears down adapters,
// clears on-disk state when requested, and finishes in Destroyed. The
// command's precondition guarantees StateInactive, so there is never a
// process left to deactivate here.
func (s *Supervisor) execDestroy(cmd *command) {
	s.mu.Lock()
	if cmd.destroyUUID != "" {
		if err := s.checkRevisionLocked(cmd.destroyUUID, cmd.destroyRevision, cmd.destroyReplica); err != nil {
			s.enterStateLocked(StateInactive, "destroy aborted: revision mismatch")
			s.finishDestroyLocked(false, err)
			s.mu.Unlock()
			return
		}
	}
	s.failSlotAndNotify(CommandLoad, "")
	s.failSlotAndNotify(CommandStart, "")
	s.failSlotAndNotify(CommandStop, "")
	s.finishPatchLocked(&DestroyedWhileQueuedError{ServerID: s.id})
	for id, handle := range s.adapters {
		if s.adapterRegistry != nil {
			s.adapterRegistry.Destroy(handle)
		}
		delete(s.adapters, id)
	}
	loadFailure := cmd.loadFailure
	dir := s.serverDirLocked("")
	s.mu.Unlock()

	if cmd.wipeDir || loadFailure {
		removeServerDirectory(dir)
	}

	s.mu.Lock()
	s.descriptor = nil
	s.enterStateLocked(StateDestroyed, "")
	s.mu.Unlock()
}

// execLoad implements the Load command's execute body (§4.5's closing
// rollback-or-destroy paragraph): run the update engine; on success
// report the new adapter/timeout snapshot; on a domain error, roll back
// to the previous descriptor (best effort) or, if there was none,
// enqueue a Destroy marked loadFailure so the server ends Destroyed
// instead of stuck Inactive with no usable descriptor.
func (s *Supervisor) execLoad(cmd *command) {
	s.mu.Lock()
	previous := s.descriptor
	s.mu.Unlock()

	desc := cmd.loadDescriptor

	if previous != nil && Equivalent(previous, desc) {
		s.mu.Lock()
		desc.ActivationTimeoutSeconds = previous.ActivationTimeoutSeconds
		desc.DeactivationTimeoutSeconds = previous.DeactivationTimeoutSeconds
		s.descriptor = desc
		dir := s.serverDirLocked("")
		s.mu.Unlock()
		var werr error
		if err := writeRevisionFile(dir, RevisionRecord{Application: desc.Application, UUID: desc.UUID, Revision: desc.Revision}); err != nil {
			werr = &FileSystemFaultError{ServerID: s.id, Path: dir, Err: err}
		}
		s.mu.Lock()
		result := s.currentLoadResultLocked(desc, werr)
		s.enterStateLocked(StateInactive, "")
		s.mu.Unlock()
		for _, cb := range cmd.loadCallbacks {
			cb(result)
		}
		if s.supMetrics != nil {
			s.supMetrics.LoadOutcomesTotal.WithLabelValues("semantic_equal").Inc()
		}
		return
	}

	err := s.runUpdate(desc)
	if err == nil {
		s.mu.Lock()
		result := s.currentLoadResultLocked(desc, nil)
		s.enterStateLocked(StateInactive, "")
		s.mu.Unlock()
		for _, cb := range cmd.loadCallbacks {
			cb(result)
		}
		if s.supMetrics != nil {
			s.supMetrics.LoadOutcomesTotal.WithLabelValues("applied").Inc()
		}
		return
	}

	if previous != nil {
		_ = s.runUpdate(previous)
		s.mu.Lock()
		result := s.currentLoadResultLocked(previous, err)
		s.enterStateLocked(StateInactive, "load failed: rolled back")
		s.mu.Unlock()
		for _, cb := range cmd.loadCallbacks {
			cb(result)
		}
		if s.supMetrics != nil {
			s.supMetrics.LoadOutcomesTotal.WithLabelValues("rollback").Inc()
		}
		return
	}

	s.mu.Lock()
	destroyCmd := newDestroyCommand(desc.UUID, desc.Revision, cmd.loadReplica)
	destroyCmd.loadFailure = true
	destroyCmd.destroyCallbacks = nil
	s.slots[CommandDestroy] = destroyCmd
	if s.supMetrics != nil {
		s.supMetrics.CommandQueueDepth.WithLabelValues(CommandDestroy.String()).Inc()
	}
	s.enterStateLocked(StateInactive, "load failure")
	s.mu.Unlock()

	for _, cb := range cmd.loadCallbacks {
		cb(LoadResult{ServerID: s.id, Err: err})
	}
	if s.supMetrics != nil {
		s.supMetrics.LoadOutcomesTotal.WithLabelValues("destroy").Inc()
	}
}

func (s *Supervisor) currentLoadResultLocked(desc *Descriptor, err error) LoadResult {
	proxies := make(map[string]string, len(s.adapters))
	for id, handle := range s.adapters {
		proxies[id] = handle.ID()
	}
	return LoadResult{
		ServerID:            s.id,
		AdapterProxies:      proxies,
		ActivationTimeout:   desc.ActivationTimeoutSeconds,
		DeactivationTimeout: desc.DeactivationTimeoutSeconds,
		Err:                 err,
	}
}

// execPatch implements the Patch command's execute body (§6: patch can
// optionally stop a running server first, then asks the Patcher to
// mirror the distribution before returning to Inactive and releasing
// every WaitForPatch() waiter).
func (s *Supervisor) execPatch(cmd *command) {
	s.mu.Lock()
	desc := s.descriptor
	s.mu.Unlock()

	if desc == nil || desc.Distrib == nil || s.patcher == nil {
		s.mu.Lock()
		s.enterStateLocked(StateInactive, "")
		s.mu.Unlock()
		return
	}

	done := make(chan error, 1)
	s.patcher.Patch(s.backgroundCtx(), desc.Distrib.Source, desc.Distrib.Directories, func(err error) {
		done <- err
	})
	err := <-done

	s.mu.Lock()
	s.finishPatchLocked(err)
	s.enterStateLocked(StateInactive, "")
	s.mu.Unlock()

	for _, cb := range cmd.patchCallbacks {
		cb(err)
	}
}
