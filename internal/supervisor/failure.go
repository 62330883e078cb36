package supervisor

import "time"

// disableOnFailureLocked applies the failure policy of §4.8: called on
// activation syscall failure, abnormal process exit, and failed
// Always-mode reactivation. Must be called with mu held.
func (s *Supervisor) disableOnFailureLocked() {
	s.previousActivation = s.activation
	s.activation = ActivationDisabled
	s.hasFailureTime = true
	s.failureTime = time.Now()
	if s.supMetrics != nil {
		s.supMetrics.DisabledServers.Inc()
	}
}

// clearFailureLocked restores the activation mode that was in effect
// before a forced disable (§12.3: re-enable restores previousActivation
// exactly, not just Manual), and clears the failure window.
func (s *Supervisor) clearFailureLocked() {
	if s.activation != ActivationDisabled {
		return
	}
	wasFailureDisabled := s.hasFailureTime
	s.activation = s.previousActivation
	if s.activation == "" {
		s.activation = ActivationManual
	}
	s.hasFailureTime = false
	if wasFailureDisabled && s.supMetrics != nil {
		s.supMetrics.DisabledServers.Dec()
	}
}

// failureWindowElapsedLocked reports whether now is at or past
// failureTime + disableOnFailure.
func (s *Supervisor) failureWindowElapsedLocked() bool {
	if !s.hasFailureTime {
		return true
	}
	window := s.disableOnFailureSeconds()
	if window <= 0 {
		return false
	}
	return !time.Now().Before(s.failureTime.Add(time.Duration(window) * time.Second))
}
