package supervisor

import "fmt"

// RequestInvalidError is returned synchronously when a precondition on
// the supervisor's current state is violated (start on Destroying, stop
// on Inactive, ...).
type RequestInvalidError struct {
	Operation string
	State     InternalState
	Reason    string
}

func (e *RequestInvalidError) Error() string {
	return fmt.Sprintf("%s invalid in state %s: %s", e.Operation, e.State, e.Reason)
}

// RevisionMismatchError is returned when a load/destroy's (uuid,
// revision) disagrees with the recorded provenance.
type RevisionMismatchError struct {
	ServerID      string
	ExpectedUUID  string
	ExpectedRev   int64
	GotUUID       string
	GotRev        int64
}

func (e *RevisionMismatchError) Error() string {
	return fmt.Sprintf("revision mismatch for %q: expected (%s, %d), got (%s, %d)",
		e.ServerID, e.ExpectedUUID, e.ExpectedRev, e.GotUUID, e.GotRev)
}

// DeploymentError wraps a failure in the update engine's reconciliation.
type DeploymentError struct {
	ServerID string
	Step     string
	Err      error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deployment error for %q at step %q: %v", e.ServerID, e.Step, e.Err)
}

func (e *DeploymentError) Unwrap() error { return e.Err }

// ActivationFailureError is returned when the Activator's fork/exec call
// itself fails (as opposed to the child process later dying).
type ActivationFailureError struct {
	ServerID string
	Reason   string
}

func (e *ActivationFailureError) Error() string {
	return fmt.Sprintf("activation failed for %q: %s", e.ServerID, e.Reason)
}

// TimeoutError is returned when an activation or deactivation timer fires.
type TimeoutError struct {
	ServerID string
	Kind     string // "activation" or "deactivation"
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out for %q", e.Kind, e.ServerID)
}

// ProcessDiedError describes an abnormal process exit.
type ProcessDiedError struct {
	ServerID string
	Reason   string
}

func (e *ProcessDiedError) Error() string {
	return fmt.Sprintf("process for %q terminated: %s", e.ServerID, e.Reason)
}

// DestroyedWhileQueuedError is returned to callbacks of a pending
// start/stop/load when the server transitions to Destroying first.
type DestroyedWhileQueuedError struct {
	ServerID string
}

func (e *DestroyedWhileQueuedError) Error() string {
	return fmt.Sprintf("server %q is being destroyed", e.ServerID)
}

// FileSystemFaultError wraps an I/O failure encountered while
// reconciling on-disk layout.
type FileSystemFaultError struct {
	ServerID string
	Path     string
	Err      error
}

func (e *FileSystemFaultError) Error() string {
	return fmt.Sprintf("filesystem fault for %q at %q: %v", e.ServerID, e.Path, e.Err)
}

func (e *FileSystemFaultError) Unwrap() error { return e.Err }

// FileNotAvailableError is returned by the file-tail API for an unknown
// log name.
type FileNotAvailableError struct {
	ServerID string
	Name     string
}

func (e *FileNotAvailableError) Error() string {
	return fmt.Sprintf("file %q not available for server %q", e.Name, e.ServerID)
}
