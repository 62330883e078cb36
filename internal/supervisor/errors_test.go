package supervisor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, (&RequestInvalidError{Operation: "start", State: StateDestroying, Reason: "being destroyed"}).Error(), "start invalid in state Destroying")
	assert.Contains(t, (&RevisionMismatchError{ServerID: "s1", ExpectedUUID: "a", ExpectedRev: 1, GotUUID: "b", GotRev: 2}).Error(), "revision mismatch")
	assert.Contains(t, (&ActivationFailureError{ServerID: "s1", Reason: "exec failed"}).Error(), "activation failed")
	assert.Contains(t, (&TimeoutError{ServerID: "s1", Kind: "activation"}).Error(), "activation timed out")
	assert.Contains(t, (&ProcessDiedError{ServerID: "s1", Reason: "killed"}).Error(), "terminated")
	assert.Contains(t, (&DestroyedWhileQueuedError{ServerID: "s1"}).Error(), "being destroyed")
	assert.Contains(t, (&FileNotAvailableError{ServerID: "s1", Name: "#foo"}).Error(), "not available")
}

func TestDeploymentError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &DeploymentError{ServerID: "s1", Step: "write-config", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "write-config")
}

func TestFileSystemFaultError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("disk full")
	err := &FileSystemFaultError{ServerID: "s1", Path: "/tmp/x", Err: inner}
	assert.ErrorIs(t, err, inner)
}
