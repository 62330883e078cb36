package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoarsen(t *testing.T) {
	cases := []struct {
		in   InternalState
		want ExternalState
	}{
		{StateInactive, ExternalInactive},
		{StateLoading, ExternalInactive},
		{StatePatching, ExternalInactive},
		{StateActivating, ExternalActivating},
		{StateWaitForActivation, ExternalActivating},
		{StateActivationTimeout, ExternalActivationTimedOut},
		{StateActive, ExternalActive},
		{StateDeactivating, ExternalDeactivating},
		{StateDeactivatingWaitForProcess, ExternalDeactivating},
		{StateDestroying, ExternalDestroying},
		{StateDestroyed, ExternalDestroyed},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Coarsen(c.in), "state %s", c.in)
	}
}

func TestInternalStateString(t *testing.T) {
	assert.Equal(t, "Active", StateActive.String())
	assert.Equal(t, "Unknown", InternalState(999).String())
}

func TestInSet(t *testing.T) {
	assert.True(t, inSet(StateActive, StateInactive, StateActive))
	assert.False(t, inSet(StateActive, StateInactive, StateLoading))
}

func TestCommandKindString(t *testing.T) {
	assert.Equal(t, "stop", CommandStop.String())
	assert.Equal(t, "destroy", CommandDestroy.String())
	assert.Equal(t, "load", CommandLoad.String())
	assert.Equal(t, "patch", CommandPatch.String())
	assert.Equal(t, "start", CommandStart.String())
	assert.Equal(t, "unknown", CommandKind(99).String())
}

func TestSchedulerPriorityOrder(t *testing.T) {
	want := [numCommandKinds]CommandKind{CommandStop, CommandDestroy, CommandLoad, CommandPatch, CommandStart}
	assert.Equal(t, want, schedulerPriority)
}
