package node

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSingleNodeRegistrySession_IsAlwaysMaster(t *testing.T) {
	s := SingleNodeRegistrySession{}
	assert.True(t, s.IsMaster(""))
	assert.True(t, s.IsMaster("replica-1"))
}

func TestSingleNodeRegistrySession_WaitCompletesImmediately(t *testing.T) {
	s := SingleNodeRegistrySession{}
	done := make(chan error, 1)
	s.WaitForApplicationUpdate(context.Background(), "app1", "uuid-1", 1, func(err error) {
		done <- err
	})
	select {
	case err := <-done:
		assert.NoError(t, err)
	default:
		t.Fatal("WaitForApplicationUpdate should invoke cb synchronously")
	}
}
