package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapterRegistry_RegisterIsIdempotent(t *testing.T) {
	reg, err := NewAdapterRegistry(4)
	require.NoError(t, err)

	h1, err := reg.Register("IceGrid.Server.Adapter", "srv1-a1", "a1")
	require.NoError(t, err)
	h2, err := reg.Register("IceGrid.Server.Adapter", "srv1-a1", "a1")
	require.NoError(t, err)

	assert.Same(t, h1, h2)
	assert.Equal(t, "a1", h1.ID())
}

func TestAdapterRegistry_DestroyRemovesHandleAndCache(t *testing.T) {
	reg, err := NewAdapterRegistry(4)
	require.NoError(t, err)

	h, err := reg.Register("IceGrid.Server.Adapter", "srv1-a1", "a1")
	require.NoError(t, err)
	reg.CacheProxy("a1", "a1:default -h 127.0.0.1 -p 10000")

	_, ok := reg.LookupProxy("a1")
	assert.True(t, ok)

	reg.Destroy(h)

	_, ok = reg.LookupProxy("a1")
	assert.False(t, ok, "destroying the handle should evict its cached proxy")

	h2, err := reg.Register("IceGrid.Server.Adapter", "srv1-a1", "a1")
	require.NoError(t, err)
	assert.NotSame(t, h, h2, "a fresh Register after Destroy should mint a new handle")
}

func TestAdapterRegistry_ClearProxyCache(t *testing.T) {
	reg, err := NewAdapterRegistry(4)
	require.NoError(t, err)

	h, err := reg.Register("IceGrid.Server.Adapter", "srv1-a1", "a1")
	require.NoError(t, err)
	reg.CacheProxy("a1", "stale-proxy")

	reg.ClearProxyCache(h)

	_, ok := reg.LookupProxy("a1")
	assert.False(t, ok)
}

func TestAdapterRegistry_DefaultsCapacityWhenNonPositive(t *testing.T) {
	reg, err := NewAdapterRegistry(0)
	require.NoError(t, err)
	require.NotNil(t, reg)
}
