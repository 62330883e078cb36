package node

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gridnode/supervisor/internal/supervisor"
)

// adapterHandle is the registry-side record for one adapter servant.
type adapterHandle struct {
	id       string
	category string
	name     string
}

func (h *adapterHandle) ID() string { return h.id }
func (h *adapterHandle) Destroy()   {}

var _ supervisor.AdapterHandle = (*adapterHandle)(nil)

// AdapterRegistry registers per-server object-adapter servants under the
// deterministic identity scheme of the update engine, and caches
// resolved direct proxies so that repeated lookups during activation
// don't re-resolve through the locator every time (a proxy is evicted
// from cache before each activation attempt, mirroring the teacher's
// publishing LRU: bounded capacity, explicit invalidation on write).
type AdapterRegistry struct {
	mu        sync.Mutex
	handles   map[string]*adapterHandle
	proxyLRU  *lru.Cache[string, string]
}

// NewAdapterRegistry returns an AdapterRegistry caching up to
// proxyCacheSize resolved direct proxies.
func NewAdapterRegistry(proxyCacheSize int) (*AdapterRegistry, error) {
	if proxyCacheSize <= 0 {
		proxyCacheSize = 256
	}
	cache, err := lru.New[string, string](proxyCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating adapter proxy cache: %w", err)
	}
	return &AdapterRegistry{
		handles:  make(map[string]*adapterHandle),
		proxyLRU: cache,
	}, nil
}

var _ supervisor.AdapterRegistry = (*AdapterRegistry)(nil)

// Register creates (or returns the existing) servant identity for
// category/name/adapterID, per the update engine's deterministic scheme.
func (r *AdapterRegistry) Register(category, name, adapterID string) (supervisor.AdapterHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := category + "/" + name
	if h, ok := r.handles[key]; ok {
		return h, nil
	}
	h := &adapterHandle{id: adapterID, category: category, name: name}
	r.handles[key] = h
	return h, nil
}

// Destroy removes the servant identity and any cached proxy for it.
func (r *AdapterRegistry) Destroy(handle supervisor.AdapterHandle) {
	h, ok := handle.(*adapterHandle)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, h.category+"/"+h.name)
	r.proxyLRU.Remove(h.id)
}

// ClearProxyCache drops any cached direct proxy for handle, required
// before each activation attempt since the process's endpoint changes.
func (r *AdapterRegistry) ClearProxyCache(handle supervisor.AdapterHandle) {
	h, ok := handle.(*adapterHandle)
	if !ok {
		return
	}
	r.proxyLRU.Remove(h.id)
}

// CacheProxy records a resolved direct proxy string for adapterID,
// called by the admin-facing proxy resolver once the server reports it.
func (r *AdapterRegistry) CacheProxy(adapterID, proxy string) {
	r.proxyLRU.Add(adapterID, proxy)
}

// LookupProxy returns the cached direct proxy for adapterID, if any.
func (r *AdapterRegistry) LookupProxy(adapterID string) (string, bool) {
	return r.proxyLRU.Get(adapterID)
}
