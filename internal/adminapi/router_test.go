package adminapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridnode/supervisor/internal/config"
	"github.com/gridnode/supervisor/internal/node"
	"github.com/gridnode/supervisor/internal/observer"
	"github.com/gridnode/supervisor/pkg/metrics"
)

func newTestRouter(t *testing.T, namespace string) (http.Handler, *node.Manager) {
	t.Helper()
	cfg := &config.NodeConfig{ServersDir: t.TempDir(), WaitTime: 30}
	registry := metrics.NewMetricsRegistry(namespace)
	manager, err := node.NewManager(nil, cfg, nil, registry)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Logger:  discardLogger(),
		Manager: manager,
	})
	return router, manager
}

func TestRouter_Healthz(t *testing.T) {
	router, _ := newTestRouter(t, "adminapi_test_healthz")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestRouter_ListServers_Empty(t *testing.T) {
	router, _ := newTestRouter(t, "adminapi_test_list_empty")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/servers", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string][]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Empty(t, body["servers"])
}

func TestRouter_GetState_UnknownServerIs404(t *testing.T) {
	router, _ := newTestRouter(t, "adminapi_test_404")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/servers/missing/state", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_LoadStartStopDestroy_Lifecycle(t *testing.T) {
	router, manager := newTestRouter(t, "adminapi_test_lifecycle")

	// /bin/sh -c "sleep 5" keeps the managed process alive long enough for
	// the state check and the explicit Stop below to run before it exits
	// on its own, unlike a near-instant command such as /bin/true.
	descBody := []byte(`{"UUID":"uuid-1","Exe":"/bin/sh","Options":["-c","sleep 5"],"Activation":"manual"}`)
	loadReq := httptest.NewRequest(http.MethodPost, "/servers/srv1/load", bytes.NewReader(descBody))
	loadRR := httptest.NewRecorder()
	router.ServeHTTP(loadRR, loadReq)
	require.Equal(t, http.StatusOK, loadRR.Code, loadRR.Body.String())

	stateRR := httptest.NewRecorder()
	router.ServeHTTP(stateRR, httptest.NewRequest(http.MethodGet, "/servers/srv1/state", nil))
	require.Equal(t, http.StatusOK, stateRR.Code)
	var stateBody map[string]interface{}
	require.NoError(t, json.NewDecoder(stateRR.Body).Decode(&stateBody))
	assert.Equal(t, "Inactive", stateBody["state"])

	startRR := httptest.NewRecorder()
	router.ServeHTTP(startRR, httptest.NewRequest(http.MethodPost, "/servers/srv1/start", nil))
	require.Equal(t, http.StatusOK, startRR.Code, startRR.Body.String())

	s, ok := manager.Lookup("srv1")
	require.True(t, ok)
	assert.Equal(t, "Active", string(s.GetState()))

	stopRR := httptest.NewRecorder()
	router.ServeHTTP(stopRR, httptest.NewRequest(http.MethodPost, "/servers/srv1/stop", nil))
	assert.Equal(t, http.StatusOK, stopRR.Code)

	destroyRR := httptest.NewRecorder()
	router.ServeHTTP(destroyRR, httptest.NewRequest(http.MethodPost, "/servers/srv1/destroy", nil))
	require.Equal(t, http.StatusOK, destroyRR.Code, destroyRR.Body.String())

	_, ok = manager.Lookup("srv1")
	assert.False(t, ok, "a successful destroy should deregister the server")
}

func TestRouter_Load_InvalidJSONBodyIs400(t *testing.T) {
	router, _ := newTestRouter(t, "adminapi_test_badjson")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/servers/srv1/load", bytes.NewReader([]byte("not json")))
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_MetricsEndpoint_MountedWhenEnabled(t *testing.T) {
	cfg := &config.NodeConfig{ServersDir: t.TempDir(), WaitTime: 30}
	registry := metrics.NewMetricsRegistry("adminapi_test_metrics_enabled")
	manager, err := node.NewManager(nil, cfg, nil, registry)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Logger:        discardLogger(),
		Manager:       manager,
		EnableMetrics: true,
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_OpenAPISpec_MountedWhenDocsEnabled(t *testing.T) {
	cfg := &config.NodeConfig{ServersDir: t.TempDir(), WaitTime: 30}
	registry := metrics.NewMetricsRegistry("adminapi_test_docs")
	manager, err := node.NewManager(nil, cfg, nil, registry)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Logger:     discardLogger(),
		Manager:    manager,
		EnableDocs: true,
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "supervisord admin API")
}

func TestRouter_ObserverWebSocketRoute_MountedWhenBusProvided(t *testing.T) {
	cfg := &config.NodeConfig{ServersDir: t.TempDir(), WaitTime: 30}
	registry := metrics.NewMetricsRegistry("adminapi_test_ws_route")
	bus := observer.NewBus(discardLogger(), observer.NewMetrics(registry.Namespace()))
	manager, err := node.NewManager(nil, cfg, bus, registry)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Logger:  discardLogger(),
		Manager: manager,
		Bus:     bus,
	})

	// A plain GET without the websocket upgrade headers should fail the
	// handshake (400), not 404 — confirming the route is mounted.
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ws/observer", nil))
	assert.NotEqual(t, http.StatusNotFound, rr.Code)
}
