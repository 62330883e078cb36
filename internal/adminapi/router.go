package adminapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/gridnode/supervisor/internal/node"
	"github.com/gridnode/supervisor/internal/observer"
	"github.com/gridnode/supervisor/pkg/metrics"
)

// RouterConfig holds the admin router's dependencies.
type RouterConfig struct {
	Logger  *slog.Logger
	Manager *node.Manager
	Bus     observer.Bus

	// EnableMetrics mounts /metrics and wraps every route with request
	// instrumentation via pkg/metrics.HTTPMetrics.
	EnableMetrics bool

	// EnableDocs mounts a Swagger UI and raw OpenAPI spec describing the
	// /servers lifecycle surface, for operators browsing the admin API
	// without a generated client.
	EnableDocs bool
}

// NewRouter builds the admin HTTP surface: per-server lifecycle
// operations under /servers/{id}/... (get state, get pid,
// load/start/stop/destroy, file-tail), the observer websocket feed, and a
// health endpoint.
//
// The middleware stack is applied in order:
//  1. RequestID (always)
//  2. Logging (always)
//  3. Metrics (if enabled)
func NewRouter(config RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware)
	router.Use(LoggingMiddleware(config.Logger))

	httpMetrics := metrics.NewMetricsManager(metrics.DefaultConfig())
	if config.EnableMetrics {
		router.Use(httpMetrics.Middleware)
		router.Handle("/metrics", httpMetrics.Handler()).Methods("GET")
	}

	h := NewHandlers(config.Manager)

	router.HandleFunc("/healthz", h.Healthz).Methods("GET")
	router.HandleFunc("/servers", h.ListServers).Methods("GET")

	servers := router.PathPrefix("/servers/{id}").Subrouter()
	servers.HandleFunc("/state", h.GetState).Methods("GET")
	servers.HandleFunc("/pid", h.GetPid).Methods("GET")
	servers.HandleFunc("/load", h.Load).Methods("POST")
	servers.HandleFunc("/start", h.Start).Methods("POST")
	servers.HandleFunc("/stop", h.Stop).Methods("POST")
	servers.HandleFunc("/destroy", h.Destroy).Methods("POST")
	servers.HandleFunc("/files/{name}", h.TailFile).Methods("GET")

	if config.Bus != nil {
		wsHandler := NewObserverWebSocketHandler(config.Bus, config.Logger)
		router.Handle("/ws/observer", wsHandler).Methods("GET")
	}

	if config.EnableDocs {
		setupDocumentationRoutes(router)
	}

	return router
}

// setupDocumentationRoutes mounts a Swagger UI and the raw OpenAPI spec
// for the /servers lifecycle surface above, so an operator can browse
// the admin API without a generated client.
func setupDocumentationRoutes(router *mux.Router) {
	router.PathPrefix("/docs").Handler(httpSwagger.Handler(httpSwagger.URL("/openapi.json")))

	router.HandleFunc("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(openAPISpec))
	}).Methods("GET")
}
