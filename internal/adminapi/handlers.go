package adminapi

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"github.com/gridnode/supervisor/internal/node"
	"github.com/gridnode/supervisor/internal/supervisor"
)

// callbackTimeout bounds how long an admin request waits for a queued
// command's asynchronous completion callback before returning 202
// Accepted instead of the final result.
const callbackTimeout = 10 * time.Second

// Handlers implements the read-only-plus-lifecycle admin operations
// against a node.Manager's Supervisor collection (§9's admin surface:
// get state, get pid, load/start/stop/destroy, file-tail).
type Handlers struct {
	manager *node.Manager
}

func NewHandlers(manager *node.Manager) *Handlers {
	return &Handlers{manager: manager}
}

func serverID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) (*supervisor.Supervisor, bool) {
	id := serverID(r)
	s, ok := h.manager.Lookup(id)
	if !ok {
		WriteError(w, GetRequestID(r.Context()), NewAPIError(CodeNotFound, "server "+id+" not found"))
		return nil, false
	}
	return s, true
}

// ListServers handles GET /servers.
func (h *Handlers) ListServers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"servers": h.manager.List()})
}

// GetState handles GET /servers/{id}/state.
func (h *Handlers) GetState(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":    s.ID(),
		"state": string(s.GetState()),
		"pid":   s.GetPid(),
	})
}

// GetPid handles GET /servers/{id}/pid.
func (h *Handlers) GetPid(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"pid": s.GetPid()})
}

// Load handles POST /servers/{id}/load, decoding a Descriptor body and
// enqueuing it against the id's Supervisor (creating one if this is the
// first reference, per §6's "loading a never-seen id starts a fresh
// Supervisor").
func (h *Handlers) Load(w http.ResponseWriter, r *http.Request) {
	id := serverID(r)
	var desc supervisor.Descriptor
	if err := json.NewDecoder(r.Body).Decode(&desc); err != nil {
		WriteError(w, GetRequestID(r.Context()), NewAPIError(CodeRequestInvalid, "invalid descriptor body: "+err.Error()))
		return
	}
	desc.ID = id

	replicaName := r.URL.Query().Get("replica")
	s := h.manager.Get(id)

	result := make(chan supervisor.LoadResult, 1)
	if err := s.Load(&desc, replicaName, func(r supervisor.LoadResult) { result <- r }); err != nil {
		WriteError(w, GetRequestID(r.Context()), TranslateError(err))
		return
	}

	select {
	case res := <-result:
		if res.Err != nil {
			WriteError(w, GetRequestID(r.Context()), TranslateError(res.Err))
			return
		}
		writeJSON(w, http.StatusOK, res)
	case <-time.After(callbackTimeout):
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "load in progress"})
	}
}

// Start handles POST /servers/{id}/start.
func (h *Handlers) Start(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	result := make(chan supervisor.StartResult, 1)
	if err := s.Start(supervisor.ActivationManual, func(r supervisor.StartResult) { result <- r }); err != nil {
		WriteError(w, GetRequestID(r.Context()), TranslateError(err))
		return
	}
	h.awaitStartResult(w, r, result)
}

// Stop handles POST /servers/{id}/stop.
func (h *Handlers) Stop(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	result := make(chan supervisor.StartResult, 1)
	if err := s.Stop(func(r supervisor.StartResult) { result <- r }); err != nil {
		WriteError(w, GetRequestID(r.Context()), TranslateError(err))
		return
	}
	h.awaitStartResult(w, r, result)
}

func (h *Handlers) awaitStartResult(w http.ResponseWriter, r *http.Request, result chan supervisor.StartResult) {
	select {
	case res := <-result:
		writeJSON(w, http.StatusOK, res)
	case <-time.After(callbackTimeout):
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "in progress"})
	}
}

// destroyRequest is the optional JSON body for POST /servers/{id}/destroy.
type destroyRequest struct {
	UUID     string `json:"uuid"`
	Revision int64  `json:"revision"`
	WipeDir  bool   `json:"wipeDir"`
}

// Destroy handles POST /servers/{id}/destroy.
func (h *Handlers) Destroy(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req destroyRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, GetRequestID(r.Context()), NewAPIError(CodeRequestInvalid, "invalid destroy body: "+err.Error()))
			return
		}
	}

	replicaName := r.URL.Query().Get("replica")
	result := make(chan supervisor.DestroyResult, 1)
	s.Destroy(req.UUID, req.Revision, replicaName, req.WipeDir, func(r supervisor.DestroyResult) { result <- r })

	select {
	case res := <-result:
		if res.Success {
			h.manager.Remove(s.ID())
		}
		writeJSON(w, http.StatusOK, res)
	case <-time.After(callbackTimeout):
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "destroy in progress"})
	}
}

// TailFile handles GET /servers/{id}/files/{name}, streaming the last N
// lines of the named log (§6/§12.1's file-cache surface). name may be
// "stdout", "stderr", or "#<descriptor log name>".
func (h *Handlers) TailFile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	name := mux.Vars(r)["name"]

	path, err := s.GetFilePath(name)
	if err != nil {
		WriteError(w, GetRequestID(r.Context()), TranslateError(err))
		return
	}

	f, err := os.Open(path)
	if err != nil {
		WriteError(w, GetRequestID(r.Context()), NewAPIError(CodeNotFound, "log file unavailable: "+err.Error()))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	lines := tailLines(f, 200)
	for _, line := range lines {
		io.WriteString(w, line)
		io.WriteString(w, "\n")
	}
}

// tailLines returns up to the last n lines of f, read in full (the
// caller is responsible for not pointing this at unbounded files).
func tailLines(f *os.File, n int) []string {
	var all []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		all = append(all, scanner.Text())
	}
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Healthz handles GET /healthz.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"servers": len(h.manager.List()),
	})
}
