package supervisor

import "context"

// Activator is the node-global subsystem that forks, tracks, signals,
// and reaps child processes (§1, out of scope — implemented by
// internal/node.Activator).
type Activator interface {
	// Activate forks/execs the described process and returns its pid.
	// terminatedCb is invoked exactly once, from a background goroutine,
	// when the process exits.
	Activate(ctx context.Context, req ActivationRequest, terminatedCb func(exitCode int, signal string, message string)) (pid int, err error)

	// Deactivate asks the process identified by pid to shut down
	// gracefully (SIGTERM or platform equivalent).
	Deactivate(pid int) error

	// Kill forcibly terminates the process identified by pid.
	Kill(pid int) error

	// SendSignal delivers an arbitrary signal to pid.
	SendSignal(pid int, signal string) error

	// WriteMessage writes msg to the given fd (0=stdin) of the process.
	WriteMessage(pid int, fd int, msg string) error
}

// ActivationRequest carries everything the Activator needs to fork/exec
// one managed server.
type ActivationRequest struct {
	ServerID string
	Exe      string
	Pwd      string
	User     string
	Options  []string
	Env      []string
}

// RegistrySession models replica identity, application-update waits, and
// user-account-mapping delegation to the registry (§1, out of scope).
type RegistrySession interface {
	// WaitForApplicationUpdate asks the master registry to block until
	// the named application's descriptors have reached this replica,
	// then invokes cb with nil on success or with the error.
	WaitForApplicationUpdate(ctx context.Context, application string, uuid string, revision int64, cb func(err error))

	// IsMaster reports whether replicaName is the registry master
	// (masters skip revision checks, §6).
	IsMaster(replicaName string) bool
}

// UserAccountMapper maps a descriptor's logical user name to an OS
// account name (§4.5 step 4).
type UserAccountMapper interface {
	Map(user string) (string, error)
}

// AdapterHandle is a registered object-adapter servant.
type AdapterHandle interface {
	ID() string
	Destroy()
}

// AdapterRegistry registers/destroys per-server object-adapter servants
// under the deterministic identity scheme of §4.5 step 2.
type AdapterRegistry interface {
	Register(category, name, adapterID string) (AdapterHandle, error)
	Destroy(handle AdapterHandle)
	// ClearProxyCache drops any cached direct proxy for the adapter, as
	// required before each activation attempt (§4.6).
	ClearProxyCache(handle AdapterHandle)
}

// Patcher mirrors distribution content out of band (§1, out of scope).
type Patcher interface {
	// Patch starts (or joins) a patch of dir from src and invokes cb
	// when complete or when destroyed is signalled.
	Patch(ctx context.Context, src string, dirs []string, cb func(err error))
}
