package supervisor

// CommandKind identifies one of the five intent slots (§3).
type CommandKind int

const (
	CommandStop CommandKind = iota
	CommandDestroy
	CommandLoad
	CommandPatch
	CommandStart
	numCommandKinds
)

func (k CommandKind) String() string {
	switch k {
	case CommandStop:
		return "stop"
	case CommandDestroy:
		return "destroy"
	case CommandLoad:
		return "load"
	case CommandPatch:
		return "patch"
	case CommandStart:
		return "start"
	default:
		return "unknown"
	}
}

// schedulerPriority is the fixed execution order of §4.3:
// stop > destroy > load > patch > start.
var schedulerPriority = [numCommandKinds]CommandKind{
	CommandStop, CommandDestroy, CommandLoad, CommandPatch, CommandStart,
}

// StartResult is delivered to Start/Stop callbacks (§4.2).
type StartResult struct {
	Success bool
	Reason  string
}

// LoadResult is delivered to Load callbacks (§4.2): the server proxy id,
// the current adapter id->proxy-placeholder map, and the effective
// timeouts.
type LoadResult struct {
	ServerID            string
	AdapterProxies      map[string]string
	ActivationTimeout   int
	DeactivationTimeout int
	Err                 error
}

// DestroyResult is delivered to Destroy callbacks.
type DestroyResult struct {
	Success bool
	Err     error
}

// command is the tagged-sum contract shared by every pending intent
// (§9: "model as a tagged sum of commands sharing {precondition,
// nextState, execute} plus command-specific callback queues").
type command struct {
	kind CommandKind

	// precondition reports whether this command may execute from s.
	precondition func(s InternalState) bool

	// nextState is installed atomically before the lock is released and
	// the command body runs.
	nextState InternalState

	// execute is not set by the constructors below; dispatch in
	// scheduler.go runs each kind's body (the exec* functions) instead.
	execute func(sup *Supervisor)

	// Callback queues, coalesced: a new intent on an occupied slot
	// appends here rather than replacing the slot.
	loadCallbacks    []func(LoadResult)
	startCallbacks   []func(StartResult)
	stopCallbacks    []func(StartResult)
	destroyCallbacks []func(DestroyResult)
	patchCallbacks   []func(error)

	// loadDescriptor/loadReplica carry the payload for a Load command.
	loadDescriptor *Descriptor
	loadReplica    string

	// destroyUUID/destroyRevision/destroyReplica carry the payload for a
	// revision-checked Destroy; wipeDir additionally makes execDestroy
	// remove the server directory (§12.4).
	destroyUUID     string
	destroyRevision int64
	destroyReplica  string
	wipeDir         bool
	loadFailure     bool

	// startMode distinguishes Manual from Always starts (§6, §9 open
	// question about the Manual/Always asymmetry on an Active server).
	startMode ActivationMode

	// patchShutdown mirrors patch(shutdown) — whether the caller allows
	// stopping a running server first.
	patchShutdown bool
}

func newStopCommand() *command {
	return &command{
		kind: CommandStop,
		precondition: func(s InternalState) bool {
			return inSet(s, StateWaitForActivation, StateActivationTimeout, StateActive)
		},
		nextState: StateDeactivating,
	}
}

func newDestroyCommand(uuid string, revision int64, replica string) *command {
	return &command{
		kind: CommandDestroy,
		precondition: func(s InternalState) bool {
			return s == StateInactive
		},
		nextState:       StateDestroying,
		destroyUUID:     uuid,
		destroyRevision: revision,
		destroyReplica:  replica,
	}
}

func newLoadCommand(desc *Descriptor, replica string) *command {
	return &command{
		kind: CommandLoad,
		precondition: func(s InternalState) bool {
			return s == StateInactive
		},
		nextState:      StateLoading,
		loadDescriptor: desc,
		loadReplica:    replica,
	}
}

func newPatchCommand(shutdown bool) *command {
	return &command{
		kind: CommandPatch,
		precondition: func(s InternalState) bool {
			return s == StateInactive
		},
		nextState:     StatePatching,
		patchShutdown: shutdown,
	}
}

func newStartCommand(mode ActivationMode) *command {
	return &command{
		kind: CommandStart,
		precondition: func(s InternalState) bool {
			return s == StateInactive
		},
		nextState: StateActivating,
		startMode: mode,
	}
}
