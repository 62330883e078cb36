package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// runUpdate is the body of the Load command (§4.5, "update" ->
// "updateImpl"). It reconciles on-disk layout and adapters with the new
// descriptor. On failure it returns a *DeploymentError; the caller
// (execLoad) is responsible for the rollback-or-destroy policy.
func (s *Supervisor) runUpdate(desc *Descriptor) error {
	s.mu.Lock()
	old := s.descriptor
	wipe := s.pendingWipe
	s.pendingWipe = false
	s.mu.Unlock()

	dir := s.serverDirLocked("")

	// Step 1: optionally wipe the server directory first.
	if wipe {
		if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			return &DeploymentError{ServerID: s.id, Step: "wipe", Err: err}
		}
	}

	// Step 2: reconcile adapters.
	newAdapterIDs := desc.adapterIDs()
	lifetimeIDs := desc.serverLifetimeAdapterIDs()

	s.mu.Lock()
	for id := range s.adapters {
		if !newAdapterIDs[id] {
			if s.adapterRegistry != nil {
				s.adapterRegistry.Destroy(s.adapters[id])
			}
			delete(s.adapters, id)
		}
	}
	for id := range newAdapterIDs {
		if _, exists := s.adapters[id]; exists {
			continue
		}
		if s.adapterRegistry != nil {
			category := supervisorCategory + "Adapter"
			name := s.id + "-" + id
			handle, err := s.adapterRegistry.Register(category, name, id)
			if err != nil {
				s.mu.Unlock()
				return &DeploymentError{ServerID: s.id, Step: "reconcile-adapters", Err: err}
			}
			s.adapters[id] = handle
		}
	}
	s.serverLifetimeAdapters = lifetimeIDs
	s.mu.Unlock()

	// Step 3: reset activation if it was disabled only due to failure.
	s.mu.Lock()
	if s.activation == ActivationDisabled && s.hasFailureTime {
		s.clearFailureLocked()
		s.activation = desc.Activation
	} else if s.activation != ActivationDisabled {
		s.activation = desc.Activation
	}
	s.mu.Unlock()

	// Step 4: resolve user account.
	resolvedUser, err := s.resolveUser(desc)
	if err != nil {
		return &DeploymentError{ServerID: s.id, Step: "resolve-user", Err: err}
	}
	desc.User = resolvedUser

	// Step 5: parse timeouts.
	actTimeout := s.parseTimeoutOrDefault(desc.ActivationTimeout)
	deactTimeout := s.parseTimeoutOrDefault(desc.DeactivationTimeout)

	// Step 6: canonicalize log paths.
	for i, log := range desc.Logs {
		desc.Logs[i] = canonicalLogPath(log, dir)
	}

	// Step 7: inject synthesized properties.
	s.injectSyntheticProperties(desc)

	// Step 8: session-release-only update stops here (disk not rewritten).
	sessionReleaseOnly := old != nil &&
		desc.Activation == ActivationSession &&
		old.Revision == desc.Revision &&
		old.SessionID != "" &&
		desc.SessionID == ""

	s.mu.Lock()
	s.descriptor = desc
	s.mu.Unlock()

	if sessionReleaseOnly {
		return nil
	}

	// Step 9: write revision file; ensure layout directories exist.
	if err := ensureLayoutDirs(dir); err != nil {
		return &DeploymentError{ServerID: s.id, Step: "ensure-layout", Err: &FileSystemFaultError{ServerID: s.id, Path: dir, Err: err}}
	}
	if err := writeRevisionFile(dir, RevisionRecord{Application: desc.Application, UUID: desc.UUID, Revision: desc.Revision}); err != nil {
		return &DeploymentError{ServerID: s.id, Step: "write-revision", Err: &FileSystemFaultError{ServerID: s.id, Path: dir, Err: err}}
	}

	// Step 10: write one config file per property set; remove orphans.
	keep := make(map[string]bool, len(desc.Properties))
	for _, ps := range desc.Properties {
		keep[ps.Name] = true
		if err := writeConfigFile(dir, ps.Name, ps.Lines); err != nil {
			return &DeploymentError{ServerID: s.id, Step: "write-config", Err: &FileSystemFaultError{ServerID: s.id, Path: ps.Name, Err: err}}
		}
	}
	if err := removeOrphanConfigFiles(dir, keep); err != nil {
		return &DeploymentError{ServerID: s.id, Step: "prune-config", Err: &FileSystemFaultError{ServerID: s.id, Path: dir, Err: err}}
	}

	// Step 11: write DB_CONFIG per db environment; remove orphans.
	keepDB := make(map[string]bool, len(desc.DBEnvs))
	for _, dbe := range desc.DBEnvs {
		keepDB[dbe.Name] = true
		if err := writeDBConfig(dir, dbe.Name, dbe.Properties); err != nil {
			return &DeploymentError{ServerID: s.id, Step: "write-dbconfig", Err: &FileSystemFaultError{ServerID: s.id, Path: dbe.Name, Err: err}}
		}
	}
	if err := removeOrphanDBEnvs(dir, keepDB); err != nil {
		return &DeploymentError{ServerID: s.id, Step: "prune-dbenvs", Err: &FileSystemFaultError{ServerID: s.id, Path: dir, Err: err}}
	}

	// Step 12: chown the layout to the user's uid/gid whenever the user
	// resolves to one.
	if uid, gid, changed := s.resolveUidGid(desc.User); changed {
		if err := chownLayout(dir, uid, gid); err != nil {
			return &DeploymentError{ServerID: s.id, Step: "chown", Err: &FileSystemFaultError{ServerID: s.id, Path: dir, Err: err}}
		}
	}

	// Step 13: descriptor changed non-trivially -> require replication wait.
	s.mu.Lock()
	if old == nil || (!sessionReleaseOnly && !Equivalent(old, desc)) {
		s.waitForReplication = true
	}
	s.descriptor.ActivationTimeoutSeconds = actTimeout
	s.descriptor.DeactivationTimeoutSeconds = deactTimeout
	s.mu.Unlock()

	return nil
}

// supervisorCategory is the fixed prefix used to build the deterministic
// adapter servant identity of §4.5 step 2: "{category}Adapter" /
// "{serverID}-{adapterID}".
const supervisorCategory = "IceGrid.Server."

func (s *Supervisor) resolveUser(desc *Descriptor) (string, error) {
	allowRoot := s.nodeCfg != nil && s.nodeCfg.AllowRunningServersAsRoot

	if desc.User == "" {
		if runtime.GOOS != "windows" && os.Geteuid() == 0 {
			if desc.SessionID != "" {
				return desc.SessionID, nil
			}
			return "nobody", nil
		}
		return "", nil
	}

	user := desc.User
	if s.userMapper != nil {
		mapped, err := s.userMapper.Map(user)
		if err != nil {
			return "", err
		}
		user = mapped
	}

	if runtime.GOOS == "windows" {
		self, err := currentUsername()
		if err == nil && user != self {
			return "", fmt.Errorf("cannot run as %q on this node", user)
		}
		return user, nil
	}

	if user == "root" && !allowRoot {
		return "", fmt.Errorf("running as root is not permitted by this node")
	}
	if os.Geteuid() != 0 && user != "" {
		if self, err := currentUsername(); err == nil && user != self {
			return "", fmt.Errorf("cannot impersonate user %q as a non-root process", user)
		}
	}
	return user, nil
}

func (s *Supervisor) parseTimeoutOrDefault(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		if s.nodeCfg != nil {
			return s.nodeCfg.WaitTime
		}
		return 60
	}
	return n
}

// injectSyntheticProperties implements §4.5 step 7: Ice.Default.Locator
// if absent, the node's property overrides appended, and (when an output
// directory is configured) Ice.StdOut/Ice.StdErr defaults.
func (s *Supervisor) injectSyntheticProperties(desc *Descriptor) {
	for i := range desc.Properties {
		ps := &desc.Properties[i]
		if !hasProperty(ps.Lines, "Ice.Default.Locator") {
			ps.Lines = append(ps.Lines, "Ice.Default.Locator=")
		}
		if s.nodeCfg != nil {
			ps.Lines = append(ps.Lines, s.nodeCfg.PropertyOverrides...)
			if s.nodeCfg.OutputDir != "" {
				if !hasProperty(ps.Lines, "Ice.StdOut") {
					ps.Lines = append(ps.Lines, fmt.Sprintf("Ice.StdOut=%s", filepath.Join(s.nodeCfg.OutputDir, desc.ID+".out")))
				}
				if !hasProperty(ps.Lines, "Ice.StdErr") {
					errTarget := filepath.Join(s.nodeCfg.OutputDir, desc.ID+".err")
					if s.nodeCfg.RedirectStdErrToStdOut {
						errTarget = filepath.Join(s.nodeCfg.OutputDir, desc.ID+".out")
					}
					ps.Lines = append(ps.Lines, fmt.Sprintf("Ice.StdErr=%s", errTarget))
				}
			}
		}
	}
}

func hasProperty(lines []string, name string) bool {
	for _, l := range lines {
		if k, _, ok := splitProperty(l); ok && k == name {
			return true
		}
	}
	return false
}

// currentUsername reports the node process's own user name, taken from
// $USER.
var currentUsername = func() (string, error) {
	if u := os.Getenv("USER"); u != "" {
		return u, nil
	}
	return "", fmt.Errorf("unable to determine current user")
}

// resolveUidGid resolves user's uid/gid for the chown step through the OS
// password database (lookupUidGid); changed is false when user is empty
// or the lookup fails.
func (s *Supervisor) resolveUidGid(user string) (uid, gid int, changed bool) {
	if user == "" {
		return 0, 0, false
	}
	return lookupUidGid(user)
}
