// Package node provides the node-local collaborators a
// internal/supervisor.Supervisor needs: process activation, registry
// session plumbing, user-account mapping, adapter registration, and
// distribution patching.
package node

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"sync"
	"syscall"

	"github.com/gridnode/supervisor/internal/supervisor"
	pkglogger "github.com/gridnode/supervisor/pkg/logger"
)

// OSActivator forks, tracks, signals, and reaps managed server processes
// with os/exec, the way a node-local process driver owns a task's
// lifecycle (start, wait for exit in the background, signal, kill).
type OSActivator struct {
	logger *slog.Logger

	mu      sync.Mutex
	tracked map[int]*trackedProcess
}

type trackedProcess struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// NewOSActivator returns an Activator that runs managed servers as child
// processes of the node daemon.
func NewOSActivator(logger *slog.Logger) *OSActivator {
	if logger == nil {
		logger = slog.Default()
	}
	return &OSActivator{
		logger:  pkglogger.WithComponent(logger, "activator"),
		tracked: make(map[int]*trackedProcess),
	}
}

var _ supervisor.Activator = (*OSActivator)(nil)

// Activate starts req.Exe with req.Options/req.Env under req.Pwd,
// optionally impersonating req.User, and returns its pid. terminatedCb
// fires exactly once from a background goroutine when the process exits,
// carrying the exit code, the signal name if killed by one, and a
// human-readable message.
func (a *OSActivator) Activate(ctx context.Context, req supervisor.ActivationRequest, terminatedCb func(exitCode int, signal string, message string)) (int, error) {
	cmd := exec.Command(req.Exe, req.Options...)
	cmd.Dir = req.Pwd
	cmd.Env = append(os.Environ(), req.Env...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return 0, fmt.Errorf("opening stdin pipe for %q: %w", req.Exe, err)
	}

	if req.User != "" {
		if err := setCredential(cmd, req.User); err != nil {
			return 0, fmt.Errorf("resolving credential for %q: %w", req.User, err)
		}
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting %q: %w", req.Exe, err)
	}

	pid := cmd.Process.Pid
	a.mu.Lock()
	a.tracked[pid] = &trackedProcess{cmd: cmd, stdin: stdin}
	a.mu.Unlock()

	go a.reap(pid, cmd, &stderr, terminatedCb)

	return pid, nil
}

func (a *OSActivator) reap(pid int, cmd *exec.Cmd, stderr *bytes.Buffer, terminatedCb func(int, string, string)) {
	err := cmd.Wait()

	a.mu.Lock()
	delete(a.tracked, pid)
	a.mu.Unlock()

	exitCode := 0
	signal := ""
	message := ""

	if err != nil {
		message = stderr.String()
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				signal = "SIG" + status.Signal().String()
				exitCode = -1
			}
		} else {
			exitCode = -1
			message = err.Error()
		}
	}

	a.logger.Info("server process terminated", "pid", pid, "exit_code", exitCode, "signal", signal)
	terminatedCb(exitCode, signal, message)
}

// Deactivate sends SIGTERM to the process group led by pid.
func (a *OSActivator) Deactivate(pid int) error {
	return syscall.Kill(-pid, syscall.SIGTERM)
}

// Kill sends SIGKILL to the process group led by pid.
func (a *OSActivator) Kill(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}

// SendSignal delivers an arbitrary named signal to pid.
func (a *OSActivator) SendSignal(pid int, signalName string) error {
	sig, err := parseSignal(signalName)
	if err != nil {
		return err
	}
	return syscall.Kill(pid, sig)
}

// WriteMessage writes msg to the process's stdin when fd is 0; other fds
// are not supported for a child this activator itself spawned.
func (a *OSActivator) WriteMessage(pid int, fd int, msg string) error {
	if fd != 0 {
		return fmt.Errorf("writeMessage: unsupported fd %d", fd)
	}
	a.mu.Lock()
	tp, ok := a.tracked[pid]
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("writeMessage: no tracked process with pid %d", pid)
	}
	_, err := tp.stdin.Write([]byte(msg))
	return err
}

func setCredential(cmd *exec.Cmd, username string) error {
	u, err := user.Lookup(username)
	if err != nil {
		return err
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return err
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return err
	}
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Credential = &syscall.Credential{Uid: uint32(uid), Gid: uint32(gid)}
	return nil
}

var signalNames = map[string]syscall.Signal{
	"SIGHUP":  syscall.SIGHUP,
	"SIGINT":  syscall.SIGINT,
	"SIGQUIT": syscall.SIGQUIT,
	"SIGKILL": syscall.SIGKILL,
	"SIGTERM": syscall.SIGTERM,
	"SIGUSR1": syscall.SIGUSR1,
	"SIGUSR2": syscall.SIGUSR2,
	"SIGABRT": syscall.SIGABRT,
}

func parseSignal(name string) (syscall.Signal, error) {
	if sig, ok := signalNames[name]; ok {
		return sig, nil
	}
	return 0, fmt.Errorf("unknown signal %q", name)
}
