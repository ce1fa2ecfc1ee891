//go:build !windows

package sysprims

import (
	"os/exec"
	"syscall"
	"time"
)

// unixGroup is the POSIX nativeGroup: a process group id. Because
// setpgid(0,0) makes a process its own group leader, pgid() always
// equals the spawned child's PID for a Guaranteed handle.
type unixGroup struct {
	pg uint32
}

func (g *unixGroup) signal(n int32) error {
	if err := syscall.Kill(-int(g.pg), syscall.Signal(n)); err != nil {
		return mapErrno("killpg", err)
	}
	return nil
}

func (g *unixGroup) close() error {
	// The OS reclaims a process group automatically once it is empty;
	// there is no handle to release the way a Windows Job Object needs
	// one. Nothing to do.
	return nil
}

func (g *unixGroup) pgid() (uint32, bool) { return g.pg, true }

// mapErrno classifies a syscall error into an ErrorKind.
func mapErrno(op string, err error) error {
	if err == nil {
		return nil
	}
	switch err {
	case syscall.ESRCH:
		return newErr(ErrNotFound, op, "no such process", err)
	case syscall.EPERM, syscall.EACCES:
		return newErr(ErrPermissionDenied, op, "operation not permitted", err)
	default:
		return newErr(ErrSystem, op, err.Error(), err)
	}
}

// spawnChild launches command with args under the given grouping mode.
// On group-creation failure it retries once without grouping so the
// spawn itself still succeeds, per spec.md §4.1 ("the spawn must still
// succeed; the returned handle carries reliability=BestEffort and a
// diagnostic warning").
func spawnChild(command string, args []string, cwd string, env map[string]string, mode GroupingMode) (*ChildHandle, error) {
	cmd := buildCmd(command, args, cwd, env)

	wantGroup := mode == GroupByDefault
	if wantGroup {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	if err := cmd.Start(); err != nil {
		if wantGroup {
			// Retry once without group creation: distinguishes a
			// grouping failure (recoverable, degrades to best-effort)
			// from a genuine spawn failure (not recoverable).
			cmd2 := buildCmd(command, args, cwd, env)
			if err2 := cmd2.Start(); err2 == nil {
				pid := uint32(cmd2.Process.Pid)
				gh := &GroupHandle{
					Pid:         pid,
					Reliability: BestEffort,
					Warnings:    []string{"setpgid failed; process group not established: " + err.Error()},
				}
				gh.refs.Store(1)
				groupRegistry.put(pid, gh)
				return &ChildHandle{Pid: pid, Group: gh, cmd: cmd2}, nil
			}
		}
		return nil, classifySpawnError(command, err)
	}

	pid := uint32(cmd.Process.Pid)
	if !wantGroup {
		return &ChildHandle{Pid: pid, cmd: cmd}, nil
	}

	gh := &GroupHandle{
		Pid:         pid,
		Reliability: Guaranteed,
		native:      &unixGroup{pg: pid},
	}
	gh.refs.Store(1)
	groupRegistry.put(pid, gh)
	return &ChildHandle{Pid: pid, Group: gh, cmd: cmd}, nil
}

func buildCmd(command string, args []string, cwd string, env map[string]string) *exec.Cmd {
	cmd := exec.Command(command, args...)
	cmd.Dir = cwd
	if env != nil {
		cmd.Env = mergeEnv(env)
	}
	return cmd
}

func classifySpawnError(command string, err error) error {
	if errno, ok := err.(*exec.Error); ok {
		if errno.Err == exec.ErrNotFound {
			return newErr(ErrNotFound, "spawn", "command not found: "+command, err)
		}
	}
	if pathErr, ok := asPathError(err); ok {
		switch pathErr {
		case syscall.ENOENT:
			return newErr(ErrNotFound, "spawn", "command not found: "+command, err)
		case syscall.EACCES, syscall.EPERM:
			return newErr(ErrPermissionDenied, "spawn", "command not executable: "+command, err)
		}
	}
	return newErr(ErrSpawnFailed, "spawn", err.Error(), err)
}

// signalPID delivers spec to a single validated PID.
func signalPID(pid PidValue, spec SignalSpec) error {
	n, ok := spec.Number()
	if !ok {
		return newErr(ErrNotSupported, "signal_pid", spec.String()+" has no mapping on "+Platform(), nil)
	}
	if err := syscall.Kill(pid.Int(), syscall.Signal(n)); err != nil {
		return mapErrno("signal_pid", err)
	}
	return nil
}

// selfPGID returns getpgid(0).
func selfPGID() (uint32, error) {
	pg, err := syscall.Getpgid(0)
	if err != nil {
		return 0, mapErrno("self_getpgid", err)
	}
	return uint32(pg), nil
}

// selfSID returns getsid(0).
func selfSID() (uint32, error) {
	// The syscall package has no Getsid wrapper; call getsid(2) directly.
	sid, _, errno := syscall.RawSyscall(syscall.SYS_GETSID, 0, 0, 0)
	if errno != 0 {
		return 0, mapErrno("self_getsid", errno)
	}
	return uint32(sid), nil
}

// foreignPGID looks up the process group id of an arbitrary (not
// necessarily our own child) PID, for Tree Terminator step 2.
func foreignPGID(pid uint32) (uint32, error) {
	pg, err := syscall.Getpgid(int(pid))
	if err != nil {
		return 0, mapErrno("getpgid", err)
	}
	return uint32(pg), nil
}

// signalForeignGroup kills an OS process group we did not create
// (no GroupHandle owns it), used by the Tree Terminator when a target
// pid is itself a group leader but was not spawned by this package.
func signalForeignGroup(pg uint32, spec SignalSpec) error {
	n, ok := spec.Number()
	if !ok {
		return newErr(ErrNotSupported, "signal_group", spec.String()+" has no mapping on "+Platform(), nil)
	}
	if err := syscall.Kill(-int(pg), syscall.Signal(n)); err != nil {
		return mapErrno("killpg", err)
	}
	return nil
}

func decodeExit(cmd *exec.Cmd, waitErr error) int {
	if waitErr == nil {
		return 0
	}
	if ee, ok := waitErr.(*exec.ExitError); ok {
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok {
			if ws.Signaled() {
				return 128 + int(ws.Signal())
			}
			return ws.ExitStatus()
		}
		return ee.ExitCode()
	}
	return -1
}

// waitForeignPID polls for the exit of a PID we did not spawn (so we
// cannot call Wait() on it) using repeated liveness checks, a baseline
// acceptable per spec.md §9 ("a naive busy-poll is acceptable").
func waitForeignPID(pid uint32, timeout time.Duration) (exited bool) {
	deadline := time.Now().Add(timeout)
	interval := 10 * time.Millisecond
	for {
		if !pidAlive(pid) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		remaining := time.Until(deadline)
		if remaining < interval {
			time.Sleep(remaining)
		} else {
			time.Sleep(interval)
		}
	}
}

func pidAlive(pid uint32) bool {
	err := syscall.Kill(int(pid), 0)
	if err == nil {
		return true
	}
	return err != syscall.ESRCH
}
