//go:build windows

package sysprims

import (
	"os/exec"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsGroup is the Windows nativeGroup: a Job Object configured with
// JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE, so closing the handle is itself
// the terminal action (spec.md §4.1).
type windowsGroup struct {
	job windows.Handle
}

func (g *windowsGroup) signal(n int32) error {
	// Windows has no graceful group-signal primitive. TerminateRequest
	// (SIGTERM) and ForceKill (SIGKILL) both terminate the whole job;
	// any other number (e.g. Interrupt's SIGINT) is NotSupported here.
	if n != SIGKILL && n != SIGTERM {
		return newErr(ErrNotSupported, "signal_group", "graceful group signaling is not supported on windows", nil)
	}
	if err := windows.TerminateJobObject(g.job, 1); err != nil {
		return newErr(ErrSystem, "signal_group", err.Error(), err)
	}
	return nil
}

func (g *windowsGroup) close() error {
	return windows.CloseHandle(g.job)
}

func (g *windowsGroup) pgid() (uint32, bool) { return 0, false }

func createJobObject() (windows.Handle, error) {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return 0, err
	}
	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{
		BasicLimitInformation: windows.JOBOBJECT_BASIC_LIMIT_INFORMATION{
			LimitFlags: windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE,
		},
	}
	if _, err := windows.SetInformationJobObject(
		job,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	); err != nil {
		windows.CloseHandle(job)
		return 0, err
	}
	return job, nil
}

func spawnChild(command string, args []string, cwd string, env map[string]string, mode GroupingMode) (*ChildHandle, error) {
	cmd := exec.Command(command, args...)
	cmd.Dir = cwd
	if env != nil {
		cmd.Env = mergeEnv(env)
	}
	wantGroup := mode == GroupByDefault
	if wantGroup {
		cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: windows.CREATE_NEW_PROCESS_GROUP}
	}

	if err := cmd.Start(); err != nil {
		return nil, classifySpawnError(command, err)
	}
	pid := uint32(cmd.Process.Pid)

	if !wantGroup {
		return &ChildHandle{Pid: pid, cmd: cmd}, nil
	}

	// The job must be assigned before the child creates its own
	// children; Start() has already resumed the child's primary thread
	// by the time we get here, so there is an unavoidable, documented
	// race (see SPEC_FULL.md §4.1). We narrow it by assigning
	// immediately.
	job, err := createJobObject()
	if err != nil {
		gh := &GroupHandle{
			Pid:         pid,
			Reliability: BestEffort,
			Warnings:    []string{"CreateJobObject failed; process tree not guaranteed: " + err.Error()},
		}
		gh.refs.Store(1)
		groupRegistry.put(pid, gh)
		return &ChildHandle{Pid: pid, Group: gh, cmd: cmd}, nil
	}

	procHandle, err := windows.OpenProcess(windows.PROCESS_ALL_ACCESS, false, uint32(cmd.Process.Pid))
	if err != nil {
		windows.CloseHandle(job)
		gh := &GroupHandle{
			Pid:         pid,
			Reliability: BestEffort,
			Warnings:    []string{"OpenProcess failed; could not assign job object: " + err.Error()},
		}
		gh.refs.Store(1)
		groupRegistry.put(pid, gh)
		return &ChildHandle{Pid: pid, Group: gh, cmd: cmd}, nil
	}
	defer windows.CloseHandle(procHandle)

	if err := windows.AssignProcessToJobObject(job, procHandle); err != nil {
		windows.CloseHandle(job)
		gh := &GroupHandle{
			Pid:         pid,
			Reliability: BestEffort,
			Warnings:    []string{"AssignProcessToJobObject failed; process tree not guaranteed: " + err.Error()},
		}
		gh.refs.Store(1)
		groupRegistry.put(pid, gh)
		return &ChildHandle{Pid: pid, Group: gh, cmd: cmd}, nil
	}

	gh := &GroupHandle{
		Pid:         pid,
		Reliability: Guaranteed,
		native:      &windowsGroup{job: job},
	}
	gh.refs.Store(1)
	groupRegistry.put(pid, gh)
	return &ChildHandle{Pid: pid, Group: gh, cmd: cmd}, nil
}

func classifySpawnError(command string, err error) error {
	if errno, ok := err.(*exec.Error); ok && errno.Err == exec.ErrNotFound {
		return newErr(ErrNotFound, "spawn", "command not found: "+command, err)
	}
	if errno, ok := asPathError(err); ok {
		switch errno {
		case windows.ERROR_FILE_NOT_FOUND, windows.ERROR_PATH_NOT_FOUND:
			return newErr(ErrNotFound, "spawn", "command not found: "+command, err)
		case windows.ERROR_ACCESS_DENIED:
			return newErr(ErrPermissionDenied, "spawn", "command not executable: "+command, err)
		}
	}
	return newErr(ErrSpawnFailed, "spawn", err.Error(), err)
}

// signalPID delivers spec to a single PID. TerminateRequest and
// ForceKill both resolve to TerminateProcess; Interrupt is best-effort
// via GenerateConsoleCtrlEvent; anything else is NotSupported.
func signalPID(pid PidValue, spec SignalSpec) error {
	n, ok := spec.Number()
	if !ok {
		return newErr(ErrNotSupported, "signal_pid", spec.String()+" has no mapping on windows", nil)
	}
	if n == SIGINT {
		return sendCtrlBreak(pid.Uint32())
	}
	handle, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, pid.Uint32())
	if err != nil {
		return classifyOpenProcessError(err)
	}
	defer windows.CloseHandle(handle)
	if err := windows.TerminateProcess(handle, 1); err != nil {
		return newErr(ErrSystem, "signal_pid", err.Error(), err)
	}
	return nil
}

func classifyOpenProcessError(err error) error {
	if err == windows.ERROR_INVALID_PARAMETER {
		return newErr(ErrNotFound, "signal_pid", "no such process", err)
	}
	if err == windows.ERROR_ACCESS_DENIED {
		return newErr(ErrPermissionDenied, "signal_pid", "access denied", err)
	}
	return newErr(ErrSystem, "signal_pid", err.Error(), err)
}

func sendCtrlBreak(pid uint32) error {
	if err := windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, pid); err != nil {
		return newErr(ErrSystem, "signal_pid", "GenerateConsoleCtrlEvent failed: "+err.Error(), err)
	}
	return nil
}

// selfPGID/selfSID: Windows has no process-group/session query
// equivalent to getpgid/getsid.
func selfPGID() (uint32, error) {
	return 0, newErr(ErrNotSupported, "self_getpgid", "process groups are not a windows concept", nil)
}

func selfSID() (uint32, error) {
	return 0, newErr(ErrNotSupported, "self_getsid", "sessions are not queryable this way on windows", nil)
}

func foreignPGID(pid uint32) (uint32, error) {
	return 0, newErr(ErrNotSupported, "getpgid", "process groups are not a windows concept", nil)
}

// signalForeignGroup has no Windows equivalent: process groups are not a
// queryable or independently signalable concept outside a Job Object we
// created ourselves, so resolveTarget never reaches this path on
// windows (foreignPGID always fails first).
func signalForeignGroup(pg uint32, spec SignalSpec) error {
	return newErr(ErrNotSupported, "signal_group", "foreign process-group signaling is not supported on windows", nil)
}

func decodeExit(cmd *exec.Cmd, waitErr error) int {
	if waitErr == nil {
		return 0
	}
	if ee, ok := waitErr.(*exec.ExitError); ok {
		return ee.ExitCode()
	}
	return -1
}

func waitForeignPID(pid uint32, timeout time.Duration) (exited bool) {
	deadline := time.Now().Add(timeout)
	handle, err := windows.OpenProcess(windows.SYNCHRONIZE, false, pid)
	if err != nil {
		// Can't open a handle to it, so we can't distinguish "exited"
		// from "never existed"; treat as exited (nothing left to wait for).
		return true
	}
	defer windows.CloseHandle(handle)

	remaining := time.Until(deadline)
	if remaining < 0 {
		remaining = 0
	}
	ms := uint32(remaining.Milliseconds())
	ev, err := windows.WaitForSingleObject(handle, ms)
	return err == nil && ev == windows.WAIT_OBJECT_0
}

func pidAlive(pid uint32) bool {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return false
	}
	defer windows.CloseHandle(handle)
	var code uint32
	if err := windows.GetExitCodeProcess(handle, &code); err != nil {
		return false
	}
	const stillActive = 259
	return code == stillActive
}
