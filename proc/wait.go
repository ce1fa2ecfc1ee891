package proc

import (
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/sysprims-dev/sysprims"
)

const schemaWaitPid = "sysprims.wait_pid_result.v1"

// WaitPidResult is the outcome of [WaitPID].
type WaitPidResult struct {
	SchemaID  string   `json:"schema_id"`
	Timestamp string   `json:"timestamp"`
	Platform  string   `json:"platform"`
	PID       uint32   `json:"pid"`
	Exited    bool     `json:"exited"`
	TimedOut  bool     `json:"timed_out"`
	ExitCode  *int32   `json:"exit_code,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// WaitPID waits up to timeout for pid to exit. Because pid was not
// necessarily spawned by this process, there is no portable wait(2) to
// call on it; this busy-polls liveness at a fixed interval, the same
// baseline the Tree Terminator uses, and can never report an exit code
// (a foreign process's exit status is only visible to its real parent).
func WaitPID(pid uint32, timeout time.Duration) (*WaitPidResult, error) {
	pv, err := sysprims.ValidatePID(uint64(pid))
	if err != nil {
		return nil, err
	}
	if alive, err := process.PidExists(int32(pv.Uint32())); err != nil {
		return nil, wrapSystem("WaitPID", err)
	} else if !alive {
		id, ts, plat := sysprims.Envelope(schemaWaitPid)
		return &WaitPidResult{SchemaID: id, Timestamp: ts, Platform: plat, PID: pid, Exited: true}, nil
	}

	deadline := time.Now().Add(timeout)
	interval := 25 * time.Millisecond
	exited := false
	for time.Now().Before(deadline) {
		alive, err := process.PidExists(int32(pv.Uint32()))
		if err != nil || !alive {
			exited = true
			break
		}
		remaining := time.Until(deadline)
		if remaining < interval {
			time.Sleep(remaining)
		} else {
			time.Sleep(interval)
		}
	}

	id, ts, plat := sysprims.Envelope(schemaWaitPid)
	result := &WaitPidResult{
		SchemaID:  id,
		Timestamp: ts,
		Platform:  plat,
		PID:       pid,
		Exited:    exited,
		TimedOut:  !exited,
	}
	if !exited {
		result.Warnings = []string{"exit code unavailable: pid was not spawned by this process"}
	}
	return result, nil
}
