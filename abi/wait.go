package abi

import "github.com/sysprims-dev/sysprims/proc"

const schemaWaitPid = "sysprims.abi.wait_pid_result.v1"

type waitPidResult struct {
	Pid        uint32 `json:"pid"`
	TimedOut   bool   `json:"timed_out"`
	ExitStatus *int32 `json:"exit_status,omitempty"`
}

// WaitPID waits up to timeoutMS for pid to exit and returns the §6
// envelope wrapping {pid, timed_out, exit_status?}, matching the table
// entry's documented output shape exactly.
func WaitPID(pid uint32, timeoutMS uint64) (string, error) {
	result, err := proc.WaitPID(pid, msToDuration(timeoutMS))
	if err != nil {
		return "", err
	}
	payload := waitPidResult{
		Pid:        result.PID,
		TimedOut:   result.TimedOut,
		ExitStatus: result.ExitCode,
	}
	return wrap(schemaWaitPid, payload)
}
