package abi

import (
	"encoding/json"

	"github.com/sysprims-dev/sysprims"
)

const schemaTimeoutRun = "sysprims.abi.timeout_run_result.v1"

type timeoutRunConfig struct {
	Signal         string            `json:"signal,omitempty"`
	KillAfterMS    uint64            `json:"kill_after_ms,omitempty"`
	Foreground     bool              `json:"foreground,omitempty"`
	PreserveStatus bool              `json:"preserve_status,omitempty"`
	Cwd            string            `json:"cwd,omitempty"`
	Env            map[string]string `json:"env,omitempty"`
}

type timeoutRunResult struct {
	Completed           bool   `json:"completed"`
	ExitStatus          *int   `json:"exit_status,omitempty"`
	SignalSent          string `json:"signal_sent,omitempty"`
	Escalated           bool   `json:"escalated,omitempty"`
	TreeKillReliability string `json:"tree_kill_reliability,omitempty"`
}

func decodeSignal(name string) (sysprims.SignalSpec, error) {
	switch name {
	case "", "terminate_request":
		return sysprims.TerminateRequest, nil
	case "force_kill":
		return sysprims.ForceKillSignal, nil
	case "interrupt":
		return sysprims.Interrupt, nil
	case "hangup":
		return sysprims.Hangup, nil
	default:
		return sysprims.SignalSpec{}, &sysprims.Error{Kind: sysprims.ErrInvalidArgument, Op: "TimeoutRun", Msg: "unknown signal: " + name}
	}
}

// TimeoutRun decodes argsJSON (a JSON array of strings) and configJSON
// ({signal?, kill_after_ms?, foreground?, preserve_status?, cwd?, env?}),
// runs command under deadlineMS, and returns the §6 envelope wrapping
// the timeout outcome.
func TimeoutRun(command string, argsJSON string, deadlineMS uint64, configJSON string) (string, error) {
	var args []string
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return "", &sysprims.Error{Kind: sysprims.ErrInvalidArgument, Op: "TimeoutRun", Msg: "malformed args JSON: " + err.Error(), Err: err}
		}
	}

	var cfg timeoutRunConfig
	if configJSON != "" {
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			return "", &sysprims.Error{Kind: sysprims.ErrInvalidArgument, Op: "TimeoutRun", Msg: "malformed config JSON: " + err.Error(), Err: err}
		}
	}

	signal, err := decodeSignal(cfg.Signal)
	if err != nil {
		return "", err
	}

	runCfg := sysprims.DefaultTimeoutConfig()
	runCfg.Signal = signal
	runCfg.PreserveStatus = cfg.PreserveStatus
	runCfg.Cwd = cfg.Cwd
	runCfg.Env = cfg.Env
	if cfg.KillAfterMS > 0 {
		runCfg.KillAfter = msToDuration(cfg.KillAfterMS)
	}
	if cfg.Foreground {
		runCfg.Grouping = sysprims.Foreground
	}

	outcome, err := sysprims.RunWithTimeout(command, args, msToDuration(deadlineMS), runCfg)
	if err != nil {
		return "", err
	}

	payload := timeoutRunResult{Completed: outcome.Completed}
	if outcome.Completed {
		status := outcome.ExitStatus
		payload.ExitStatus = &status
	} else {
		payload.SignalSent = outcome.SignalSent.String()
		payload.Escalated = outcome.Escalated
		payload.TreeKillReliability = string(outcome.Reliability)
	}
	return wrap(schemaTimeoutRun, payload)
}
