package abi

import (
	"encoding/json"

	"github.com/sysprims-dev/sysprims"
)

const schemaTerminateTree = "sysprims.abi.terminate_tree_result.v1"

// Terminate sends a graceful termination request to pid and returns the
// §6 status code: nil on success, a *sysprims.Error otherwise. Use
// [StatusCode] to recover the raw ErrorKind ordinal.
func Terminate(pid uint32) error {
	return sysprims.Terminate(uint64(pid))
}

// ForceKill sends an unconditional kill to pid and returns the §6
// status code the same way [Terminate] does.
func ForceKill(pid uint32) error {
	return sysprims.ForceKill(uint64(pid))
}

// StatusCode recovers the raw, ABI-stable ErrorKind ordinal from an
// error returned by this package, or 0 (ErrNone) for a nil error.
func StatusCode(err error) int32 {
	return int32(statusCode(err))
}

type terminateTreeConfig struct {
	GraceTimeoutMS uint64 `json:"grace_timeout_ms,omitempty"`
	KillTimeoutMS  uint64 `json:"kill_timeout_ms,omitempty"`
}

type terminateTreeResult struct {
	Pid                 uint32   `json:"pid"`
	PGID                *uint32  `json:"pgid,omitempty"`
	SignalSent          string   `json:"signal_sent,omitempty"`
	KillSignal          string   `json:"kill_signal,omitempty"`
	Escalated           bool     `json:"escalated"`
	Exited              bool     `json:"exited"`
	TimedOut            bool     `json:"timed_out"`
	TreeKillReliability string   `json:"tree_kill_reliability"`
	Warnings            []string `json:"warnings,omitempty"`
}

// TerminateTree decodes configJSON ({grace_timeout_ms?, kill_timeout_ms?})
// and runs the graceful-then-forceful escalation against pid, returning
// the §6 envelope wrapping the outcome.
func TerminateTree(pid uint32, configJSON string) (string, error) {
	var cfg terminateTreeConfig
	if configJSON != "" {
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			return "", &sysprims.Error{Kind: sysprims.ErrInvalidArgument, Op: "TerminateTree", Msg: "malformed config JSON: " + err.Error(), Err: err}
		}
	}

	treeCfg := sysprims.DefaultTerminateTreeConfig()
	if cfg.GraceTimeoutMS > 0 {
		treeCfg.GraceTimeout = msToDuration(cfg.GraceTimeoutMS)
	}
	if cfg.KillTimeoutMS > 0 {
		treeCfg.KillTimeout = msToDuration(cfg.KillTimeoutMS)
	}

	result, err := sysprims.TerminateTree(uint64(pid), treeCfg)
	if err != nil {
		return "", err
	}

	payload := terminateTreeResult{
		Pid:                 result.Pid,
		PGID:                result.PGID,
		Escalated:           result.Escalated,
		Exited:              result.Exited,
		TimedOut:            result.TimedOut,
		TreeKillReliability: string(result.Reliability),
		Warnings:            result.Warnings,
		SignalSent:          result.SignalSent.String(),
	}
	if result.KillSignal != nil {
		payload.KillSignal = result.KillSignal.String()
	}
	return wrap(schemaTerminateTree, payload)
}
