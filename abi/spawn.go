package abi

import (
	"encoding/json"

	"github.com/sysprims-dev/sysprims"
)

const schemaSpawnResult = "sysprims.abi.spawn_result.v1"

type spawnConfig struct {
	Argv []string          `json:"argv"`
	Cwd  string            `json:"cwd,omitempty"`
	Env  map[string]string `json:"env,omitempty"`
}

type spawnResult struct {
	Pid                 uint32               `json:"pid"`
	PGID                *uint32              `json:"pgid,omitempty"`
	TreeKillReliability sysprims.Reliability `json:"tree_kill_reliability"`
	Warnings            []string             `json:"warnings,omitempty"`
}

// SpawnInGroup decodes configJSON ({argv, cwd?, env?}), spawns the
// process under a new group/Job Object, and returns the §6 envelope
// wrapping {pid, pgid?, tree_kill_reliability, warnings?}.
func SpawnInGroup(configJSON string) (string, error) {
	var cfg spawnConfig
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return "", &sysprims.Error{Kind: sysprims.ErrInvalidArgument, Op: "SpawnInGroup", Msg: "malformed config JSON: " + err.Error(), Err: err}
	}
	if len(cfg.Argv) == 0 {
		return "", &sysprims.Error{Kind: sysprims.ErrInvalidArgument, Op: "SpawnInGroup", Msg: "argv must have at least one element"}
	}

	outcome, err := sysprims.SpawnInGroup(cfg.Argv[0], cfg.Argv[1:], cfg.Cwd, cfg.Env)
	if err != nil {
		return "", err
	}

	payload := spawnResult{
		Pid:                 outcome.Pid,
		TreeKillReliability: outcome.Reliability,
		Warnings:            outcome.Warnings,
	}
	if outcome.PGID != 0 {
		payload.PGID = &outcome.PGID
	}
	return wrap(schemaSpawnResult, payload)
}
