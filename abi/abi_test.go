package abi_test

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysprims-dev/sysprims"
	"github.com/sysprims-dev/sysprims/abi"
)

type envelope struct {
	SchemaID  string          `json:"schema_id"`
	Timestamp string          `json:"timestamp"`
	Platform  string          `json:"platform"`
	Payload   json.RawMessage `json:"payload"`
}

func TestABIVersionMatchesCore(t *testing.T) {
	assert.Equal(t, sysprims.ABIVersion(), abi.ABIVersion())
}

func TestSpawnInGroupRoundTrips(t *testing.T) {
	argv := []string{"echo", "hello"}
	if runtime.GOOS == "windows" {
		argv = []string{"cmd", "/c", "echo hello"}
	}
	cfg, err := json.Marshal(map[string]interface{}{"argv": argv})
	require.NoError(t, err)

	out, err := abi.SpawnInGroup(string(cfg))
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.NotEmpty(t, env.SchemaID)
	assert.NotEmpty(t, env.Timestamp)
	assert.NotEmpty(t, env.Platform)

	var payload struct {
		Pid uint32 `json:"pid"`
	}
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.NotZero(t, payload.Pid)
}

func TestSpawnInGroupRejectsMalformedJSON(t *testing.T) {
	_, err := abi.SpawnInGroup("{not json")
	require.Error(t, err)
	assert.Equal(t, int32(sysprims.ErrInvalidArgument), abi.StatusCode(err))
}

func TestSpawnInGroupRejectsEmptyArgv(t *testing.T) {
	_, err := abi.SpawnInGroup(`{"argv": []}`)
	require.Error(t, err)
	assert.Equal(t, int32(sysprims.ErrInvalidArgument), abi.StatusCode(err))
}

func TestTerminateInvalidPID(t *testing.T) {
	err := abi.Terminate(0)
	require.Error(t, err)
	assert.Equal(t, int32(sysprims.ErrInvalidArgument), abi.StatusCode(err))
}

func TestStatusCodeNilIsErrNone(t *testing.T) {
	assert.EqualValues(t, sysprims.ErrNone, abi.StatusCode(nil))
}

func TestTimeoutRunRoundTrips(t *testing.T) {
	argv, err := json.Marshal([]string{"hello"})
	require.NoError(t, err)

	cmd := "echo"
	if runtime.GOOS == "windows" {
		cmd = "cmd"
		argv, err = json.Marshal([]string{"/c", "echo hello"})
		require.NoError(t, err)
	}

	out, err := abi.TimeoutRun(cmd, string(argv), 5000, "")
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.NotEmpty(t, env.SchemaID)

	var payload struct {
		Completed bool `json:"completed"`
	}
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.True(t, payload.Completed)
}

func TestTimeoutRunRejectsMalformedArgs(t *testing.T) {
	_, err := abi.TimeoutRun("echo", "{not json", 1000, "")
	require.Error(t, err)
	assert.Equal(t, int32(sysprims.ErrInvalidArgument), abi.StatusCode(err))
}
