package abi_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysprims-dev/sysprims/abi"
)

func TestWaitPIDOnLiveSelfTimesOut(t *testing.T) {
	out, err := abi.WaitPID(uint32(os.Getpid()), 100)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))

	var payload struct {
		TimedOut bool `json:"timed_out"`
	}
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.True(t, payload.TimedOut, "the test process itself cannot have exited")
}
