package sysprims_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysprims-dev/sysprims"
)

func TestSpawnEstablishesGroup(t *testing.T) {
	cmd, args := sleepCommand(5)
	outcome, err := sysprims.SpawnInGroup(cmd, args, "", nil)
	require.NoError(t, err)
	assert.NotZero(t, outcome.Pid)
	assert.Equal(t, sysprims.Guaranteed, outcome.Reliability)

	_ = sysprims.ForceKill(uint64(outcome.Pid))
}

func TestForegroundSpawnHasNoGuaranteedGroup(t *testing.T) {
	cmd, args := sleepCommand(5)
	cfg := sysprims.DefaultTimeoutConfig()
	cfg.Grouping = sysprims.Foreground
	cfg.KillAfter = 50 * time.Millisecond

	outcome, err := sysprims.RunWithTimeout(cmd, args, 50*time.Millisecond, cfg)
	require.NoError(t, err)
	assert.False(t, outcome.Completed)
	assert.Equal(t, sysprims.BestEffort, outcome.Reliability)
}
