package sysprims_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysprims-dev/sysprims"
	"github.com/sysprims-dev/sysprims/proc"
)

func TestTerminateTreeInvalidPID(t *testing.T) {
	_, err := sysprims.TerminateTree(0, sysprims.DefaultTerminateTreeConfig())
	require.Error(t, err)
	var sErr *sysprims.Error
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, sysprims.ErrInvalidArgument, sErr.Kind)
}

func TestTerminateTreeOwnedChild(t *testing.T) {
	cmd, args := sleepCommand(30)
	child, err := sysprims.SpawnInGroup(cmd, args, "", nil)
	require.NoError(t, err)

	cfg := sysprims.DefaultTerminateTreeConfig()
	cfg.GraceTimeout = 200 * time.Millisecond
	cfg.KillTimeout = 500 * time.Millisecond

	result, err := sysprims.TerminateTree(uint64(child.Pid), cfg)
	require.NoError(t, err)
	assert.Equal(t, child.Pid, result.Pid)
	assert.True(t, result.Exited, "expected the spawned sleep to exit once signaled")
}

// TestTerminateTreeKillsSignalTrappingDescendant covers the scenario
// TerminateTree exists for: a direct child that traps the graceful
// signal and backgrounds a grandchild, neither of which would exit on
// TerminateRequest alone. Guaranteed-reliability group coverage must
// still reach both once escalation fires.
func TestTerminateTreeKillsSignalTrappingDescendant(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("trap(1) and signal-disposition semantics are POSIX-specific")
	}

	child, err := sysprims.SpawnInGroup("sh", []string{"-c", "trap '' TERM; sleep 987654 & wait"}, "", nil)
	require.NoError(t, err)
	require.Equal(t, sysprims.Guaranteed, child.Reliability, "group must be owned for this test to prove coverage")

	var grandchildPID uint32
	require.Eventually(t, func() bool {
		snap, err := proc.ProcessList(&proc.ProcessFilter{PPID: &child.Pid})
		if err != nil || len(snap.Processes) == 0 {
			return false
		}
		grandchildPID = snap.Processes[0].PID
		return true
	}, 2*time.Second, 20*time.Millisecond, "backgrounded sleep never appeared as a child of the trapping shell")

	cfg := sysprims.DefaultTerminateTreeConfig()
	cfg.GraceTimeout = 200 * time.Millisecond
	cfg.KillTimeout = 500 * time.Millisecond

	result, err := sysprims.TerminateTree(uint64(child.Pid), cfg)
	require.NoError(t, err)
	assert.True(t, result.Escalated, "the trapping shell must not have exited on the graceful signal alone")
	assert.True(t, result.Exited, "the whole group must be gone once the kill signal was escalated to")

	_, err = proc.ProcessGet(child.Pid)
	assert.Error(t, err, "the signal-trapping shell must not have survived")
	_, err = proc.ProcessGet(grandchildPID)
	assert.Error(t, err, "the backgrounded grandchild must not have survived group escalation")
}

func TestDefaultTerminateTreeConfig(t *testing.T) {
	cfg := sysprims.DefaultTerminateTreeConfig()
	assert.Equal(t, sysprims.TerminateRequest, cfg.Signal)
	assert.Equal(t, sysprims.ForceKillSignal, cfg.KillSignal)
	assert.Equal(t, 10*time.Second, cfg.GraceTimeout)
	assert.Equal(t, 2*time.Second, cfg.KillTimeout)
}
