package sysprims_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sysprims-dev/sysprims"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestVersionAndPlatform(t *testing.T) {
	assert.NotEmpty(t, sysprims.Version())
	assert.NotZero(t, sysprims.ABIVersion())

	expected := runtime.GOOS
	if expected == "darwin" {
		expected = "macos"
	}
	assert.Equal(t, expected, sysprims.Platform())
}

func TestValidatePIDRejectsZero(t *testing.T) {
	_, err := sysprims.ValidatePID(0)
	require.Error(t, err)
	var sErr *sysprims.Error
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, sysprims.ErrInvalidArgument, sErr.Kind)
}

func TestValidatePIDRejectsOverflow(t *testing.T) {
	_, err := sysprims.ValidatePID(sysprims.MaxSafePID + 1)
	require.Error(t, err)
	var sErr *sysprims.Error
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, sysprims.ErrInvalidArgument, sErr.Kind)
}

func TestValidatePIDAcceptsInRange(t *testing.T) {
	pv, err := sysprims.ValidatePID(1234)
	require.NoError(t, err)
	assert.EqualValues(t, 1234, pv.Uint32())
}

func TestKillInvalidPID(t *testing.T) {
	err := sysprims.Kill(0, sysprims.TerminateRequest)
	require.Error(t, err)
	var sErr *sysprims.Error
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, sysprims.ErrInvalidArgument, sErr.Kind)
}

func TestKillNonexistentPID(t *testing.T) {
	err := sysprims.Kill(99999999, sysprims.TerminateRequest)
	if err == nil {
		t.Skip("pid 99999999 unexpectedly exists on this system")
	}
	var sErr *sysprims.Error
	require.ErrorAs(t, err, &sErr)
	assert.Contains(t, []sysprims.ErrorKind{sysprims.ErrNotFound, sysprims.ErrPermissionDenied}, sErr.Kind)
}

func TestKillGroupNotSupportedOnWindows(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("windows-specific behavior")
	}
	err := sysprims.KillGroup(1234, sysprims.TerminateRequest)
	require.Error(t, err)
	var sErr *sysprims.Error
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, sysprims.ErrNotSupported, sErr.Kind)
}

func TestDefaultTimeoutConfig(t *testing.T) {
	cfg := sysprims.DefaultTimeoutConfig()
	assert.Equal(t, sysprims.TerminateRequest, cfg.Signal)
	assert.Equal(t, 10*time.Second, cfg.KillAfter)
	assert.Equal(t, sysprims.GroupByDefault, cfg.Grouping)
	assert.False(t, cfg.PreserveStatus)
}

func TestRunWithTimeoutCompletes(t *testing.T) {
	cmd, args := echoCommand()
	outcome, err := sysprims.RunWithTimeout(cmd, args, 5*time.Second, sysprims.DefaultTimeoutConfig())
	require.NoError(t, err)
	assert.True(t, outcome.Completed)
}

func TestRunWithTimeoutSignalsOnDeadline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping deadline test in short mode")
	}
	cmd, args := sleepCommand(10)

	cfg := sysprims.DefaultTimeoutConfig()
	cfg.KillAfter = 300 * time.Millisecond

	outcome, err := sysprims.RunWithTimeout(cmd, args, 500*time.Millisecond, cfg)
	require.NoError(t, err)
	assert.False(t, outcome.Completed)
	assert.Equal(t, sysprims.TerminateRequest, outcome.SignalSent)
}

func TestRunWithTimeoutCommandNotFound(t *testing.T) {
	_, err := sysprims.RunWithTimeout("/nonexistent/command/does-not-exist", nil, time.Second, sysprims.DefaultTimeoutConfig())
	require.Error(t, err)
	var sErr *sysprims.Error
	require.ErrorAs(t, err, &sErr)
	assert.Contains(t, []sysprims.ErrorKind{sysprims.ErrNotFound, sysprims.ErrSpawnFailed}, sErr.Kind)
}

func TestSpawnInGroupReliability(t *testing.T) {
	cmd, args := echoCommand()
	outcome, err := sysprims.SpawnInGroup(cmd, args, "", nil)
	require.NoError(t, err)
	assert.NotZero(t, outcome.Pid)
	assert.Contains(t, []sysprims.Reliability{sysprims.Guaranteed, sysprims.BestEffort}, outcome.Reliability)
	// Give the background reaper a moment so the test doesn't race the
	// process table on fast CI runners.
	time.Sleep(50 * time.Millisecond)
}

func TestErrorKindStringIsStable(t *testing.T) {
	cases := map[sysprims.ErrorKind]string{
		sysprims.ErrNone:               "None",
		sysprims.ErrInvalidArgument:    "InvalidArgument",
		sysprims.ErrTimeout:            "Timeout",
		sysprims.ErrNotSupported:       "NotSupported",
		sysprims.ErrGroupCreationFailed: "GroupCreationFailed",
		sysprims.ErrWaitFailed:         "WaitFailed",
		sysprims.ErrInternal:           "Internal",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestErrorUnwrapAndIs(t *testing.T) {
	cause := assert.AnError
	err := &sysprims.Error{Kind: sysprims.ErrSystem, Op: "test", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.True(t, err.Is(&sysprims.Error{Kind: sysprims.ErrSystem}))
	assert.False(t, err.Is(&sysprims.Error{Kind: sysprims.ErrTimeout}))
}

func echoCommand() (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/c", "echo hello"}
	}
	return "echo", []string{"hello"}
}

func sleepCommand(seconds int) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/c", "ping -n " + itoa(seconds) + " 127.0.0.1"}
	}
	return "sleep", []string{itoa(seconds)}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
