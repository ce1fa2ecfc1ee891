//go:build windows

package sysprims

// Windows has no POSIX signal semantics. sysprims maps TerminateRequest
// and ForceKill both onto process/job termination and treats Interrupt
// as best-effort (GenerateConsoleCtrlEvent); Hangup has no mapping.
//
// These numeric values align with common POSIX numbers (Linux) for API
// symmetry, but callers should not expect them to be deliverable as
// actual signals on this platform.
const (
	SIGHUP  = int32(1)
	SIGINT  = int32(2)
	SIGQUIT = int32(3)
	SIGTERM = int32(15)
	SIGKILL = int32(9)
	SIGUSR1 = int32(10)
	SIGUSR2 = int32(12)
)

func platformSignalNumber(s SignalSpec) (int32, bool) {
	switch s.kind {
	case signalTerminateRequest:
		return SIGTERM, true
	case signalForceKill:
		return SIGKILL, true
	case signalInterrupt:
		return SIGINT, true
	case signalHangup:
		return 0, false
	case signalNumeric:
		if s.number == SIGTERM || s.number == SIGKILL {
			return s.number, true
		}
		return 0, false
	default:
		return 0, false
	}
}
