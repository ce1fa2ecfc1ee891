package sysprims

import "time"

const (
	defaultGraceTimeout = 10 * time.Second
	defaultKillTimeout  = 2 * time.Second
)

// TerminateTreeConfig configures [TerminateTree].
type TerminateTreeConfig struct {
	// Signal is the graceful signal. Zero-value resolves to TerminateRequest.
	Signal SignalSpec
	// GraceTimeout is how long to wait after Signal before escalating.
	GraceTimeout time.Duration
	// KillSignal is the escalation signal. Zero-value resolves to ForceKill.
	KillSignal SignalSpec
	// KillTimeout is how long to wait after KillSignal for confirmation.
	KillTimeout time.Duration
}

// DefaultTerminateTreeConfig returns: TerminateRequest/10s grace,
// ForceKill/2s kill-timeout, matching spec.md's defaults
// (grace_timeout_ms=10000, kill_timeout_ms=2000).
func DefaultTerminateTreeConfig() TerminateTreeConfig {
	return TerminateTreeConfig{
		Signal:       TerminateRequest,
		GraceTimeout: defaultGraceTimeout,
		KillSignal:   ForceKillSignal,
		KillTimeout:  defaultKillTimeout,
	}
}

// TerminateTreeResult is the outcome of [TerminateTree].
type TerminateTreeResult struct {
	Pid         uint32
	PGID        *uint32
	SignalSent  SignalSpec
	KillSignal  *SignalSpec
	Escalated   bool
	Exited      bool
	TimedOut    bool
	Reliability Reliability
	Warnings    []string
}

// TerminateTree sends a graceful signal, waits up to GraceTimeout, and
// escalates to KillSignal if the process is still alive, per spec.md
// §4.5. pid need not have been spawned by this package: if it was (it
// is in our GroupHandle registry with Guaranteed reliability), the group is used for Guaranteed
// coverage; otherwise the OS's process-group id is queried as a
// best-effort approximation, and failing that the PID alone is
// signaled with Reliability=BestEffort.
func TerminateTree(rawPID uint64, config TerminateTreeConfig) (TerminateTreeResult, error) {
	pid, err := ValidatePID(rawPID)
	if err != nil {
		return TerminateTreeResult{}, err
	}
	if config.Signal == (SignalSpec{}) {
		config.Signal = TerminateRequest
	}
	if config.KillSignal == (SignalSpec{}) {
		config.KillSignal = ForceKillSignal
	}
	if config.GraceTimeout <= 0 {
		config.GraceTimeout = defaultGraceTimeout
	}
	if config.KillTimeout <= 0 {
		config.KillTimeout = defaultKillTimeout
	}

	result := TerminateTreeResult{Pid: pid.Uint32()}

	// Step 1: do we already own a group for this PID?
	target, reliability, warnings := resolveTarget(pid)
	result.Reliability = reliability
	result.Warnings = warnings
	if pgid, ok := target.pgid(); ok {
		result.PGID = &pgid
	}

	// Step 3: send the graceful signal.
	if err := target.send(config.Signal); err != nil {
		if isNotFound(err) {
			return result, err
		}
		if isPermissionDenied(err) {
			result.Warnings = append(result.Warnings, "graceful signal denied: "+err.Error())
			return result, newErr(ErrPermissionDenied, "TerminateTree", "no termination attempt succeeded", err)
		}
		return result, err
	}
	result.SignalSent = config.Signal

	// Step 4: poll for exit within the grace window.
	if exited := waitForeignPID(pid.Uint32(), config.GraceTimeout); exited {
		result.Exited = true
		return result, nil
	}

	// Step 5: escalate.
	if err := target.send(config.KillSignal); err != nil && !isNotFound(err) {
		result.Warnings = append(result.Warnings, "force-kill failed: "+err.Error())
	}
	result.Escalated = true
	ks := config.KillSignal
	result.KillSignal = &ks

	// Step 6: poll for exit within the kill window.
	exited := waitForeignPID(pid.Uint32(), config.KillTimeout)
	result.Exited = exited
	result.TimedOut = !exited
	return result, nil
}

// terminateTarget abstracts "signal the group we own" vs "signal the OS
// process group" vs "signal the PID alone".
type terminateTarget struct {
	group   *GroupHandle // non-nil when we own a registered group
	pg      uint32       // OS-queried pgid, valid when havePG
	havePG  bool
	pidOnly PidValue
}

func (t terminateTarget) pgid() (uint32, bool) {
	if t.group != nil {
		return t.group.PGID()
	}
	if t.havePG {
		return t.pg, true
	}
	return 0, false
}

func (t terminateTarget) send(spec SignalSpec) error {
	if t.group != nil {
		return t.group.Signal(spec)
	}
	if t.havePG {
		// Signal the OS process group directly using the same group
		// primitive the registry path uses, without requiring a
		// GroupHandle (we don't own this group).
		return signalForeignGroup(t.pg, spec)
	}
	return signalPID(t.pidOnly, spec)
}

func resolveTarget(pid PidValue) (terminateTarget, Reliability, []string) {
	if gh, ok := groupRegistry.get(pid.Uint32()); ok && gh.Reliability == Guaranteed {
		return terminateTarget{group: gh}, gh.Reliability, nil
	}

	pg, err := foreignPGID(pid.Uint32())
	if err == nil && pg == pid.Uint32() {
		// pid is itself a group leader: prefer group kill for coverage.
		return terminateTarget{havePG: true, pg: pg}, BestEffort, nil
	}

	var warnings []string
	if err != nil {
		if e, ok := err.(*Error); ok && e.Kind == ErrNotSupported {
			warnings = append(warnings, "process-group query not supported on "+Platform()+"; signaling pid only")
		}
	}
	return terminateTarget{pidOnly: pid}, BestEffort, warnings
}

func isPermissionDenied(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == ErrPermissionDenied
}
