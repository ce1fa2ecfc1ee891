package sysprims

import "time"

// safetyReapWindow is the bounded wait for reaping after a force-kill,
// per spec.md §4.4 step 5d ("implementations should use 2s").
const safetyReapWindow = 2 * time.Second

// defaultKillAfter is TimeoutConfig.KillAfter's default.
const defaultKillAfter = 10 * time.Second

// TimeoutConfig configures [RunWithTimeout].
type TimeoutConfig struct {
	// Signal is sent first on deadline expiry. Zero-value resolves to
	// TerminateRequest.
	Signal SignalSpec
	// KillAfter is the grace window before escalating to a force-kill.
	KillAfter time.Duration
	// Grouping controls process-group/Job-Object creation.
	Grouping GroupingMode
	// PreserveStatus, when true, reports the child's real exit code on
	// normal completion. It has no effect on a TimedOut outcome.
	PreserveStatus bool

	// Cwd and Env configure the spawned child. Env entries override or
	// add to the inherited environment.
	Cwd string
	Env map[string]string
}

// DefaultTimeoutConfig returns: TerminateRequest, 10s KillAfter,
// GroupByDefault, PreserveStatus=false.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Signal:    TerminateRequest,
		KillAfter: defaultKillAfter,
		Grouping:  GroupByDefault,
	}
}

// TimeoutOutcome is the tagged result of [RunWithTimeout].
type TimeoutOutcome struct {
	// Completed is true iff the child exited before the deadline.
	Completed bool

	// --- valid when Completed ---
	ExitStatus int

	// --- valid when !Completed (TimedOut) ---
	SignalSent  SignalSpec
	Escalated   bool
	Reliability Reliability
}

// RunWithTimeout spawns command with args and waits up to deadline. If
// the child is still alive at the deadline, it is sent config.Signal,
// given config.KillAfter to exit, then force-killed; the whole tree dies
// when Reliability is Guaranteed. After the signals it waits up to
// safetyReapWindow for the child to be reaped; if the child has not
// exited by then, the function returns anyway and a background wait
// reaps it later. The outcome does not report whether that reap had
// completed.
func RunWithTimeout(command string, args []string, deadline time.Duration, config TimeoutConfig) (TimeoutOutcome, error) {
	if deadline <= 0 {
		return TimeoutOutcome{}, newErr(ErrInvalidArgument, "RunWithTimeout", "deadline must be positive", nil)
	}
	if config.Signal == (SignalSpec{}) {
		config.Signal = TerminateRequest
	}

	child, err := spawnChild(command, args, config.Cwd, config.Env, config.Grouping)
	if err != nil {
		return TimeoutOutcome{}, err
	}

	exitCode, timedOut, err := child.waitChild(deadline)
	if err != nil {
		return TimeoutOutcome{}, newErr(ErrWaitFailed, "RunWithTimeout", err.Error(), err)
	}
	if !timedOut {
		status := 0
		if config.PreserveStatus {
			status = *exitCode
		}
		return TimeoutOutcome{Completed: true, ExitStatus: status}, nil
	}

	reliability := BestEffort
	if child.Group != nil {
		reliability = child.Group.Reliability
	}

	// Step 5a: initial signal, group if guaranteed else PID alone.
	if err := signalChild(child, config.Signal); err != nil && !isNotFound(err) {
		return TimeoutOutcome{}, newErr(ErrWaitFailed, "RunWithTimeout", "failed to send initial signal: "+err.Error(), err)
	}

	// Step 5b: grace window.
	_, stillTimedOut, _ := child.waitChild(config.KillAfter)
	escalated := false
	if stillTimedOut {
		// Step 5c: escalate to ForceKill, same targeting rule.
		if err := signalChild(child, ForceKillSignal); err != nil && !isNotFound(err) {
			return TimeoutOutcome{}, newErr(ErrWaitFailed, "RunWithTimeout", "failed to force-kill: "+err.Error(), err)
		}
		escalated = true
	}

	// Step 5d: bounded reap window.
	child.waitChild(safetyReapWindow)
	child.drainReap()
	if child.Group != nil {
		child.Group.Close()
	}

	return TimeoutOutcome{
		Completed:   false,
		SignalSent:  config.Signal,
		Escalated:   escalated,
		Reliability: reliability,
	}, nil
}

// signalChild sends spec to the child's group when it is Guaranteed,
// else to the PID alone, per the ordering guarantee in spec.md §4.4.
func signalChild(c *ChildHandle, spec SignalSpec) error {
	if c.Group != nil && c.Group.Reliability == Guaranteed {
		return c.Group.Signal(spec)
	}
	pv, err := NewPidValue(c.Pid)
	if err != nil {
		return err
	}
	return signalPID(pv, spec)
}

func isNotFound(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == ErrNotFound
}
