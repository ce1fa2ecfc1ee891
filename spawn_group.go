package sysprims

// SpawnOutcome is the result of [SpawnInGroup]: a detached process the
// caller does not otherwise hold a handle to.
type SpawnOutcome struct {
	Pid         uint32
	PGID        uint32 // 0 when the platform has no pgid concept
	Reliability Reliability
	Warnings    []string
}

// SpawnInGroup starts command with args under a new process group/Job
// Object and returns immediately without waiting for it, for callers
// (notably package abi) that want a detached child rather than a
// [ChildHandle] tied to a later Wait. The child is still reaped: a
// background goroutine drains its exit so it never lingers as a
// zombie, it simply isn't reported back to this call's caller.
func SpawnInGroup(command string, args []string, cwd string, env map[string]string) (SpawnOutcome, error) {
	child, err := spawnChild(command, args, cwd, env, GroupByDefault)
	if err != nil {
		return SpawnOutcome{}, err
	}
	go child.drainReap()

	out := SpawnOutcome{Pid: child.Pid}
	if child.Group != nil {
		out.Reliability = child.Group.Reliability
		out.Warnings = child.Group.Warnings
		if pgid, ok := child.Group.PGID(); ok {
			out.PGID = pgid
		}
	} else {
		out.Reliability = BestEffort
	}
	return out, nil
}
