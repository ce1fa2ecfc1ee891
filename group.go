package sysprims

import (
	"sync"
	"sync/atomic"
)

// Reliability distinguishes a Group Manager guarantee from a degraded,
// best-effort grouping.
type Reliability string

const (
	// Guaranteed means the group/job was established before the child
	// ran any user-level instruction; every descendant is addressable
	// through it.
	Guaranteed Reliability = "guaranteed"
	// BestEffort means grouping could not be established; only the
	// direct child is reliably addressable.
	BestEffort Reliability = "best_effort"
)

// nativeGroup is the platform-specific half of a GroupHandle: a pgid on
// POSIX, a Job Object handle on Windows. Each platform file defines its
// own concrete type satisfying this interface; there is exactly one
// implementation compiled per build (tagged dispatch at construction,
// not per-call dynamic dispatch).
type nativeGroup interface {
	signal(n int32) error
	close() error
	pgid() (uint32, bool)
}

// GroupHandle is the unique owner of an OS process group or Job Object.
// Closing it is idempotent; the underlying resource is released exactly
// once, on the last Close of the last holder (tracked with an atomic
// refcount — see [GroupHandle.Retain]).
type GroupHandle struct {
	Pid         uint32
	Reliability Reliability
	Warnings    []string

	native    nativeGroup
	closeOnce sync.Once
	closeErr  error
	refs      atomic.Int32
}

// PGID returns the POSIX process group id backing this handle, if any.
// On Windows, or for a handle with no native group, ok is false.
func (g *GroupHandle) PGID() (pgid uint32, ok bool) {
	if g == nil || g.native == nil {
		return 0, false
	}
	return g.native.pgid()
}

// Signal delivers spec to every member of the group/job. Returns
// ErrNotSupported where the platform has no group-signal primitive for
// that intent (on Windows, TerminateRequest and ForceKill both terminate
// the job; Interrupt and Hangup are not supported).
func (g *GroupHandle) Signal(spec SignalSpec) error {
	if g == nil || g.native == nil {
		return newErr(ErrInvalidArgument, "GroupHandle.Signal", "nil group handle", nil)
	}
	n, ok := spec.Number()
	if !ok {
		return newErr(ErrNotSupported, "GroupHandle.Signal", spec.String()+" has no mapping on "+Platform(), nil)
	}
	return g.native.signal(n)
}

// Retain increments the handle's reference count. Pair with Close; the
// underlying OS resource is released only when the count returns to
// zero, giving "longest-holder" lifetime semantics without duplicating
// ownership of the job/group itself.
func (g *GroupHandle) Retain() *GroupHandle {
	if g != nil {
		g.refs.Add(1)
	}
	return g
}

// Close releases one reference. When it is the last outstanding
// reference, the underlying process group/Job Object is released. Every
// call drops a reference, so a holder calling Close twice releases two;
// calls after the count has reached zero do nothing and return the
// error of the release.
func (g *GroupHandle) Close() error {
	if g == nil {
		return nil
	}
	if g.refs.Add(-1) > 0 {
		return nil
	}
	g.closeOnce.Do(func() {
		if g.native != nil {
			g.closeErr = g.native.close()
		}
		groupRegistry.remove(g.Pid)
	})
	return g.closeErr
}

// GroupingMode controls process-group/Job-Object creation at spawn time.
type GroupingMode int32

const (
	// GroupByDefault creates a new process group (POSIX) or Job Object
	// (Windows) so the whole tree can be killed together. Recommended
	// default.
	GroupByDefault GroupingMode = 0
	// Foreground runs without creating a new group; only the direct
	// child is reliably addressable, and escalation on timeout targets
	// that child alone (see the Open Question in spec.md §9).
	Foreground GroupingMode = 1
)
