package sysprims

import (
	"os/exec"
	"sync"
	"sync/atomic"
	"time"
)

// ChildHandle references a process spawned by this package: its PID,
// optional group, and whether it has been reaped yet.
type ChildHandle struct {
	Pid   uint32
	Group *GroupHandle // nil when spawned with Foreground grouping

	cmd    *exec.Cmd
	reaped atomic.Bool

	waitOnce   sync.Once
	waitDone   chan struct{}
	waitResult error
}

// waitChild blocks on our own child up to timeout. cmd.Wait() is
// invoked exactly once regardless of how many times waitChild is
// called (os/exec forbids calling Wait twice); later calls just select
// on the first call's completion, which is what lets the Timeout
// Executor call this repeatedly across its grace/kill/reap windows.
func (c *ChildHandle) waitChild(timeout time.Duration) (exitCode *int, timedOut bool, err error) {
	if c.cmd == nil {
		return nil, false, newErr(ErrInternal, "wait", "child has no exec.Cmd to wait on", nil)
	}
	c.waitOnce.Do(func() {
		c.waitDone = make(chan struct{})
		go func() {
			c.waitResult = c.cmd.Wait()
			c.reaped.Store(true)
			close(c.waitDone)
		}()
	})

	select {
	case <-c.waitDone:
		code := decodeExit(c.cmd, c.waitResult)
		return &code, false, nil
	case <-time.After(timeout):
		return nil, true, nil
	}
}

// drainReap is a no-op once waitChild has been called at least once,
// since the background goroutine it started will reap the child
// whenever it actually exits. It exists so callers that only ever saw
// timeouts still have an explicit "make sure this gets reaped
// eventually" step to call.
func (c *ChildHandle) drainReap() {
	c.waitOnce.Do(func() {
		c.waitDone = make(chan struct{})
		go func() {
			c.waitResult = c.cmd.Wait()
			c.reaped.Store(true)
			close(c.waitDone)
		}()
	})
}
