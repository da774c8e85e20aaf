package yogi

import (
	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/duration"
	"github.com/wippyai/yogi-go/result"
)

// Context schedules and runs handlers for the objects created on it.
// All async handlers of objects built on a Context run on whichever
// goroutine is executing Poll, Run or the background loop.
type Context struct {
	Object
}

// NewContext creates an execution context.
func (l *Library) NewContext() (*Context, error) {
	obj, err := l.create("Context", l.api.ContextCreate)
	if err != nil {
		return nil, err
	}
	return &Context{Object: obj}, nil
}

func (c *Context) run(fn func(h core.Handle) (int, int32)) (int, error) {
	var n int
	_, err := c.call(func(h core.Handle) int32 {
		var code int32
		n, code = fn(h)
		return code
	})
	return n, err
}

// Poll runs all ready handlers without blocking and returns their count.
func (c *Context) Poll() (int, error) {
	return c.run(c.lib.api.ContextPoll)
}

// PollOne runs at most one ready handler without blocking.
func (c *Context) PollOne() (int, error) {
	return c.run(c.lib.api.ContextPollOne)
}

// Run executes handlers until d elapses or Stop is called. duration.Inf
// runs until stopped.
func (c *Context) Run(d duration.Duration) (int, error) {
	v, err := d.APIValue()
	if err != nil {
		return 0, err
	}
	return c.run(func(h core.Handle) (int, int32) { return c.lib.api.ContextRun(h, v) })
}

// RunOne waits up to d for a single handler and runs it.
func (c *Context) RunOne(d duration.Duration) (int, error) {
	v, err := d.APIValue()
	if err != nil {
		return 0, err
	}
	return c.run(func(h core.Handle) (int, int32) { return c.lib.api.ContextRunOne(h, v) })
}

// RunInBackground starts a goroutine that runs the context until Stop.
func (c *Context) RunInBackground() error {
	_, err := c.call(c.lib.api.ContextRunInBackground)
	return err
}

// Stop makes the running loop return. It is sticky until the next run.
func (c *Context) Stop() error {
	_, err := c.call(c.lib.api.ContextStop)
	return err
}

// WaitForRunning blocks until the context is running. It returns false
// when d elapses first.
func (c *Context) WaitForRunning(d duration.Duration) (bool, error) {
	return c.wait(d, c.lib.api.ContextWaitForRunning)
}

// WaitForStopped blocks until the context is not running.
func (c *Context) WaitForStopped(d duration.Duration) (bool, error) {
	return c.wait(d, c.lib.api.ContextWaitForStopped)
}

func (c *Context) wait(d duration.Duration, fn func(core.Handle, int64) int32) (bool, error) {
	v, err := d.APIValue()
	if err != nil {
		return false, err
	}
	return c.callBool(result.ErrTimeout, func(h core.Handle) int32 { return fn(h, v) })
}

// Post queues fn for execution on the context.
func (c *Context) Post(fn func()) error {
	if fn == nil {
		return result.ErrInvalidParam
	}
	return c.lib.bridge.Post("Context.Post", func(cb core.PostFunc, ud uintptr) int32 {
		return c.res.Call(func(h core.Handle) int32 { return c.lib.api.ContextPost(h, cb, ud) })
	}, fn)
}
