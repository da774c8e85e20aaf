package sim

import (
	"sync"
	"time"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/result"
)

// ioContext executes posted handlers on whichever goroutine runs it. Only
// one goroutine can run a context at a time. stop is sticky until the next
// run starts.
type ioContext struct {
	log     *zap.Logger
	q       *queue.Queue
	wake    chan struct{}
	changed chan struct{}
	mu      sync.Mutex
	running bool
	stopped bool
}

func newIOContext(log *zap.Logger) *ioContext {
	return &ioContext{
		log:     log,
		q:       queue.New(),
		wake:    make(chan struct{}, 1),
		changed: make(chan struct{}),
	}
}

func (x *ioContext) typeName() string { return "Context" }

// destroy stops the context, waits for a running loop to exit and then runs
// whatever handlers are still queued, so pending completions are delivered.
func (x *ioContext) destroy() {
	x.stop()
	x.waitForStopped(0, true)
	x.execute(0, false, 0, false)
}

func (x *ioContext) post(fn func()) {
	x.mu.Lock()
	x.q.Add(fn)
	x.mu.Unlock()
	x.notify()
}

func (x *ioContext) notify() {
	select {
	case x.wake <- struct{}{}:
	default:
	}
}

func (x *ioContext) stop() {
	x.mu.Lock()
	x.stopped = true
	x.mu.Unlock()
	x.notify()
}

func (x *ioContext) enter() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.running {
		return false
	}
	x.running = true
	x.stopped = false
	x.broadcastLocked()
	return true
}

func (x *ioContext) leave() {
	x.mu.Lock()
	x.running = false
	x.broadcastLocked()
	x.mu.Unlock()
}

func (x *ioContext) broadcastLocked() {
	close(x.changed)
	x.changed = make(chan struct{})
}

// next returns the next queued handler. With block set it waits for one
// until deadline fires; a nil deadline waits until stop.
func (x *ioContext) next(block bool, deadline <-chan time.Time) (func(), bool) {
	for {
		x.mu.Lock()
		if x.stopped {
			x.mu.Unlock()
			return nil, false
		}
		if x.q.Length() > 0 {
			fn := x.q.Remove().(func())
			x.mu.Unlock()
			return fn, true
		}
		x.mu.Unlock()

		if !block {
			return nil, false
		}
		select {
		case <-x.wake:
		case <-deadline:
			return nil, false
		}
	}
}

// execute runs up to max handlers (0 means no limit). It reports false if
// the context is already running.
func (x *ioContext) execute(max int, block bool, timeout time.Duration, infinite bool) (int, bool) {
	if !x.enter() {
		return 0, false
	}
	defer x.leave()
	return x.loop(max, block, timeout, infinite), true
}

func (x *ioContext) loop(max int, block bool, timeout time.Duration, infinite bool) int {
	var deadline <-chan time.Time
	var end time.Time
	if block && !infinite {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
		end = time.Now().Add(timeout)
	}

	n := 0
	for max <= 0 || n < max {
		if deadline != nil && n > 0 && !time.Now().Before(end) {
			break
		}
		fn, ok := x.next(block, deadline)
		if !ok {
			break
		}
		fn()
		n++
	}
	return n
}

func (x *ioContext) runInBackground() bool {
	if !x.enter() {
		return false
	}
	go func() {
		defer x.leave()
		defer func() {
			if r := recover(); r != nil {
				x.log.Error("handler panicked in context background goroutine",
					zap.Any("panic", r),
					zap.Stack("stack"))
			}
		}()
		x.loop(0, true, 0, true)
	}()
	return true
}

func (x *ioContext) waitFor(running bool, timeout time.Duration, infinite bool) bool {
	var deadline <-chan time.Time
	if !infinite {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}
	for {
		x.mu.Lock()
		if x.running == running {
			x.mu.Unlock()
			return true
		}
		ch := x.changed
		x.mu.Unlock()

		select {
		case <-ch:
		case <-deadline:
			x.mu.Lock()
			defer x.mu.Unlock()
			return x.running == running
		}
	}
}

func (x *ioContext) waitForStopped(timeout time.Duration, infinite bool) bool {
	return x.waitFor(false, timeout, infinite)
}

// wireTimeout converts a wire duration where -1 means infinite.
func wireTimeout(v int64) (time.Duration, bool, bool) {
	switch {
	case v == -1:
		return 0, true, true
	case v < -1:
		return 0, false, false
	default:
		return time.Duration(v), false, true
	}
}

// ContextCreate creates a context.
func (c *Core) ContextCreate() (core.Handle, int32) {
	return c.register(newIOContext(c.logger()))
}

func (c *Core) contextRun(ctx core.Handle, max int, block bool, timeout int64) (int, int32) {
	d, inf, valid := wireTimeout(timeout)
	if !valid {
		return 0, c.fail(result.ErrInvalidParam, "invalid timeout %d", timeout)
	}
	x, code := lookup[*ioContext](c, ctx, "Context")
	if code < 0 {
		return 0, code
	}
	n, ok := x.execute(max, block, d, inf)
	if !ok {
		return 0, c.fail(result.ErrBusy, "the context is already running")
	}
	return n, c.ok()
}

// ContextPoll runs all ready handlers without blocking.
func (c *Core) ContextPoll(ctx core.Handle) (int, int32) {
	return c.contextRun(ctx, 0, false, 0)
}

// ContextPollOne runs at most one ready handler without blocking.
func (c *Core) ContextPollOne(ctx core.Handle) (int, int32) {
	return c.contextRun(ctx, 1, false, 0)
}

// ContextRun runs handlers until timeout expires or the context is stopped.
func (c *Core) ContextRun(ctx core.Handle, timeout int64) (int, int32) {
	return c.contextRun(ctx, 0, true, timeout)
}

// ContextRunOne runs a single handler, waiting up to timeout for one.
func (c *Core) ContextRunOne(ctx core.Handle, timeout int64) (int, int32) {
	return c.contextRun(ctx, 1, true, timeout)
}

// ContextRunInBackground runs the context on a new goroutine until stopped.
func (c *Core) ContextRunInBackground(ctx core.Handle) int32 {
	x, code := lookup[*ioContext](c, ctx, "Context")
	if code < 0 {
		return code
	}
	if !x.runInBackground() {
		return c.fail(result.ErrBusy, "the context is already running")
	}
	return c.ok()
}

// ContextStop makes a running context return as soon as possible.
func (c *Core) ContextStop(ctx core.Handle) int32 {
	x, code := lookup[*ioContext](c, ctx, "Context")
	if code < 0 {
		return code
	}
	x.stop()
	return c.ok()
}

func (c *Core) contextWait(ctx core.Handle, running bool, timeout int64) int32 {
	d, inf, valid := wireTimeout(timeout)
	if !valid {
		return c.fail(result.ErrInvalidParam, "invalid timeout %d", timeout)
	}
	x, code := lookup[*ioContext](c, ctx, "Context")
	if code < 0 {
		return code
	}
	if !x.waitFor(running, d, inf) {
		return c.fail(result.ErrTimeout, "")
	}
	return c.ok()
}

// ContextWaitForRunning blocks until the context is running.
func (c *Core) ContextWaitForRunning(ctx core.Handle, timeout int64) int32 {
	return c.contextWait(ctx, true, timeout)
}

// ContextWaitForStopped blocks until the context is not running.
func (c *Core) ContextWaitForStopped(ctx core.Handle, timeout int64) int32 {
	return c.contextWait(ctx, false, timeout)
}

// ContextPost queues fn to run on the context.
func (c *Core) ContextPost(ctx core.Handle, fn core.PostFunc, userdata uintptr) int32 {
	if fn == nil {
		return c.fail(result.ErrInvalidParam, "fn is nil")
	}
	x, code := lookup[*ioContext](c, ctx, "Context")
	if code < 0 {
		return code
	}
	x.post(func() { fn(userdata) })
	return c.ok()
}
