package sim

import (
	"sync"
	"time"

	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/result"
)

type timerOp struct {
	fn       core.ResultFunc
	t        *time.Timer
	userdata uintptr
}

// timer completes at most one wait at a time. Starting a new wait cancels
// the previous one.
type timer struct {
	ctx *ioContext
	op  *timerOp
	mu  sync.Mutex
}

func (t *timer) typeName() string { return "Timer" }

func (t *timer) destroy() { t.cancel() }

func (t *timer) start(timeout time.Duration, infinite bool, fn core.ResultFunc, userdata uintptr) {
	op := &timerOp{fn: fn, userdata: userdata}

	t.mu.Lock()
	prev := t.op
	t.op = op
	if !infinite {
		op.t = time.AfterFunc(timeout, func() { t.expire(op) })
	}
	t.mu.Unlock()

	if prev != nil {
		t.abort(prev)
	}
}

func (t *timer) expire(op *timerOp) {
	t.mu.Lock()
	if t.op != op {
		t.mu.Unlock()
		return
	}
	t.op = nil
	t.mu.Unlock()

	t.ctx.post(func() { op.fn(int32(result.OK), op.userdata) })
}

func (t *timer) abort(op *timerOp) {
	if op.t != nil {
		op.t.Stop()
	}
	t.ctx.post(func() { op.fn(int32(result.ErrCanceled), op.userdata) })
}

// cancel reports whether a wait was pending.
func (t *timer) cancel() bool {
	t.mu.Lock()
	op := t.op
	t.op = nil
	t.mu.Unlock()

	if op == nil {
		return false
	}
	t.abort(op)
	return true
}

// TimerCreate creates a timer bound to ctx.
func (c *Core) TimerCreate(ctx core.Handle) (core.Handle, int32) {
	x, code := lookup[*ioContext](c, ctx, "Context")
	if code < 0 {
		return core.Invalid, code
	}
	return c.register(&timer{ctx: x}, ctx)
}

// TimerStartAsync starts waiting. fn runs on the timer's context with OK on
// expiry or ErrCanceled if the wait is canceled or replaced.
func (c *Core) TimerStartAsync(tmr core.Handle, timeout int64, fn core.ResultFunc, userdata uintptr) int32 {
	d, inf, valid := wireTimeout(timeout)
	if !valid {
		return c.fail(result.ErrInvalidParam, "invalid timeout %d", timeout)
	}
	if fn == nil {
		return c.fail(result.ErrInvalidParam, "fn is nil")
	}
	t, code := lookup[*timer](c, tmr, "Timer")
	if code < 0 {
		return code
	}
	t.start(d, inf, fn, userdata)
	return c.ok()
}

// TimerCancel cancels the pending wait. It fails with ErrTimerExpired if
// there is none.
func (c *Core) TimerCancel(tmr core.Handle) int32 {
	t, code := lookup[*timer](c, tmr, "Timer")
	if code < 0 {
		return code
	}
	if !t.cancel() {
		return c.fail(result.ErrTimerExpired, "")
	}
	return c.ok()
}
