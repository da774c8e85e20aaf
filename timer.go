package yogi

import (
	"github.com/wippyai/yogi-go/bridge"
	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/duration"
	"github.com/wippyai/yogi-go/result"
)

// Timer is a one-shot timer bound to a Context.
type Timer struct {
	Object
}

// NewTimer creates a timer on ctx. ctx stays alive while the timer exists.
func (l *Library) NewTimer(ctx *Context) (*Timer, error) {
	obj, err := l.create("Timer", func() (core.Handle, int32) {
		return l.api.TimerCreate(ctx.Handle())
	}, &ctx.Object)
	if err != nil {
		return nil, err
	}
	return &Timer{Object: obj}, nil
}

// StartAsync arms the timer. h runs with OK on expiry or ErrCanceled when
// the timer is canceled, restarted or destroyed first.
func (t *Timer) StartAsync(d duration.Duration, h bridge.ResultHandler) error {
	if h == nil {
		return result.ErrInvalidParam
	}
	v, err := d.APIValue()
	if err != nil {
		return err
	}
	_, err = t.lib.bridge.Begin("Timer.StartAsync", func(fn core.ResultFunc, ud uintptr) int32 {
		return t.res.Call(func(h core.Handle) int32 { return t.lib.api.TimerStartAsync(h, v, fn, ud) })
	}, h)
	return err
}

// Cancel aborts a running timer. It returns false if the timer was not
// running.
func (t *Timer) Cancel() (bool, error) {
	return t.callBool(result.ErrTimerExpired, t.lib.api.TimerCancel)
}
