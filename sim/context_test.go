package sim

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/result"
)

func TestContext_PostAndPoll(t *testing.T) {
	c := New()
	ctx := newContext(t, c)

	var order []uintptr
	fn := func(ud uintptr) { order = append(order, ud) }
	for i := uintptr(1); i <= 3; i++ {
		must(t, c.ContextPost(ctx, fn, i))
	}

	n, code := c.ContextPollOne(ctx)
	must(t, code)
	if n != 1 {
		t.Fatalf("PollOne ran %d handlers", n)
	}
	n, _ = c.ContextPoll(ctx)
	if n != 2 {
		t.Fatalf("Poll ran %d handlers", n)
	}
	n, _ = c.ContextPoll(ctx)
	if n != 0 {
		t.Fatalf("Poll on empty queue ran %d handlers", n)
	}
	if len(order) != 3 || order[0] != 1 || order[2] != 3 {
		t.Fatalf("handlers ran out of order: %v", order)
	}

	expect(t, c.ContextPost(ctx, nil, 0), result.ErrInvalidParam)
}

func TestContext_RunOneTimeout(t *testing.T) {
	c := New()
	ctx := newContext(t, c)

	start := time.Now()
	n, code := c.ContextRunOne(ctx, int64(20*time.Millisecond))
	must(t, code)
	if n != 0 {
		t.Fatalf("RunOne ran %d handlers", n)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatal("RunOne returned before its timeout")
	}

	_, code = c.ContextRun(ctx, -2)
	expect(t, code, result.ErrInvalidParam)
}

func TestContext_RunUntilStopped(t *testing.T) {
	c := New()
	ctx := newContext(t, c)

	done := make(chan int, 1)
	go func() {
		n, _ := c.ContextRun(ctx, -1)
		done <- n
	}()
	must(t, c.ContextWaitForRunning(ctx, int64(time.Second)))

	must(t, c.ContextPost(ctx, func(uintptr) {}, 0))
	must(t, c.ContextPost(ctx, func(uintptr) { c.ContextStop(ctx) }, 0))

	select {
	case n := <-done:
		if n != 2 {
			t.Fatalf("Run executed %d handlers, want 2", n)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after stop")
	}
	must(t, c.ContextWaitForStopped(ctx, int64(time.Second)))
}

func TestContext_Background(t *testing.T) {
	c := New()
	ctx := newContext(t, c)

	expect(t, c.ContextWaitForRunning(ctx, int64(10*time.Millisecond)), result.ErrTimeout)

	must(t, c.ContextRunInBackground(ctx))
	must(t, c.ContextWaitForRunning(ctx, -1))
	expect(t, c.ContextRunInBackground(ctx), result.ErrBusy)
	_, code := c.ContextPoll(ctx)
	expect(t, code, result.ErrBusy)

	var ran atomic.Bool
	must(t, c.ContextPost(ctx, func(uintptr) { ran.Store(true) }, 0))

	deadline := time.Now().Add(time.Second)
	for !ran.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !ran.Load() {
		t.Fatal("background context did not run posted handler")
	}

	must(t, c.ContextStop(ctx))
	must(t, c.ContextWaitForStopped(ctx, int64(time.Second)))
	must(t, c.Destroy(ctx))
}

func TestContext_DestroyDrainsQueue(t *testing.T) {
	c := New()
	ctx := newContext(t, c)

	ran := false
	must(t, c.ContextPost(ctx, func(uintptr) { ran = true }, 0))
	must(t, c.Destroy(ctx))
	if !ran {
		t.Fatal("queued handler dropped on destroy")
	}
	expect(t, c.ContextStop(ctx), result.ErrInvalidHandle)
}

func TestTimer(t *testing.T) {
	c := New()
	ctx := newContext(t, c)
	tmr, code := c.TimerCreate(ctx)
	must(t, code)

	var got []int32
	fn := func(res int32, ud uintptr) { got = append(got, res) }

	t.Run("expires", func(t *testing.T) {
		got = nil
		must(t, c.TimerStartAsync(tmr, int64(time.Millisecond), fn, 0))
		n, _ := c.ContextRunOne(ctx, int64(time.Second))
		if n != 1 || len(got) != 1 || got[0] != int32(result.OK) {
			t.Fatalf("n=%d got=%v", n, got)
		}
		expect(t, c.TimerCancel(tmr), result.ErrTimerExpired)
	})

	t.Run("cancel", func(t *testing.T) {
		got = nil
		must(t, c.TimerStartAsync(tmr, -1, fn, 0))
		must(t, c.TimerCancel(tmr))
		c.ContextPoll(ctx)
		if len(got) != 1 || got[0] != int32(result.ErrCanceled) {
			t.Fatalf("got=%v", got)
		}
	})

	t.Run("restart cancels previous", func(t *testing.T) {
		got = nil
		must(t, c.TimerStartAsync(tmr, -1, fn, 0))
		must(t, c.TimerStartAsync(tmr, int64(100*time.Millisecond), fn, 0))
		c.ContextPoll(ctx)
		if len(got) != 1 || got[0] != int32(result.ErrCanceled) {
			t.Fatalf("got=%v", got)
		}
		c.ContextRunOne(ctx, int64(time.Second))
		if len(got) != 2 || got[1] != int32(result.OK) {
			t.Fatalf("got=%v", got)
		}
	})

	t.Run("destroy cancels", func(t *testing.T) {
		got = nil
		must(t, c.TimerStartAsync(tmr, -1, fn, 0))
		must(t, c.Destroy(tmr))
		c.ContextPoll(ctx)
		if len(got) != 1 || got[0] != int32(result.ErrCanceled) {
			t.Fatalf("got=%v", got)
		}
	})

	expect(t, c.TimerStartAsync(tmr, -1, fn, 0), result.ErrInvalidHandle)
	_, code = c.TimerCreate(core.Invalid)
	expect(t, code, result.ErrInvalidHandle)
}

func TestSignals(t *testing.T) {
	c := New()
	ctx := newContext(t, c)
	set, code := c.SignalSetCreate(ctx, core.SigTerm|core.SigUsr8)
	must(t, code)

	type delivery struct {
		res int32
		sig core.Signals
		arg uintptr
	}
	var got []delivery
	fn := func(res int32, sig core.Signals, arg uintptr, _ uintptr) {
		got = append(got, delivery{res, sig, arg})
	}
	cleaned := 0
	cleanup := func(arg uintptr, _ uintptr) { cleaned++ }

	t.Run("no listener cleans up immediately", func(t *testing.T) {
		must(t, c.RaiseSignal(core.SigInt, 7, cleanup, 0))
		if cleaned != 1 {
			t.Fatalf("cleaned=%d", cleaned)
		}
	})

	t.Run("deliver to awaiting set", func(t *testing.T) {
		got, cleaned = nil, 0
		must(t, c.SignalSetAwaitSignalAsync(set, fn, 0))
		must(t, c.RaiseSignal(core.SigTerm, 42, cleanup, 0))
		if cleaned != 0 {
			t.Fatal("cleanup ran before delivery")
		}
		c.ContextPoll(ctx)
		if len(got) != 1 || got[0] != (delivery{0, core.SigTerm, 42}) || cleaned != 1 {
			t.Fatalf("got=%v cleaned=%d", got, cleaned)
		}
	})

	t.Run("queued until awaited", func(t *testing.T) {
		got, cleaned = nil, 0
		must(t, c.RaiseSignal(core.SigUsr8, 1, cleanup, 0))
		c.ContextPoll(ctx)
		if len(got) != 0 {
			t.Fatal("delivered without await")
		}
		must(t, c.SignalSetAwaitSignalAsync(set, fn, 0))
		c.ContextPoll(ctx)
		if len(got) != 1 || got[0].sig != core.SigUsr8 || cleaned != 1 {
			t.Fatalf("got=%v cleaned=%d", got, cleaned)
		}
	})

	t.Run("cancel", func(t *testing.T) {
		got = nil
		expect(t, c.SignalSetCancelAwaitSignal(set), result.ErrOperationNotRunning)
		must(t, c.SignalSetAwaitSignalAsync(set, fn, 0))
		must(t, c.SignalSetCancelAwaitSignal(set))
		c.ContextPoll(ctx)
		if len(got) != 1 || got[0].res != int32(result.ErrCanceled) {
			t.Fatalf("got=%v", got)
		}
	})

	t.Run("destroy releases queued signals", func(t *testing.T) {
		cleaned = 0
		must(t, c.RaiseSignal(core.SigTerm, 0, cleanup, 0))
		must(t, c.Destroy(set))
		c.ContextPoll(ctx)
		if cleaned != 1 {
			t.Fatalf("cleaned=%d", cleaned)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		expect(t, c.RaiseSignal(core.SigInt|core.SigTerm, 0, nil, 0), result.ErrInvalidParam)
		expect(t, c.RaiseSignal(core.SigNone, 0, nil, 0), result.ErrInvalidParam)
		_, code := c.SignalSetCreate(ctx, 1<<5)
		expect(t, code, result.ErrInvalidParam)
	})
}
