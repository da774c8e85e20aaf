package sim

import (
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"

	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/result"
)

// raised is one RaiseSignal call shared by all matching signal sets. The
// cleanup runs after the last set has delivered or dropped it.
type raised struct {
	cleanup func()
	arg     uintptr
	pending atomic.Int32
	sig     core.Signals
}

func (r *raised) done() bool {
	return r.pending.Add(-1) == 0
}

type signalAwait struct {
	fn       core.SignalFunc
	userdata uintptr
}

type signalSet struct {
	ctx     *ioContext
	await   *signalAwait
	queue   *queue.Queue
	mu      sync.Mutex
	signals core.Signals
	closed  bool
}

func (s *signalSet) typeName() string { return "SignalSet" }

func (s *signalSet) destroy() {
	s.mu.Lock()
	s.closed = true
	for s.queue.Length() > 0 {
		r := s.queue.Remove().(*raised)
		if r.done() {
			s.ctx.post(r.cleanup)
		}
	}
	s.mu.Unlock()

	s.awaitAsync(nil, 0)
}

func (s *signalSet) raise(r *raised) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		if r.done() {
			s.ctx.post(r.cleanup)
		}
		return
	}
	s.queue.Add(r)
	s.deliverLocked()
}

func (s *signalSet) deliverLocked() {
	if s.await == nil || s.queue.Length() == 0 {
		return
	}
	a := s.await
	s.await = nil
	r := s.queue.Remove().(*raised)
	s.ctx.post(func() {
		a.fn(int32(result.OK), r.sig, r.arg, a.userdata)
		if r.done() {
			r.cleanup()
		}
	})
}

// awaitAsync replaces the pending await, completing the old one with
// ErrCanceled. A nil fn only cancels. It reports whether an await was
// pending.
func (s *signalSet) awaitAsync(fn core.SignalFunc, userdata uintptr) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	canceled := false
	if old := s.await; old != nil {
		canceled = true
		s.ctx.post(func() { old.fn(int32(result.ErrCanceled), core.SigNone, 0, old.userdata) })
	}

	s.await = nil
	if fn != nil {
		s.await = &signalAwait{fn: fn, userdata: userdata}
	}
	s.deliverLocked()
	return canceled
}

// RaiseSignal delivers sig to every signal set listening for it. fn runs
// once all of them have handled the signal, or immediately if none listen.
func (c *Core) RaiseSignal(sig core.Signals, sigarg uintptr, fn core.RaiseFunc, userdata uintptr) int32 {
	if sig == core.SigNone || sig&^core.SigAll != 0 || sig&(sig-1) != 0 {
		return c.fail(result.ErrInvalidParam, "exactly one signal must be set, got %v", sig)
	}

	r := &raised{
		sig: sig,
		arg: sigarg,
		cleanup: func() {
			if fn != nil {
				fn(sigarg, userdata)
			}
		},
	}

	sets := c.signalSets(sig)
	if len(sets) == 0 {
		r.cleanup()
		return c.ok()
	}

	r.pending.Store(int32(len(sets)))
	for _, s := range sets {
		s.raise(r)
	}
	return c.ok()
}

// SignalSetCreate creates a set listening for signals on ctx.
func (c *Core) SignalSetCreate(ctx core.Handle, signals core.Signals) (core.Handle, int32) {
	if signals&^core.SigAll != 0 {
		return core.Invalid, c.fail(result.ErrInvalidParam, "invalid signal flags %#x", uint32(signals))
	}
	x, code := lookup[*ioContext](c, ctx, "Context")
	if code < 0 {
		return core.Invalid, code
	}
	return c.register(&signalSet{ctx: x, signals: signals, queue: queue.New()}, ctx)
}

// SignalSetAwaitSignalAsync waits for the next signal. Signals raised while
// nobody waits are queued.
func (c *Core) SignalSetAwaitSignalAsync(sigset core.Handle, fn core.SignalFunc, userdata uintptr) int32 {
	if fn == nil {
		return c.fail(result.ErrInvalidParam, "fn is nil")
	}
	s, code := lookup[*signalSet](c, sigset, "SignalSet")
	if code < 0 {
		return code
	}
	s.awaitAsync(fn, userdata)
	return c.ok()
}

// SignalSetCancelAwaitSignal cancels the pending await. It fails with
// ErrOperationNotRunning if there is none.
func (c *Core) SignalSetCancelAwaitSignal(sigset core.Handle) int32 {
	s, code := lookup[*signalSet](c, sigset, "SignalSet")
	if code < 0 {
		return code
	}
	if !s.awaitAsync(nil, 0) {
		return c.fail(result.ErrOperationNotRunning, "")
	}
	return c.ok()
}
