package yogi

import (
	"github.com/wippyai/yogi-go/bridge"
	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/result"
)

// SignalSet receives a subset of the signals raised with RaiseSignal.
type SignalSet struct {
	Object
	signals core.Signals
}

// NewSignalSet creates a set listening for signals on ctx.
func (l *Library) NewSignalSet(ctx *Context, signals core.Signals) (*SignalSet, error) {
	obj, err := l.create("SignalSet", func() (core.Handle, int32) {
		return l.api.SignalSetCreate(ctx.Handle(), signals)
	}, &ctx.Object)
	if err != nil {
		return nil, err
	}
	return &SignalSet{Object: obj, signals: signals}, nil
}

// Signals returns the signals the set listens for.
func (s *SignalSet) Signals() core.Signals {
	return s.signals
}

// AwaitSignalAsync waits for the next signal. Signals raised while nobody
// awaits are queued in the set.
func (s *SignalSet) AwaitSignalAsync(h bridge.SignalHandler) error {
	if h == nil {
		return result.ErrInvalidParam
	}
	_, err := s.lib.bridge.BeginSignal("SignalSet.AwaitSignalAsync", func(fn core.SignalFunc, ud uintptr) int32 {
		return s.res.Call(func(h core.Handle) int32 { return s.lib.api.SignalSetAwaitSignalAsync(h, fn, ud) })
	}, h)
	return err
}

// CancelAwaitSignal cancels a pending await. It returns false if there was
// none.
func (s *SignalSet) CancelAwaitSignal() (bool, error) {
	return s.callBool(result.ErrOperationNotRunning, s.lib.api.SignalSetCancelAwaitSignal)
}

// RaiseSignal raises sig in the process. onDone may be nil; otherwise it
// runs once all matching sets have handled the signal.
func (l *Library) RaiseSignal(sig core.Signals, onDone func()) error {
	return l.raise(sig, nil, onDone)
}

// RaiseSignalWithArg raises sig carrying arg. Handlers receive arg as
// their sigarg, and onDone receives it back once every handler ran.
func (l *Library) RaiseSignalWithArg(sig core.Signals, arg any, onDone func(arg any)) error {
	var done func()
	if onDone != nil {
		done = func() { onDone(arg) }
	}
	return l.raise(sig, arg, done)
}

func (l *Library) raise(sig core.Signals, arg any, onDone func()) error {
	return l.bridge.RaiseSignal("RaiseSignal", arg, func(sigarg uintptr, fn core.RaiseFunc, ud uintptr) int32 {
		return l.api.RaiseSignal(sig, sigarg, fn, ud)
	}, onDone)
}
