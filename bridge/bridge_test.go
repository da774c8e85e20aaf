package bridge

import (
	stderrors "errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/errors"
	"github.com/wippyai/yogi-go/result"
)

type details string

func (d details) LastErrorDetails() string { return string(d) }

func TestBegin_FiresOnce(t *testing.T) {
	logCore, logs := observer.New(zapcore.WarnLevel)
	b := New(details(""), WithLogger(zap.New(logCore)))

	var fire core.ResultFunc
	var ud uintptr
	var calls int
	var got result.Result

	id, err := b.Begin("timer", func(fn core.ResultFunc, userdata uintptr) int32 {
		fire, ud = fn, userdata
		return 3
	}, func(res result.Result) {
		calls++
		got = res
	})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if id != 3 {
		t.Fatalf("Expected passthrough value 3, got %d", id)
	}
	if b.Outstanding() != 1 {
		t.Fatalf("Expected 1 outstanding, got %d", b.Outstanding())
	}

	fire(int32(result.ErrCanceled), ud)
	if calls != 1 || got.Code() != result.ErrCanceled {
		t.Fatalf("calls=%d res=%v", calls, got.Code())
	}
	if b.Outstanding() != 0 {
		t.Fatalf("token not released, outstanding=%d", b.Outstanding())
	}

	fire(0, ud)
	if calls != 1 {
		t.Fatal("handler ran twice")
	}
	if b.RejectedFires() != 1 {
		t.Fatalf("Expected 1 rejected fire, got %d", b.RejectedFires())
	}
	if logs.Len() != 1 {
		t.Fatalf("Expected 1 warning, got %d", logs.Len())
	}
}

func TestBegin_SynchronousFailure(t *testing.T) {
	b := New(details("timer busy"))

	called := false
	_, err := b.Begin("timer", func(core.ResultFunc, uintptr) int32 {
		return int32(result.ErrInvalidHandle)
	}, func(result.Result) { called = true })

	var df *result.DetailedFailure
	if !stderrors.As(err, &df) || df.Code != result.ErrInvalidHandle {
		t.Fatalf("Expected DetailedFailure(ErrInvalidHandle), got %T %v", err, err)
	}
	if called {
		t.Fatal("handler invoked for synchronous failure")
	}
	if b.Outstanding() != 0 {
		t.Fatalf("token leaked, outstanding=%d", b.Outstanding())
	}
}

func TestBegin_HandlerPanic(t *testing.T) {
	logCore, logs := observer.New(zapcore.ErrorLevel)
	b := New(nil, WithLogger(zap.New(logCore)))

	var fire core.ResultFunc
	var ud uintptr
	b.Begin("boom", func(fn core.ResultFunc, userdata uintptr) int32 {
		fire, ud = fn, userdata
		return 0
	}, func(result.Result) { panic("boom") })

	fire(0, ud)
	if b.Outstanding() != 0 {
		t.Fatal("token not released after panic")
	}
	if b.Panics() != 1 || logs.Len() != 1 {
		t.Fatalf("panics=%d logs=%d", b.Panics(), logs.Len())
	}
}

func TestBegin_CapacityLimit(t *testing.T) {
	b := New(nil, WithMaxPending(1))

	var ud uintptr
	var fire core.ResultFunc
	_, err := b.Begin("a", func(fn core.ResultFunc, userdata uintptr) int32 {
		fire, ud = fn, userdata
		return 0
	}, nil)
	if err != nil {
		t.Fatalf("first Begin failed: %v", err)
	}

	reached := false
	_, err = b.Begin("b", func(core.ResultFunc, uintptr) int32 {
		reached = true
		return 0
	}, nil)
	if !stderrors.Is(err, result.ErrBadAlloc) {
		t.Fatalf("Expected ErrBadAlloc, got %v", err)
	}
	if !stderrors.Is(err, errors.ErrAllocation) {
		t.Fatalf("Expected allocation kind, got %v", err)
	}
	var yerr *errors.Error
	if !stderrors.As(err, &yerr) || yerr.Op != "alloc" || yerr.Value != 1 || !strings.Contains(yerr.Detail, "token slots exhausted") {
		t.Errorf("allocation error = %#v", yerr)
	}
	if reached {
		t.Fatal("native call issued despite exhausted capacity")
	}

	fire(0, ud)
	if _, err := b.Begin("c", func(core.ResultFunc, uintptr) int32 { return 0 }, nil); err != nil {
		t.Fatalf("Begin after release failed: %v", err)
	}
}

func TestBegin_TokensNeverReused(t *testing.T) {
	b := New(nil)
	seen := make(map[uintptr]bool)
	for i := 0; i < 10; i++ {
		var fire core.ResultFunc
		var ud uintptr
		b.Begin("x", func(fn core.ResultFunc, userdata uintptr) int32 {
			fire, ud = fn, userdata
			return 0
		}, nil)
		if seen[ud] {
			t.Fatalf("token %d reused", ud)
		}
		seen[ud] = true
		fire(0, ud)
	}
}

func TestBegin_WrongCallbackShape(t *testing.T) {
	b := New(nil)

	var ud uintptr
	b.Begin("timer", func(_ core.ResultFunc, userdata uintptr) int32 {
		ud = userdata
		return 0
	}, nil)

	b.onPost(ud)
	if b.RejectedFires() != 1 || b.Outstanding() != 1 {
		t.Fatalf("rejected=%d outstanding=%d", b.RejectedFires(), b.Outstanding())
	}
}

func TestBegin_ConcurrentFires(t *testing.T) {
	b := New(nil)

	var fire core.ResultFunc
	var ud uintptr
	var calls atomic.Int32
	b.Begin("race", func(fn core.ResultFunc, userdata uintptr) int32 {
		fire, ud = fn, userdata
		return 0
	}, func(result.Result) { calls.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fire(0, ud)
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("handler ran %d times", calls.Load())
	}
	if b.RejectedFires() != 15 {
		t.Fatalf("Expected 15 rejected fires, got %d", b.RejectedFires())
	}
}

func TestBeginEvent_DecodesBuffers(t *testing.T) {
	b := New(nil)
	want := uuid.New()

	var fire core.EventFunc
	var ud uintptr
	_, err := b.BeginEvent("branch", 64, func(u, j []byte, fn core.EventFunc, userdata uintptr) int32 {
		if len(u) != core.UUIDSize || len(j) != 64 {
			t.Errorf("buffer sizes %d/%d", len(u), len(j))
		}
		copy(u, want[:])
		copy(j, "{\"name\":\"b\"}\x00garbage")
		fire, ud = fn, userdata
		return 0
	}, func(res result.Result, ev core.BranchEvents, evres result.Result, info EventInfo) {
		if !res.OK() || ev != core.BranchEventDiscovered || evres.Code() != result.ErrBufferTooSmall {
			t.Errorf("res=%v ev=%v evres=%v", res, ev, evres)
		}
		if info.UUID != want || info.JSON != `{"name":"b"}` {
			t.Errorf("info=%+v", info)
		}
	})
	if err != nil {
		t.Fatalf("BeginEvent failed: %v", err)
	}

	fire(0, core.BranchEventDiscovered, int32(result.ErrBufferTooSmall), ud)
	if b.Outstanding() != 0 {
		t.Fatal("event token not released")
	}
}

func TestBeginEvent_CanceledHasNoInfo(t *testing.T) {
	b := New(nil)

	var got EventInfo
	var code result.ErrorCode
	var fire core.EventFunc
	var ud uintptr
	b.BeginEvent("branch", 0, func(u, j []byte, fn core.EventFunc, userdata uintptr) int32 {
		if len(j) != DefaultJSONBufferSize {
			t.Errorf("json buffer = %d", len(j))
		}
		copy(j, "stale")
		fire, ud = fn, userdata
		return 0
	}, func(res result.Result, _ core.BranchEvents, _ result.Result, info EventInfo) {
		code, got = res.Code(), info
	})

	fire(int32(result.ErrCanceled), core.BranchEventNone, 0, ud)
	if code != result.ErrCanceled || got.JSON != "" || got.UUID != uuid.Nil {
		t.Fatalf("code=%v info=%+v", code, got)
	}
}

func TestRaiseSignal_ArgumentLifetime(t *testing.T) {
	b := New(nil)

	type payload struct{ n int }
	arg := &payload{n: 7}

	// Await first so the signal handler can observe the argument.
	var sigFire core.SignalFunc
	var sigUD uintptr
	var gotArg any
	var gotSig core.Signals
	b.BeginSignal("sigset", func(fn core.SignalFunc, userdata uintptr) int32 {
		sigFire, sigUD = fn, userdata
		return 0
	}, func(res result.Result, sig core.Signals, sigarg any) {
		gotSig, gotArg = sig, sigarg
	})

	done := false
	var raiseFire core.RaiseFunc
	var raiseArg, raiseUD uintptr
	err := b.RaiseSignal("raise", arg, func(sigarg uintptr, fn core.RaiseFunc, userdata uintptr) int32 {
		raiseArg, raiseFire, raiseUD = sigarg, fn, userdata
		return 0
	}, func() { done = true })
	if err != nil {
		t.Fatalf("RaiseSignal failed: %v", err)
	}
	if b.Held() != 1 {
		t.Fatalf("Expected sigarg held, held=%d", b.Held())
	}

	sigFire(0, core.SigUsr1, raiseArg, sigUD)
	if gotSig != core.SigUsr1 || gotArg != arg {
		t.Fatalf("sig=%v arg=%v", gotSig, gotArg)
	}

	raiseFire(raiseArg, raiseUD)
	if !done {
		t.Fatal("raise completion not invoked")
	}
	if b.Held() != 0 || b.Outstanding() != 0 {
		t.Fatalf("held=%d outstanding=%d", b.Held(), b.Outstanding())
	}
}

func TestRaiseSignal_SynchronousFailureFreesArgument(t *testing.T) {
	b := New(nil)
	err := b.RaiseSignal("raise", "arg", func(uintptr, core.RaiseFunc, uintptr) int32 {
		return int32(result.ErrInvalidParam)
	}, nil)
	if !stderrors.Is(err, result.ErrInvalidParam) {
		t.Fatalf("err = %v", err)
	}
	if b.Held() != 0 || b.Outstanding() != 0 {
		t.Fatalf("held=%d outstanding=%d", b.Held(), b.Outstanding())
	}
}

func TestPost(t *testing.T) {
	b := New(nil)

	var fire core.PostFunc
	var ud uintptr
	ran := 0
	if err := b.Post("ctx", func(fn core.PostFunc, userdata uintptr) int32 {
		fire, ud = fn, userdata
		return 0
	}, func() { ran++ }); err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	fire(ud)
	fire(ud)
	if ran != 1 {
		t.Fatalf("post handler ran %d times", ran)
	}
}

func TestHook_Persistent(t *testing.T) {
	b := New(nil)

	var entries []core.LogEntry
	tok, fn, err := b.Hook("log", func(e core.LogEntry) { entries = append(entries, e) })
	if err != nil {
		t.Fatalf("Hook failed: %v", err)
	}

	fn(core.LogEntry{Message: "a"}, uintptr(tok))
	fn(core.LogEntry{Message: "b"}, uintptr(tok))
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if b.Held() != 1 || b.Outstanding() != 0 {
		t.Fatalf("held=%d outstanding=%d", b.Held(), b.Outstanding())
	}

	if !b.Unhook(tok) || b.Unhook(tok) {
		t.Fatal("Unhook should succeed exactly once")
	}
	fn(core.LogEntry{Message: "c"}, uintptr(tok))
	if len(entries) != 2 || b.RejectedFires() != 1 {
		t.Fatalf("entries=%d rejected=%d", len(entries), b.RejectedFires())
	}
}

func TestPendingSnapshot(t *testing.T) {
	b := New(nil)
	b.Begin("timer start", func(core.ResultFunc, uintptr) int32 { return 0 }, nil)
	b.Hook("log hook", func(core.LogEntry) {})

	pending := b.Pending()
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending, got %d", len(pending))
	}
	for _, p := range pending {
		switch p.Kind {
		case KindResult:
			if p.Label != "timer start" || p.Persistent {
				t.Errorf("unexpected %+v", p)
			}
		case KindLogHook:
			if !p.Persistent {
				t.Errorf("hook should be persistent")
			}
		default:
			t.Errorf("unexpected kind %v", p.Kind)
		}
	}
}

func TestBuffers(t *testing.T) {
	if CString([]byte("abc\x00def")) != "abc" || CString([]byte("xyz")) != "xyz" {
		t.Error("CString")
	}
	if _, err := DecodeUUID([]byte{1, 2}); !stderrors.Is(err, errors.ErrInvalidData) {
		t.Errorf("DecodeUUID short buffer: %v", err)
	}
}
