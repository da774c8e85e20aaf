package bridge

import (
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/result"
)

// EventInfo is the decoded payload of a branch event.
type EventInfo struct {
	JSON string
	UUID uuid.UUID
}

// Handler types invoked when an operation completes.
type (
	ResultHandler func(res result.Result)
	SignalHandler func(res result.Result, sig core.Signals, sigarg any)
	EventHandler  func(res result.Result, ev core.BranchEvents, evres result.Result, info EventInfo)
	LogHandler    func(entry core.LogEntry)
)

// Bridge connects native completion callbacks to Go handlers.
//
// Each asynchronous call registers its handler under a fresh Token and passes
// one of the bridge's trampolines with the token as userdata. The trampoline
// runs the handler exactly once and releases the token afterwards, even if
// the handler panics. The bridge starts no goroutines.
type Bridge struct {
	src      result.DetailSource
	log      *zap.Logger
	reg      *registry
	rejected atomic.Uint64
	panics   atomic.Uint64

	onResult core.ResultFunc
	onSignal core.SignalFunc
	onEvent  core.EventFunc
	onPost   core.PostFunc
	onRaise  core.RaiseFunc
	onLog    core.LogHookFunc
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger overrides the package logger for this bridge.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// WithMaxPending limits the number of registered tokens. Zero means no limit.
func WithMaxPending(n int) Option {
	return func(b *Bridge) { b.reg.max = n }
}

// New creates a bridge. src supplies error details for synchronous failures.
func New(src result.DetailSource, opts ...Option) *Bridge {
	b := &Bridge{
		src: src,
		reg: newRegistry(0),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.onResult = b.fireResult
	b.onSignal = b.fireSignal
	b.onEvent = b.fireEvent
	b.onPost = b.firePost
	b.onRaise = b.fireRaise
	b.onLog = b.fireLog
	return b
}

func (b *Bridge) logger() *zap.Logger {
	if b.log != nil {
		return b.log
	}
	return Logger()
}

// Begin starts an operation that completes with a single result code. The
// value returned by call is passed through on success, e.g. an operation id.
// On a negative value the handler is never invoked and the Check error is
// returned.
func (b *Bridge) Begin(label string, call func(fn core.ResultFunc, userdata uintptr) int32, h ResultHandler) (int32, error) {
	tok, err := b.reg.alloc(&slot{kind: KindResult, label: label, handler: h})
	if err != nil {
		return int32(result.ErrBadAlloc), err
	}
	return b.start(tok, call(b.onResult, uintptr(tok)))
}

// BeginSignal starts awaiting a signal.
func (b *Bridge) BeginSignal(label string, call func(fn core.SignalFunc, userdata uintptr) int32, h SignalHandler) (int32, error) {
	tok, err := b.reg.alloc(&slot{kind: KindSignal, label: label, handler: h})
	if err != nil {
		return int32(result.ErrBadAlloc), err
	}
	return b.start(tok, call(b.onSignal, uintptr(tok)))
}

// BeginEvent starts awaiting a branch event. The token owns the uuid and
// json out-buffers until the callback fires.
func (b *Bridge) BeginEvent(label string, jsonSize int, call func(uuid, json []byte, fn core.EventFunc, userdata uintptr) int32, h EventHandler) (int32, error) {
	if jsonSize <= 0 {
		jsonSize = DefaultJSONBufferSize
	}
	s := &slot{
		kind:    KindEvent,
		label:   label,
		handler: h,
		uuid:    make([]byte, core.UUIDSize),
		json:    make([]byte, jsonSize),
	}
	tok, err := b.reg.alloc(s)
	if err != nil {
		return int32(result.ErrBadAlloc), err
	}
	return b.start(tok, call(s.uuid, s.json, b.onEvent, uintptr(tok)))
}

// Post schedules fn through a native post call.
func (b *Bridge) Post(label string, call func(fn core.PostFunc, userdata uintptr) int32, fn func()) error {
	tok, err := b.reg.alloc(&slot{kind: KindPost, label: label, handler: fn})
	if err != nil {
		return err
	}
	_, err = b.start(tok, call(b.onPost, uintptr(tok)))
	return err
}

// RaiseSignal registers sigarg for delivery to signal handlers and starts
// the native raise. onDone runs once every handler has seen the signal;
// sigarg is released right before it.
func (b *Bridge) RaiseSignal(label string, sigarg any, call func(sigarg uintptr, fn core.RaiseFunc, userdata uintptr) int32, onDone func()) error {
	var argTok Token
	if sigarg != nil {
		var err error
		argTok, err = b.reg.alloc(&slot{kind: KindSignalArg, label: label, value: sigarg, persistent: true})
		if err != nil {
			return err
		}
	}

	tok, err := b.reg.alloc(&slot{kind: KindRaise, label: label, handler: onDone, value: argTok})
	if err != nil {
		if argTok != 0 {
			b.reg.free(argTok)
		}
		return err
	}

	code := call(uintptr(argTok), b.onRaise, uintptr(tok))
	if code < 0 && argTok != 0 {
		b.reg.free(argTok)
	}
	_, err = b.start(tok, code)
	return err
}

// Hook registers a persistent log handler. The returned token stays valid
// until Unhook.
func (b *Bridge) Hook(label string, h LogHandler) (Token, core.LogHookFunc, error) {
	tok, err := b.reg.alloc(&slot{kind: KindLogHook, label: label, handler: h, persistent: true})
	if err != nil {
		return 0, nil, err
	}
	return tok, b.onLog, nil
}

// Unhook releases a persistent registration. It reports whether tok was
// registered.
func (b *Bridge) Unhook(tok Token) bool {
	return b.reg.free(tok)
}

func (b *Bridge) start(tok Token, code int32) (int32, error) {
	if code >= 0 {
		return code, nil
	}
	b.reg.free(tok)
	return result.Check(b.src, code)
}

// Outstanding returns the number of one-shot tokens awaiting their callback.
func (b *Bridge) Outstanding() int {
	n, _ := b.reg.counts()
	return n
}

// Held returns the number of persistent registrations.
func (b *Bridge) Held() int {
	_, n := b.reg.counts()
	return n
}

// Pending returns a snapshot of all registrations.
func (b *Bridge) Pending() []Pending {
	return b.reg.snapshot()
}

// RejectedFires returns how many callbacks arrived for unknown or already
// fired tokens.
func (b *Bridge) RejectedFires() uint64 {
	return b.rejected.Load()
}

// Panics returns how many handlers panicked.
func (b *Bridge) Panics() uint64 {
	return b.panics.Load()
}

func (b *Bridge) reject(userdata uintptr, kind Kind) {
	b.rejected.Add(1)
	b.logger().Warn("rejected callback for unknown or completed token",
		zap.Uint64("token", uint64(userdata)),
		zap.Stringer("kind", kind))
}

func (b *Bridge) invoke(tok Token, kind Kind, release bool, fn func()) {
	if release {
		defer b.reg.free(tok)
	}
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			b.logger().Error("completion handler panicked",
				zap.Uint64("token", uint64(tok)),
				zap.Stringer("kind", kind),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	fn()
}

func (b *Bridge) fireResult(res int32, userdata uintptr) {
	tok := Token(userdata)
	s, ok := b.reg.claim(tok, KindResult)
	if !ok {
		b.reject(userdata, KindResult)
		return
	}
	h, _ := s.handler.(ResultHandler)
	b.invoke(tok, KindResult, true, func() {
		if h != nil {
			h(result.ToResult(res))
		}
	})
}

func (b *Bridge) fireSignal(res int32, sig core.Signals, sigarg uintptr, userdata uintptr) {
	tok := Token(userdata)
	s, ok := b.reg.claim(tok, KindSignal)
	if !ok {
		b.reject(userdata, KindSignal)
		return
	}
	var arg any
	if sigarg != 0 {
		if as, ok := b.reg.peek(Token(sigarg), KindSignalArg); ok {
			arg = as.value
		}
	}
	h, _ := s.handler.(SignalHandler)
	b.invoke(tok, KindSignal, true, func() {
		if h != nil {
			h(result.ToResult(res), sig, arg)
		}
	})
}

func (b *Bridge) fireEvent(res int32, ev core.BranchEvents, evres int32, userdata uintptr) {
	tok := Token(userdata)
	s, ok := b.reg.claim(tok, KindEvent)
	if !ok {
		b.reject(userdata, KindEvent)
		return
	}

	var info EventInfo
	if res >= 0 {
		if id, err := DecodeUUID(s.uuid); err == nil {
			info.UUID = id
		}
		info.JSON = CString(s.json)
	}

	h, _ := s.handler.(EventHandler)
	b.invoke(tok, KindEvent, true, func() {
		if h != nil {
			h(result.ToResult(res), ev, result.ToResult(evres), info)
		}
	})
}

func (b *Bridge) firePost(userdata uintptr) {
	tok := Token(userdata)
	s, ok := b.reg.claim(tok, KindPost)
	if !ok {
		b.reject(userdata, KindPost)
		return
	}
	fn, _ := s.handler.(func())
	b.invoke(tok, KindPost, true, func() {
		if fn != nil {
			fn()
		}
	})
}

func (b *Bridge) fireRaise(sigarg uintptr, userdata uintptr) {
	tok := Token(userdata)
	s, ok := b.reg.claim(tok, KindRaise)
	if !ok {
		b.reject(userdata, KindRaise)
		return
	}
	if argTok, _ := s.value.(Token); argTok != 0 {
		b.reg.free(argTok)
	}
	fn, _ := s.handler.(func())
	b.invoke(tok, KindRaise, true, func() {
		if fn != nil {
			fn()
		}
	})
}

func (b *Bridge) fireLog(entry core.LogEntry, userdata uintptr) {
	tok := Token(userdata)
	s, ok := b.reg.peek(tok, KindLogHook)
	if !ok {
		b.reject(userdata, KindLogHook)
		return
	}
	h, _ := s.handler.(LogHandler)
	b.invoke(tok, KindLogHook, false, func() {
		if h != nil {
			h(entry)
		}
	})
}
