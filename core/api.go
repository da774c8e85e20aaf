package core

import "github.com/wippyai/yogi-go/timestamp"

// Handle is an opaque native object pointer. Zero is the invalid handle.
type Handle uintptr

// Invalid is the handle the native side rejects with ErrInvalidHandle.
const Invalid Handle = 0

// Completion callbacks. The native side invokes them on its own goroutine
// with the userdata value that was passed when the operation started.
type (
	ResultFunc  func(res int32, userdata uintptr)
	SignalFunc  func(res int32, sig Signals, sigarg uintptr, userdata uintptr)
	EventFunc   func(res int32, ev BranchEvents, evres int32, userdata uintptr)
	PostFunc    func(userdata uintptr)
	RaiseFunc   func(sigarg uintptr, userdata uintptr)
	LogHookFunc func(entry LogEntry, userdata uintptr)
)

// LogEntry is a single record delivered to a log hook.
type LogEntry struct {
	Severity  Verbosity
	Timestamp timestamp.Timestamp
	Thread    int
	File      string
	Line      int
	Component string
	Message   string
}

// General covers library-wide calls.
type General interface {
	Version() string
	CheckBindingsCompatibility(bindver string) int32
	ErrorString(code int32) string
	LastErrorDetails() string
	FormatObject(obj Handle, objfmt, nullstr string) (string, int32)
	Destroy(obj Handle) int32
	DestroyAll() int32
}

// Logging covers log sinks and logger objects.
type Logging interface {
	ConfigureConsoleLogging(verbosity Verbosity, stream Stream, color bool, timefmt, fmt string) int32
	ConfigureHookLogging(verbosity Verbosity, fn LogHookFunc, userdata uintptr) int32
	ConfigureFileLogging(verbosity Verbosity, filename, timefmt, fmt string) (string, int32)
	LoggerCreate(component string) (Handle, int32)
	LoggerGetVerbosity(logger Handle) (Verbosity, int32)
	LoggerSetVerbosity(logger Handle, verbosity Verbosity) int32
	LoggerLog(logger Handle, severity Verbosity, file string, line int, msg string) int32
}

// Configurations covers configuration objects.
type Configurations interface {
	ConfigurationCreate(flags ConfigFlags) (Handle, int32)
	ConfigurationUpdateFromJSON(config Handle, json string) int32
	ConfigurationUpdateFromFile(config Handle, filename string) int32
	ConfigurationDump(config Handle, indent int) (string, int32)
	ConfigurationWriteToFile(config Handle, filename string, indent int) int32
}

// Contexts covers the execution context. Timeouts are wire durations
// where -1 means infinite. Count results report executed handlers.
type Contexts interface {
	ContextCreate() (Handle, int32)
	ContextPoll(ctx Handle) (int, int32)
	ContextPollOne(ctx Handle) (int, int32)
	ContextRun(ctx Handle, timeout int64) (int, int32)
	ContextRunOne(ctx Handle, timeout int64) (int, int32)
	ContextRunInBackground(ctx Handle) int32
	ContextStop(ctx Handle) int32
	ContextWaitForRunning(ctx Handle, timeout int64) int32
	ContextWaitForStopped(ctx Handle, timeout int64) int32
	ContextPost(ctx Handle, fn PostFunc, userdata uintptr) int32
}

// SignalAPI covers raising and awaiting process-local signals.
type SignalAPI interface {
	RaiseSignal(sig Signals, sigarg uintptr, fn RaiseFunc, userdata uintptr) int32
	SignalSetCreate(ctx Handle, signals Signals) (Handle, int32)
	SignalSetAwaitSignalAsync(sigset Handle, fn SignalFunc, userdata uintptr) int32
	SignalSetCancelAwaitSignal(sigset Handle) int32
}

// Timers covers one-shot timers.
type Timers interface {
	TimerCreate(ctx Handle) (Handle, int32)
	TimerStartAsync(timer Handle, timeout int64, fn ResultFunc, userdata uintptr) int32
	TimerCancel(timer Handle) int32
}

// Branches covers branch objects. The uuid and json buffers are supplied by
// the caller; json is written NUL-terminated and must not be touched by the
// caller until the operation completes.
type Branches interface {
	BranchCreate(ctx, config Handle, section string) (Handle, int32)
	BranchGetInfo(branch Handle, uuid, json []byte) int32
	BranchAwaitEventAsync(branch Handle, events BranchEvents, uuid, json []byte, fn EventFunc, userdata uintptr) int32
	BranchCancelAwaitEvent(branch Handle) int32
}

// API is the complete native function table.
type API interface {
	General
	Logging
	Configurations
	Contexts
	SignalAPI
	Timers
	Branches
}
