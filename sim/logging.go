package sim

import (
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/result"
	"github.com/wippyai/yogi-go/timestamp"
)

// Defaults used when the caller passes an empty format string.
const (
	DefaultLogTimeFormat = "%F %T.%3"
	DefaultLogFormat     = "$t [T$T] $<$s $c: $m$>"
	DefaultVerbosity     = core.VerbosityInfo
)

var badLogFormatRe = regexp.MustCompile(`\$([^tPTsmflc<>]|$)`)

func validLogFormat(f string) bool {
	return !badLogFormatRe.MatchString(strings.ReplaceAll(f, "$$", ""))
}

func validVerbosity(v core.Verbosity) bool {
	return v >= core.VerbosityNone && v <= core.VerbosityTrace
}

func zapLevel(v core.Verbosity) zapcore.Level {
	switch v {
	case core.VerbosityFatal:
		return zapcore.FatalLevel
	case core.VerbosityError:
		return zapcore.ErrorLevel
	case core.VerbosityWarning:
		return zapcore.WarnLevel
	case core.VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

func encoderConfig(timefmt string, color bool) zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(timestamp.FormatTime(t, timefmt))
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.StacktraceKey = ""
	return cfg
}

type textSink struct {
	core      zapcore.Core
	close     func() error
	verbosity core.Verbosity
}

type hookSink struct {
	fn        core.LogHookFunc
	userdata  uintptr
	verbosity core.Verbosity
}

type logState struct {
	app     *logObject
	console *textSink
	file    *textSink
	hook    *hookSink
	mu      sync.RWMutex
}

func newLogState() *logState {
	return &logState{app: newLogObject("App")}
}

// logObject is a named log source with its own verbosity.
type logObject struct {
	component string
	verbosity atomic.Int32
}

func newLogObject(component string) *logObject {
	l := &logObject{component: component}
	l.verbosity.Store(int32(DefaultVerbosity))
	return l
}

func (l *logObject) typeName() string { return "Logger" }

func (l *logObject) destroy() {}

func (s *logState) write(e core.LogEntry) {
	s.mu.RLock()
	console, file, hook := s.console, s.file, s.hook
	s.mu.RUnlock()

	for _, sink := range []*textSink{console, file} {
		if sink == nil || e.Severity > sink.verbosity {
			continue
		}
		_ = sink.core.Write(zapcore.Entry{
			Level:      zapLevel(e.Severity),
			Time:       e.Timestamp.Time(),
			LoggerName: e.Component,
			Message:    e.Message,
			Caller:     zapcore.NewEntryCaller(0, e.File, e.Line, e.File != ""),
		}, nil)
	}
	if hook != nil && e.Severity <= hook.verbosity {
		hook.fn(e, hook.userdata)
	}
}

func (s *logState) swapFile(sink *textSink) {
	s.mu.Lock()
	old := s.file
	s.file = sink
	s.mu.Unlock()
	if old != nil && old.close != nil {
		_ = old.close()
	}
}

// ConfigureConsoleLogging writes log entries up to verbosity to stdout or
// stderr. VerbosityNone disables the sink.
func (c *Core) ConfigureConsoleLogging(verbosity core.Verbosity, stream core.Stream, color bool, timefmt, logfmt string) int32 {
	if !validVerbosity(verbosity) || (stream != core.StreamStdout && stream != core.StreamStderr) {
		return c.fail(result.ErrInvalidParam, "invalid verbosity or stream")
	}
	if !timestamp.ValidFormat(timefmt) || !validLogFormat(logfmt) {
		return c.fail(result.ErrInvalidParam, "invalid time or log format")
	}
	if timefmt == "" {
		timefmt = DefaultLogTimeFormat
	}

	var sink *textSink
	if verbosity != core.VerbosityNone {
		w := c.stdout
		if stream == core.StreamStderr {
			w = c.stderr
		}
		sink = &textSink{
			verbosity: verbosity,
			core: zapcore.NewCore(
				zapcore.NewConsoleEncoder(encoderConfig(timefmt, color)),
				zapcore.Lock(zapcore.AddSync(w)),
				zapcore.DebugLevel,
			),
		}
	}

	c.logs.mu.Lock()
	c.logs.console = sink
	c.logs.mu.Unlock()
	return c.ok()
}

// ConfigureHookLogging delivers log entries up to verbosity to fn. A nil fn
// removes the hook.
func (c *Core) ConfigureHookLogging(verbosity core.Verbosity, fn core.LogHookFunc, userdata uintptr) int32 {
	if !validVerbosity(verbosity) {
		return c.fail(result.ErrInvalidParam, "invalid verbosity %d", verbosity)
	}

	var sink *hookSink
	if fn != nil && verbosity != core.VerbosityNone {
		sink = &hookSink{fn: fn, userdata: userdata, verbosity: verbosity}
	}

	c.logs.mu.Lock()
	c.logs.hook = sink
	c.logs.mu.Unlock()
	return c.ok()
}

// ConfigureFileLogging appends log entries up to verbosity to a file. Time
// placeholders in filename are expanded; the generated name is returned.
func (c *Core) ConfigureFileLogging(verbosity core.Verbosity, filename, timefmt, logfmt string) (string, int32) {
	if !validVerbosity(verbosity) {
		return "", c.fail(result.ErrInvalidParam, "invalid verbosity %d", verbosity)
	}
	if verbosity == core.VerbosityNone {
		c.logs.swapFile(nil)
		return "", c.ok()
	}
	if filename == "" || !timestamp.ValidFormat(filename) || !timestamp.ValidFormat(timefmt) || !validLogFormat(logfmt) {
		return "", c.fail(result.ErrInvalidParam, "invalid filename, time or log format")
	}
	if timefmt == "" {
		timefmt = DefaultLogTimeFormat
	}

	name := timestamp.FormatTime(time.Now(), filename)
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", c.fail(result.ErrOpenFileFailed, "%v", err)
	}

	c.logs.swapFile(&textSink{
		verbosity: verbosity,
		close:     f.Close,
		core: zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig(timefmt, false)),
			zapcore.Lock(f),
			zapcore.DebugLevel,
		),
	})
	return name, c.ok()
}

// LoggerCreate creates a logger for component.
func (c *Core) LoggerCreate(component string) (core.Handle, int32) {
	if component == "" {
		return core.Invalid, c.fail(result.ErrInvalidParam, "component is empty")
	}
	return c.register(newLogObject(component))
}

func (c *Core) logObject(h core.Handle) (*logObject, int32) {
	if h == core.Invalid {
		return c.logs.app, int32(result.OK)
	}
	return lookup[*logObject](c, h, "Logger")
}

// LoggerGetVerbosity returns the logger's verbosity. The invalid handle
// addresses the application logger.
func (c *Core) LoggerGetVerbosity(logger core.Handle) (core.Verbosity, int32) {
	l, code := c.logObject(logger)
	if code < 0 {
		return core.VerbosityNone, code
	}
	return core.Verbosity(l.verbosity.Load()), c.ok()
}

// LoggerSetVerbosity sets the logger's verbosity.
func (c *Core) LoggerSetVerbosity(logger core.Handle, verbosity core.Verbosity) int32 {
	if !validVerbosity(verbosity) {
		return c.fail(result.ErrInvalidParam, "invalid verbosity %d", verbosity)
	}
	l, code := c.logObject(logger)
	if code < 0 {
		return code
	}
	l.verbosity.Store(int32(verbosity))
	return c.ok()
}

// LoggerLog emits msg through logger if severity passes its verbosity.
func (c *Core) LoggerLog(logger core.Handle, severity core.Verbosity, file string, line int, msg string) int32 {
	if !validVerbosity(severity) || line < 0 || msg == "" {
		return c.fail(result.ErrInvalidParam, "invalid severity, line or message")
	}
	l, code := c.logObject(logger)
	if code < 0 {
		return code
	}
	if severity == core.VerbosityNone || int32(severity) > l.verbosity.Load() {
		return c.ok()
	}

	c.logs.write(core.LogEntry{
		Severity:  severity,
		Timestamp: timestamp.Now(),
		Thread:    os.Getpid(),
		File:      file,
		Line:      line,
		Component: l.component,
		Message:   msg,
	})
	return c.ok()
}
