package yogi

import (
	"fmt"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"

	"github.com/wippyai/yogi-go/bridge"
	"github.com/wippyai/yogi-go/core"
)

// Logger writes entries for one component to the configured sinks.
type Logger struct {
	Object
	component string
}

// NewLogger creates a logger for component.
func (l *Library) NewLogger(component string) (*Logger, error) {
	obj, err := l.create("Logger", func() (core.Handle, int32) {
		return l.api.LoggerCreate(component)
	})
	if err != nil {
		return nil, err
	}
	return &Logger{Object: obj, component: component}, nil
}

// AppLogger returns the logger of the "App" component. It is owned by the
// core and never destroyed.
func (l *Library) AppLogger() *Logger {
	return &Logger{Object: Object{lib: l}, component: "App"}
}

// TypeName returns "Logger", also for the App logger.
func (lg *Logger) TypeName() string {
	return "Logger"
}

func (lg *Logger) String() string {
	if lg == nil {
		return "INVALID HANDLE"
	}
	if lg.res == nil && lg.lib != nil {
		return "Logger [" + lg.component + "]"
	}
	return lg.Object.String()
}

// Component returns the component name.
func (lg *Logger) Component() string {
	return lg.component
}

// Verbosity returns the maximum severity the logger passes on.
func (lg *Logger) Verbosity() (core.Verbosity, error) {
	var v core.Verbosity
	_, err := lg.call(func(h core.Handle) int32 {
		var code int32
		v, code = lg.lib.api.LoggerGetVerbosity(h)
		return code
	})
	if err != nil {
		return core.VerbosityNone, err
	}
	return v, nil
}

// SetVerbosity changes the maximum severity the logger passes on.
func (lg *Logger) SetVerbosity(v core.Verbosity) error {
	_, err := lg.call(func(h core.Handle) int32 {
		return lg.lib.api.LoggerSetVerbosity(h, v)
	})
	return err
}

// Log writes msg with the caller's file and line.
func (lg *Logger) Log(severity core.Verbosity, msg string) error {
	return lg.log(2, severity, msg)
}

// Logf formats according to a format specifier and logs the result.
func (lg *Logger) Logf(severity core.Verbosity, format string, args ...any) error {
	return lg.log(2, severity, fmt.Sprintf(format, args...))
}

func (lg *Logger) log(skip int, severity core.Verbosity, msg string) error {
	file, line := "", 0
	if _, f, l, ok := runtime.Caller(skip); ok {
		file, line = filepath.Base(f), l
	}
	_, err := lg.call(func(h core.Handle) int32 {
		return lg.lib.api.LoggerLog(h, severity, file, line, msg)
	})
	return err
}

// ConfigureConsoleLogging enables or, with core.VerbosityNone, disables
// console output. Empty formats select the core defaults.
func (l *Library) ConfigureConsoleLogging(v core.Verbosity, stream core.Stream, color bool, timefmt, format string) error {
	_, err := l.check(l.api.ConfigureConsoleLogging(v, stream, color, timefmt, format))
	return err
}

// ConfigureFileLogging enables file output and returns the expanded file
// name. The name may contain time placeholders such as %Y.
func (l *Library) ConfigureFileLogging(v core.Verbosity, filename, timefmt, format string) (string, error) {
	name, code := l.api.ConfigureFileLogging(v, filename, timefmt, format)
	if _, err := l.check(code); err != nil {
		return "", err
	}
	return name, nil
}

// SetLogHook installs h as the log hook for entries up to v, replacing any
// previous hook. A nil h or core.VerbosityNone removes the hook.
func (l *Library) SetLogHook(v core.Verbosity, h bridge.LogHandler) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if h == nil || v == core.VerbosityNone {
		if l.hook == 0 {
			return nil
		}
		if _, err := l.check(l.api.ConfigureHookLogging(core.VerbosityNone, nil, 0)); err != nil {
			return err
		}
		l.bridge.Unhook(l.hook)
		l.hook = 0
		return nil
	}

	tok, fn, err := l.bridge.Hook("LogHook", h)
	if err != nil {
		return err
	}
	if _, err := l.check(l.api.ConfigureHookLogging(v, fn, uintptr(tok))); err != nil {
		l.bridge.Unhook(tok)
		return err
	}
	if l.hook != 0 {
		l.bridge.Unhook(l.hook)
	}
	l.hook = tok
	l.log.Debug("log hook installed", zap.Stringer("verbosity", v))
	return nil
}
