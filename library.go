package yogi

import (
	stderrors "errors"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/yogi-go/bridge"
	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/errors"
	"github.com/wippyai/yogi-go/resource"
	"github.com/wippyai/yogi-go/result"
)

// Library binds a core.API to an object table and a callback bridge.
type Library struct {
	api       core.API
	objects   *resource.Table
	bridge    *bridge.Bridge
	log       *zap.Logger
	observers []resource.Observer
	opts      Options
	mu        sync.Mutex
	hook      bridge.Token
}

// OpenOption configures Open.
type OpenOption func(*Library)

// WithLogger sets the logger for the bindings' diagnostics.
func WithLogger(l *zap.Logger) OpenOption {
	return func(lib *Library) { lib.log = l }
}

// WithObserver subscribes o to object lifecycle events.
func WithObserver(o resource.Observer) OpenOption {
	return func(lib *Library) { lib.observers = append(lib.observers, o) }
}

// Open prepares api for use. With CheckCompatibility set it fails if the
// core cannot serve these bindings.
func Open(api core.API, opts Options, extra ...OpenOption) (*Library, error) {
	if api == nil {
		return nil, errors.InvalidInput(errors.PhaseLoad, "nil core API")
	}

	lib := &Library{api: api, opts: opts, log: zap.NewNop()}
	for _, opt := range extra {
		opt(lib)
	}

	if opts.LogLevel != "" {
		lvl, err := zapcore.ParseLevel(opts.LogLevel)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log_level")
		}
		lib.log = lib.log.WithOptions(zap.IncreaseLevel(lvl))
	}

	if opts.CheckCompatibility {
		if _, err := result.Check(api, api.CheckBindingsCompatibility(core.BindingsVersion)); err != nil {
			return nil, errors.Load("check bindings compatibility", err)
		}
	}

	tableOpts := []resource.Option{
		resource.WithLogger(lib.log.Named("objects")),
		resource.WithFinalizers(opts.Finalizers),
	}
	for _, o := range lib.observers {
		tableOpts = append(tableOpts, resource.WithObserver(o))
	}
	lib.objects = resource.NewTable(api, tableOpts...)
	lib.bridge = bridge.New(api,
		bridge.WithLogger(lib.log.Named("bridge")),
		bridge.WithMaxPending(opts.MaxPending))

	lib.log.Debug("library opened",
		zap.String("core_version", api.Version()),
		zap.String("bindings_version", core.BindingsVersion))
	return lib, nil
}

// Close removes the log hook and disposes every remaining object, newest
// first.
func (l *Library) Close() error {
	var errs []error
	if err := l.SetLogHook(core.VerbosityNone, nil); err != nil {
		errs = append(errs, err)
	}
	if err := l.objects.Close(); err != nil {
		errs = append(errs, err)
	}
	if n := l.bridge.Outstanding(); n > 0 {
		l.log.Warn("closing with outstanding operations", zap.Int("count", n))
	}
	return stderrors.Join(errs...)
}

// Version returns the core library version.
func (l *Library) Version() string {
	return l.api.Version()
}

// API returns the underlying function table.
func (l *Library) API() core.API {
	return l.api
}

// Objects returns the table owning all native objects.
func (l *Library) Objects() *resource.Table {
	return l.objects
}

// Bridge returns the bridge routing async completions.
func (l *Library) Bridge() *bridge.Bridge {
	return l.bridge
}

// Options returns the options the library was opened with.
func (l *Library) Options() Options {
	return l.opts
}

func (l *Library) check(code int32) (int32, error) {
	return result.Check(l.api, code)
}

func (l *Library) create(typeName string, ctor resource.Constructor, deps ...*Object) (Object, error) {
	var resDeps []*resource.Object
	for _, d := range deps {
		resDeps = append(resDeps, d.res)
	}
	res, err := l.objects.Create(typeName, ctor, resDeps...)
	if err != nil {
		return Object{}, err
	}
	return Object{lib: l, res: res}, nil
}
