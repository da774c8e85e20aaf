package sim

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/result"
)

// Version is the core library version reported by Version.
const Version = "0.1.0"

const (
	versionMajor = 0
	versionMinor = 1
)

// Defaults used when the caller passes an empty format string.
const (
	DefaultObjectFormat        = "$T [$x]"
	DefaultInvalidHandleString = "INVALID HANDLE"
)

// Handles are spaced like heap pointers so formatted objects look familiar.
const (
	handleBase   core.Handle = 0x7f0000001000
	handleStride core.Handle = 0x40
)

var bindingsVersionRe = regexp.MustCompile(`^([0-9]+)\.([0-9]+)\.[0-9]+[^ \s]*$`)

// object is implemented by every native object kind.
type object interface {
	typeName() string
	destroy()
}

type entry struct {
	obj   object
	deps  []core.Handle
	users int
}

// Core is an in-process implementation of core.API.
//
// Objects live in a handle registry. An object that other objects were
// created from (a context used by timers, for example) cannot be destroyed
// until those are gone. Destroying an object completes its pending
// operations with ErrCanceled through its context.
type Core struct {
	log     *zap.Logger
	stdout  io.Writer
	stderr  io.Writer
	objects map[core.Handle]*entry
	logs    *logState
	next    core.Handle
	details string
	mu      sync.Mutex
	dmu     sync.Mutex
}

// Option configures a Core.
type Option func(*Core)

// WithLogger overrides the package logger for this core.
func WithLogger(l *zap.Logger) Option {
	return func(c *Core) { c.log = l }
}

// WithStdout redirects the console log sink's stdout stream.
func WithStdout(w io.Writer) Option {
	return func(c *Core) { c.stdout = w }
}

// WithStderr redirects the console log sink's stderr stream.
func WithStderr(w io.Writer) Option {
	return func(c *Core) { c.stderr = w }
}

// New creates an empty core.
func New(opts ...Option) *Core {
	c := &Core{
		objects: make(map[core.Handle]*entry),
		next:    handleBase,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logs = newLogState()
	return c
}

var _ core.API = (*Core)(nil)

func (c *Core) logger() *zap.Logger {
	if c.log != nil {
		return c.log
	}
	return Logger()
}

func (c *Core) setDetails(s string) {
	c.dmu.Lock()
	c.details = s
	c.dmu.Unlock()
}

func (c *Core) ok() int32 {
	c.setDetails("")
	return int32(result.OK)
}

func (c *Core) fail(code result.ErrorCode, format string, args ...any) int32 {
	c.setDetails(fmt.Sprintf(format, args...))
	return int32(code)
}

// register adds obj to the registry. Each dependency gains a user until obj
// is destroyed.
func (c *Core) register(obj object, deps ...core.Handle) (core.Handle, int32) {
	c.mu.Lock()
	for _, d := range deps {
		if _, ok := c.objects[d]; !ok {
			c.mu.Unlock()
			return core.Invalid, c.fail(result.ErrInvalidHandle, "dependency %#x no longer exists", uintptr(d))
		}
	}
	h := c.next
	c.next += handleStride
	c.objects[h] = &entry{obj: obj, deps: deps}
	for _, d := range deps {
		c.objects[d].users++
	}
	c.mu.Unlock()

	c.logger().Debug("object created",
		zap.String("type", obj.typeName()),
		zap.Uintptr("handle", uintptr(h)))
	return h, c.ok()
}

func lookup[T object](c *Core, h core.Handle, want string) (T, int32) {
	var zero T
	if h == core.Invalid {
		return zero, c.fail(result.ErrInvalidHandle, "null handle")
	}
	c.mu.Lock()
	e, ok := c.objects[h]
	c.mu.Unlock()
	if !ok {
		return zero, c.fail(result.ErrInvalidHandle, "unknown handle %#x", uintptr(h))
	}
	obj, ok := e.obj.(T)
	if !ok {
		return zero, c.fail(result.ErrWrongObjectType, "expected %s, got %s", want, e.obj.typeName())
	}
	return obj, int32(result.OK)
}

// Version returns the core library version.
func (c *Core) Version() string {
	return Version
}

// CheckBindingsCompatibility verifies that bindings of the given version can
// talk to this core.
func (c *Core) CheckBindingsCompatibility(bindver string) int32 {
	m := bindingsVersionRe.FindStringSubmatch(bindver)
	if m == nil {
		return c.fail(result.ErrInvalidParam,
			"the supplied version number %q does not have a valid format, it must have the format <major>.<minor>.<patch>[<suffix>]",
			bindver)
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	if major != versionMajor || minor < versionMinor {
		return c.fail(result.ErrIncompatibleVersion,
			"the bindings version %q is incompatible with the core library version %q", bindver, Version)
	}
	return c.ok()
}

// ErrorString returns the description of a result code.
func (c *Core) ErrorString(code int32) string {
	return result.ErrorCode(code).Description()
}

// LastErrorDetails returns the details recorded by the most recent failing
// call. Calls that succeed clear it.
func (c *Core) LastErrorDetails() string {
	c.dmu.Lock()
	defer c.dmu.Unlock()
	return c.details
}

// FormatObject renders obj using objfmt, where $T is the type name and $x/$X
// the handle in lower/upper case hex. The invalid handle renders as nullstr.
func (c *Core) FormatObject(obj core.Handle, objfmt, nullstr string) (string, int32) {
	if obj == core.Invalid {
		if nullstr == "" {
			nullstr = DefaultInvalidHandleString
		}
		return nullstr, c.ok()
	}

	c.mu.Lock()
	e, ok := c.objects[obj]
	c.mu.Unlock()
	if !ok {
		return "", c.fail(result.ErrInvalidHandle, "unknown handle %#x", uintptr(obj))
	}

	if objfmt == "" {
		objfmt = DefaultObjectFormat
	}
	r := strings.NewReplacer(
		"$T", e.obj.typeName(),
		"$x", strconv.FormatUint(uint64(obj), 16),
		"$X", strings.ToUpper(strconv.FormatUint(uint64(obj), 16)),
	)
	return r.Replace(objfmt), c.ok()
}

// Destroy removes obj from the registry and tears it down.
func (c *Core) Destroy(obj core.Handle) int32 {
	if obj == core.Invalid {
		return c.fail(result.ErrInvalidHandle, "null handle")
	}

	c.mu.Lock()
	e, ok := c.objects[obj]
	if !ok {
		c.mu.Unlock()
		return c.fail(result.ErrInvalidHandle, "unknown handle %#x", uintptr(obj))
	}
	if e.users > 0 {
		c.mu.Unlock()
		return c.fail(result.ErrObjectStillUsed, "%s is still used by %d objects", e.obj.typeName(), e.users)
	}
	delete(c.objects, obj)
	c.mu.Unlock()

	e.obj.destroy()

	c.mu.Lock()
	for _, d := range e.deps {
		if de, ok := c.objects[d]; ok {
			de.users--
		}
	}
	c.mu.Unlock()

	c.logger().Debug("object destroyed",
		zap.String("type", e.obj.typeName()),
		zap.Uintptr("handle", uintptr(obj)))
	return c.ok()
}

// DestroyAll stops every context and destroys all objects, users first.
// Handlers queued by the teardown are executed before their context goes.
func (c *Core) DestroyAll() int32 {
	for _, x := range c.contexts() {
		x.stop()
		x.waitForStopped(0, true)
	}

	for {
		progress := false
		for _, h := range c.unused() {
			if c.Destroy(h) == int32(result.OK) {
				progress = true
			}
		}
		for _, x := range c.contexts() {
			if n, ok := x.execute(0, false, 0, false); ok && n > 0 {
				progress = true
			}
		}
		if !progress {
			break
		}
	}

	if n := c.Len(); n > 0 {
		return c.fail(result.ErrObjectStillUsed, "%d objects still in use", n)
	}
	return c.ok()
}

// Len returns the number of live objects.
func (c *Core) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objects)
}

// Handles returns the live handles in ascending order.
func (c *Core) Handles() []core.Handle {
	c.mu.Lock()
	hs := make([]core.Handle, 0, len(c.objects))
	for h := range c.objects {
		hs = append(hs, h)
	}
	c.mu.Unlock()
	slices.Sort(hs)
	return hs
}

func (c *Core) unused() []core.Handle {
	c.mu.Lock()
	var hs []core.Handle
	for h, e := range c.objects {
		if e.users == 0 {
			hs = append(hs, h)
		}
	}
	c.mu.Unlock()
	slices.Sort(hs)
	return hs
}

func (c *Core) contexts() []*ioContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	var xs []*ioContext
	for _, e := range c.objects {
		if x, ok := e.obj.(*ioContext); ok {
			xs = append(xs, x)
		}
	}
	return xs
}

func (c *Core) signalSets(sig core.Signals) []*signalSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sets []*signalSet
	for _, e := range c.objects {
		if s, ok := e.obj.(*signalSet); ok && s.signals&sig != 0 {
			sets = append(sets, s)
		}
	}
	return sets
}
