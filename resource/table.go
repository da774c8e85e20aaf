package resource

import (
	"cmp"
	stderrors "errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/errors"
	"github.com/wippyai/yogi-go/result"
)

// Table owns the native objects created through it and the dependency
// edges between them.
//
// Every object starts with one reference held by its owner. Each object that
// names it as a dependency adds one more. The native destructor runs exactly
// once, when the count drops to zero, and only then are the object's own
// dependencies released.
type Table struct {
	destroyer  Destroyer
	log        *zap.Logger
	arena      *arena
	observers  []observerEntry
	obsSeq     int
	mu         sync.Mutex
	obsMu      sync.RWMutex
	closed     bool
	finalizers bool
}

type observerEntry struct {
	o  Observer
	id int
}

// Option configures a Table.
type Option func(*Table)

// WithLogger overrides the package logger for this table.
func WithLogger(l *zap.Logger) Option {
	return func(t *Table) { t.log = l }
}

// WithFinalizers enables or disables the garbage collector safety net that
// disposes objects the owner dropped without disposing. Enabled by default.
func WithFinalizers(enabled bool) Option {
	return func(t *Table) { t.finalizers = enabled }
}

// WithObserver subscribes o at construction time.
func WithObserver(o Observer) Option {
	return func(t *Table) { t.Subscribe(o) }
}

// NewTable creates a table that destroys native objects through d.
func NewTable(d Destroyer, opts ...Option) *Table {
	t := &Table{
		destroyer:  d,
		arena:      newArena(),
		finalizers: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) logger() *zap.Logger {
	if t.log != nil {
		return t.log
	}
	return Logger()
}

// Create runs ctor and wraps the native handle it returns. Each dependency
// gains a reference for the lifetime of the new object. The references are
// taken before ctor runs so a dependency cannot be destroyed while the
// constructor is using it.
//
// A negative ctor result creates nothing and is returned as the error from
// result.Check.
func (t *Table) Create(typeName string, ctor Constructor, deps ...*Object) (*Object, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, errors.Closed(errors.PhaseObject, "object table")
	}
	depIDs := make([]ID, 0, len(deps))
	for _, d := range deps {
		if d == nil || d.table != t {
			continue
		}
		if e := t.arena.get(d.id); e != nil {
			e.refs++
			depIDs = append(depIDs, d.id)
		}
	}
	t.mu.Unlock()

	native, code := ctor()
	// Keep the dependency owners reachable until their references are held.
	runtime.KeepAlive(deps)
	if code < 0 {
		_, err := result.Check(t.destroyer, code)
		for _, id := range depIDs {
			_ = t.release(id)
		}
		return nil, err
	}

	t.mu.Lock()
	id := t.arena.insert(typeName, native, depIDs)
	t.mu.Unlock()

	obj := &Object{table: t, id: id, typeName: typeName}
	if t.finalizers {
		obj.cleanup = runtime.AddCleanup(obj, t.finalize, id)
	}

	t.logger().Debug("object created",
		zap.String("type", typeName),
		zap.Stringer("id", id),
		zap.Uintptr("handle", uintptr(native)),
		zap.Int("deps", len(depIDs)))
	t.notify(Event{Type: EventCreated, ID: id, TypeName: typeName, Native: native})

	return obj, nil
}

// dispose marks id as disposed by its owner and drops the owner reference.
// It returns false if the object was already disposed.
func (t *Table) dispose(id ID) (bool, error) {
	t.mu.Lock()
	e := t.arena.get(id)
	if e == nil || e.disposed {
		t.mu.Unlock()
		return false, nil
	}
	e.disposed = true
	typeName, native := e.typeName, e.native
	t.mu.Unlock()

	t.notify(Event{Type: EventDisposed, ID: id, TypeName: typeName, Native: native})
	return true, t.release(id)
}

// release drops one reference. At zero the native object is destroyed
// outside the lock and its dependencies are released in order.
func (t *Table) release(id ID) error {
	t.mu.Lock()
	e := t.arena.get(id)
	if e == nil {
		t.mu.Unlock()
		return nil
	}
	e.refs--
	if e.refs > 0 {
		t.mu.Unlock()
		return nil
	}
	typeName, native, deps := e.typeName, e.native, e.deps
	t.arena.remove(id)
	t.mu.Unlock()

	var errs []error
	if err := t.destroy(id, typeName, native); err != nil {
		errs = append(errs, err)
	}
	for _, dep := range deps {
		if err := t.release(dep); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (t *Table) destroy(id ID, typeName string, native core.Handle) error {
	code := t.destroyer.Destroy(native)
	if code >= 0 {
		t.notify(Event{Type: EventDestroyed, ID: id, TypeName: typeName, Native: native})
		return nil
	}

	_, err := result.Check(t.destroyer, code)
	t.logger().Error("destroying object failed",
		zap.String("type", typeName),
		zap.Stringer("id", id),
		zap.Uintptr("handle", uintptr(native)),
		zap.Int32("code", code),
		zap.Error(err))
	t.notify(Event{Type: EventDestroyFailed, ID: id, TypeName: typeName, Native: native, Err: err})
	return fmt.Errorf("destroy %s %s: %w", typeName, id, err)
}

// finalize is the garbage collector path. It must never panic.
func (t *Table) finalize(id ID) {
	defer func() {
		if r := recover(); r != nil {
			t.logger().Error("panic while finalizing object",
				zap.Stringer("id", id),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	disposed, _ := t.dispose(id)
	if disposed {
		t.logger().Debug("object finalized without dispose", zap.Stringer("id", id))
	}
}

func (t *Table) native(id ID) core.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.arena.get(id)
	if e == nil || e.disposed {
		return core.Invalid
	}
	return e.native
}

// acquire takes a reference for the length of a native call. It fails once
// the owner has disposed the object.
func (t *Table) acquire(id ID) (core.Handle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.arena.get(id)
	if e == nil || e.disposed {
		return core.Invalid, false
	}
	e.refs++
	return e.native, true
}

func (t *Table) disposed(id ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.arena.get(id)
	return e == nil || e.disposed
}

func (t *Table) refs(id ID) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.arena.get(id); e != nil {
		return e.refs
	}
	return 0
}

// Subscribe adds an observer for lifecycle events and returns a function
// that removes it again.
func (t *Table) Subscribe(o Observer) (unsubscribe func()) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.obsSeq++
	id := t.obsSeq
	t.observers = append(t.observers, observerEntry{id: id, o: o})
	return func() {
		t.obsMu.Lock()
		defer t.obsMu.Unlock()
		t.observers = slices.DeleteFunc(t.observers, func(e observerEntry) bool { return e.id == id })
	}
}

// Len returns the number of objects whose native side is still alive,
// including disposed objects kept alive by dependents.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.arena.live
}

// Each calls fn with a snapshot of every live object in creation order.
func (t *Table) Each(fn func(Info) bool) {
	for _, info := range t.Snapshot() {
		if !fn(info) {
			return
		}
	}
}

// Snapshot returns every live object in creation order.
func (t *Table) Snapshot() []Info {
	type seqInfo struct {
		info Info
		seq  uint64
	}

	t.mu.Lock()
	items := make([]seqInfo, 0, t.arena.live)
	t.arena.each(func(id ID, e *entry) bool {
		items = append(items, seqInfo{
			seq: e.seq,
			info: Info{
				ID:       id,
				TypeName: e.typeName,
				Native:   e.native,
				Refs:     e.refs,
				Disposed: e.disposed,
				Deps:     slices.Clone(e.deps),
			},
		})
		return true
	})
	t.mu.Unlock()

	slices.SortFunc(items, func(a, b seqInfo) int {
		return cmp.Compare(a.seq, b.seq)
	})
	out := make([]Info, len(items))
	for i, it := range items {
		out[i] = it.info
	}
	return out
}

// Close disposes every remaining object in reverse creation order and stops
// accepting new objects. Destructor failures are joined into the result.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	snap := t.Snapshot()
	var errs []error
	for i := len(snap) - 1; i >= 0; i-- {
		if snap[i].Disposed {
			continue
		}
		if _, err := t.dispose(snap[i].ID); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, entry := range t.observers {
		entry.o.OnObjectEvent(e)
	}
}
