package resource

import (
	"runtime"

	"github.com/wippyai/yogi-go/core"
)

// Object is the owner's reference to a native object in a Table.
//
// Once disposed, Native returns core.Invalid so further native calls fail
// with ErrInvalidHandle instead of touching a destroyed object.
type Object struct {
	table    *Table
	cleanup  runtime.Cleanup
	typeName string
	id       ID
}

// ID returns the table ID of the object.
func (o *Object) ID() ID {
	return o.id
}

// TypeName returns the type tag given at creation.
func (o *Object) TypeName() string {
	return o.typeName
}

// Native returns the native handle, or core.Invalid after disposal.
func (o *Object) Native() core.Handle {
	if o == nil {
		return core.Invalid
	}
	return o.table.native(o.id)
}

// Disposed reports whether the owner has disposed the object.
func (o *Object) Disposed() bool {
	if o == nil {
		return true
	}
	return o.table.disposed(o.id)
}

// Refs returns the current reference count, zero once destroyed.
func (o *Object) Refs() int32 {
	if o == nil {
		return 0
	}
	return o.table.refs(o.id)
}

// Dispose drops the owner reference. The native object is destroyed once no
// dependent object holds it. Calling Dispose more than once has no effect.
// Destructor failures are logged and published to observers, not returned.
func (o *Object) Dispose() {
	if o == nil {
		return
	}
	o.cleanup.Stop()
	_, _ = o.table.dispose(o.id)
}

// Call invokes fn with the native handle while holding a table reference,
// so neither the finalizer nor a concurrent Dispose can destroy the native
// object mid-call. A Dispose that lands during fn takes effect when fn
// returns. After disposal fn receives core.Invalid.
func (o *Object) Call(fn func(core.Handle) int32) int32 {
	if o == nil {
		return fn(core.Invalid)
	}
	defer runtime.KeepAlive(o)
	h, ok := o.table.acquire(o.id)
	if !ok {
		return fn(core.Invalid)
	}
	defer func() { _ = o.table.release(o.id) }()
	return fn(h)
}
