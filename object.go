package yogi

import (
	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/resource"
	"github.com/wippyai/yogi-go/result"
)

// Object is the part shared by every native object wrapper.
type Object struct {
	lib *Library
	res *resource.Object
}

// Handle returns the native handle, or core.Invalid once disposed.
func (o *Object) Handle() core.Handle {
	return o.res.Native()
}

// ID returns the object's table ID.
func (o *Object) ID() resource.ID {
	if o.res == nil {
		return 0
	}
	return o.res.ID()
}

// TypeName returns the object type, e.g. "Timer".
func (o *Object) TypeName() string {
	if o.res == nil {
		return ""
	}
	return o.res.TypeName()
}

// Dispose releases the owner reference. The native object is destroyed as
// soon as no other object depends on it.
func (o *Object) Dispose() {
	if o == nil {
		return
	}
	o.res.Dispose()
}

// Disposed reports whether Dispose has been called. Objects owned by the
// core, like the App logger, are never disposed.
func (o *Object) Disposed() bool {
	if o == nil {
		return true
	}
	if o.res == nil {
		return o.lib == nil
	}
	return o.res.Disposed()
}

// Format renders the object with the core's object format. Empty strings
// select the core defaults.
func (o *Object) Format(objfmt, nullstr string) (string, error) {
	var s string
	code := o.res.Call(func(h core.Handle) int32 {
		var c int32
		s, c = o.lib.api.FormatObject(h, objfmt, nullstr)
		return c
	})
	if _, err := o.lib.check(code); err != nil {
		return "", err
	}
	return s, nil
}

func (o *Object) String() string {
	if o == nil || o.lib == nil {
		return "INVALID HANDLE"
	}
	s, err := o.Format("", "")
	if err != nil {
		return o.TypeName() + " [" + err.Error() + "]"
	}
	return s
}

// call runs fn with the native handle and maps its result code.
func (o *Object) call(fn func(core.Handle) int32) (int32, error) {
	return o.lib.check(o.res.Call(fn))
}

// callBool maps benign to false and success to true.
func (o *Object) callBool(benign result.ErrorCode, fn func(core.Handle) int32) (bool, error) {
	return result.FalseIfSpecific(o.lib.api, o.res.Call(fn), benign)
}
