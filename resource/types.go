package resource

import (
	"fmt"

	"github.com/wippyai/yogi-go/core"
)

// ID identifies an object in a table. The low 32 bits are the slot, the high
// 32 bits the slot generation, so IDs of destroyed objects never match a
// reused slot. ID 0 is reserved and always invalid.
type ID uint64

func makeID(slot, gen uint32) ID {
	return ID(uint64(gen)<<32 | uint64(slot))
}

func (id ID) slot() uint32 { return uint32(id) }
func (id ID) gen() uint32  { return uint32(id >> 32) }

func (id ID) String() string {
	return fmt.Sprintf("%d.%d", id.slot(), id.gen())
}

// EventType identifies a lifecycle notification.
type EventType uint8

const (
	// EventCreated fires after a native constructor succeeded.
	EventCreated EventType = iota
	// EventDisposed fires when the owner disposes an object or its
	// finalizer runs. The native object may still be alive if dependents
	// exist.
	EventDisposed
	// EventDestroyed fires after the native destructor ran.
	EventDestroyed
	// EventDestroyFailed fires when the native destructor returned an
	// error. The object is considered destroyed regardless.
	EventDestroyFailed
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDisposed:
		return "disposed"
	case EventDestroyed:
		return "destroyed"
	case EventDestroyFailed:
		return "destroy_failed"
	}
	return "unknown"
}

// Event represents an object lifecycle event.
type Event struct {
	Err      error
	TypeName string
	ID       ID
	Native   core.Handle
	Type     EventType
}

// Observer receives notifications about object lifecycle events.
// Callbacks run synchronously on the goroutine that caused the event and
// must not call back into the table.
type Observer interface {
	OnObjectEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnObjectEvent(e Event) { f(e) }

// Destroyer releases native objects. It is typically the core.API.
type Destroyer interface {
	Destroy(obj core.Handle) int32
	LastErrorDetails() string
}

// Constructor creates a native object and returns its handle with the
// native result code.
type Constructor func() (core.Handle, int32)

// Info is a snapshot of a live table entry.
type Info struct {
	TypeName string
	Deps     []ID
	ID       ID
	Native   core.Handle
	Refs     int32
	Disposed bool
}
