package resource

import (
	"github.com/wippyai/yogi-go/core"
)

// arena is the slot storage behind a Table. It is not synchronized; the
// table holds its lock around every call.
type arena struct {
	entries  []entry
	freeList []uint32
	live     int
	seq      uint64
}

type entry struct {
	typeName string
	deps     []ID
	seq      uint64
	native   core.Handle
	gen      uint32
	refs     int32
	disposed bool
	valid    bool
}

func newArena() *arena {
	return &arena{
		entries:  make([]entry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

// insert stores a new entry with a reference count of one.
func (a *arena) insert(typeName string, native core.Handle, deps []ID) ID {
	a.seq++
	a.live++

	if n := len(a.freeList); n > 0 {
		slot := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		e := &a.entries[slot-1]
		gen := e.gen + 1
		*e = entry{typeName: typeName, native: native, deps: deps, seq: a.seq, gen: gen, refs: 1, valid: true}
		return makeID(slot, gen)
	}

	a.entries = append(a.entries, entry{typeName: typeName, native: native, deps: deps, seq: a.seq, gen: 1, refs: 1, valid: true})
	return makeID(uint32(len(a.entries)), 1)
}

// get returns the entry for id, or nil if it was removed or never existed.
func (a *arena) get(id ID) *entry {
	slot := id.slot()
	if slot == 0 || int(slot) > len(a.entries) {
		return nil
	}
	e := &a.entries[slot-1]
	if !e.valid || e.gen != id.gen() {
		return nil
	}
	return e
}

// remove frees the slot for reuse. The generation survives so stale IDs
// keep failing lookups.
func (a *arena) remove(id ID) {
	e := a.get(id)
	if e == nil {
		return
	}
	gen := e.gen
	*e = entry{gen: gen}
	a.freeList = append(a.freeList, id.slot())
	a.live--
}

func (a *arena) each(fn func(ID, *entry) bool) {
	for i := range a.entries {
		e := &a.entries[i]
		if !e.valid {
			continue
		}
		if !fn(makeID(uint32(i+1), e.gen), e) {
			return
		}
	}
}
