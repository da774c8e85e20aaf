package resource

import (
	"testing"

	"github.com/wippyai/yogi-go/core"
)

func TestArena_Basic(t *testing.T) {
	a := newArena()

	id := a.insert("Context", core.Handle(0x10), nil)
	if id == 0 {
		t.Fatal("Expected non-zero id")
	}

	e := a.get(id)
	if e == nil {
		t.Fatal("get failed")
	}
	if e.native != 0x10 || e.refs != 1 || e.typeName != "Context" {
		t.Fatalf("unexpected entry %+v", *e)
	}

	a.remove(id)
	if a.get(id) != nil {
		t.Fatal("Expected get to fail after remove")
	}
	if a.live != 0 {
		t.Fatalf("Expected live == 0, got %d", a.live)
	}
}

func TestArena_StaleIDAfterReuse(t *testing.T) {
	a := newArena()

	h1 := a.insert("A", 1, nil)
	a.remove(h1)
	h2 := a.insert("B", 2, nil)

	if h1.slot() != h2.slot() {
		t.Fatalf("Expected slot reuse, got %s and %s", h1, h2)
	}
	if h1 == h2 {
		t.Fatal("Expected different generations")
	}
	if a.get(h1) != nil {
		t.Fatal("stale id must not resolve to reused slot")
	}
	if e := a.get(h2); e == nil || e.typeName != "B" {
		t.Fatal("new id should resolve")
	}
}

func TestArena_InvalidID(t *testing.T) {
	a := newArena()

	if a.get(0) != nil {
		t.Fatal("ID 0 should be invalid")
	}
	if a.get(makeID(999, 1)) != nil {
		t.Fatal("Non-existent id should be invalid")
	}
	a.remove(0)
	if a.live != 0 {
		t.Fatal("remove of invalid id changed live count")
	}
}

func TestArena_Each(t *testing.T) {
	a := newArena()

	a.insert("a", 1, nil)
	b := a.insert("b", 2, nil)
	a.insert("c", 3, nil)
	a.remove(b)

	count := 0
	a.each(func(ID, *entry) bool {
		count++
		return true
	})
	if count != 2 {
		t.Fatalf("Expected to iterate over 2 items, got %d", count)
	}

	count = 0
	a.each(func(ID, *entry) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("Expected to iterate over 1 item (early term), got %d", count)
	}
}
