package bridge

import (
	"sync"
	"time"

	"github.com/wippyai/yogi-go/errors"
	"github.com/wippyai/yogi-go/result"
)

// Token identifies a registered completion. It travels through the native
// layer as the userdata word. Tokens are never reused, so a late or repeated
// callback can not reach a newer registration.
type Token uint64

// Kind describes what a token was registered for.
type Kind uint8

const (
	KindResult Kind = iota
	KindSignal
	KindEvent
	KindPost
	KindRaise
	KindSignalArg
	KindLogHook
)

func (k Kind) String() string {
	switch k {
	case KindResult:
		return "result"
	case KindSignal:
		return "signal"
	case KindEvent:
		return "event"
	case KindPost:
		return "post"
	case KindRaise:
		return "raise"
	case KindSignalArg:
		return "signal_arg"
	case KindLogHook:
		return "log_hook"
	}
	return "unknown"
}

type slot struct {
	started    time.Time
	handler    any
	value      any
	uuid       []byte
	json       []byte
	label      string
	kind       Kind
	persistent bool
	fired      bool
}

type registry struct {
	slots map[Token]*slot
	next  Token
	max   int
	mu    sync.Mutex
}

func newRegistry(max int) *registry {
	return &registry{
		slots: make(map[Token]*slot),
		max:   max,
	}
}

func (r *registry) alloc(s *slot) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max > 0 && len(r.slots) >= r.max {
		err := errors.AllocationFailed(errors.PhaseBridge, "token slots", r.max)
		err.Op = "alloc"
		err.Cause = &result.Failure{Code: result.ErrBadAlloc}
		return 0, err
	}

	r.next++
	s.started = time.Now()
	r.slots[r.next] = s
	return r.next, nil
}

// claim marks a one-shot slot as fired. It fails for unknown tokens, tokens
// that already fired and persistent tokens.
func (r *registry) claim(tok Token, kind Kind) (*slot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[tok]
	if !ok || s.fired || s.persistent || s.kind != kind {
		return nil, false
	}
	s.fired = true
	return s, true
}

// peek returns a persistent slot without changing it.
func (r *registry) peek(tok Token, kind Kind) (*slot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[tok]
	if !ok || s.kind != kind {
		return nil, false
	}
	return s, true
}

func (r *registry) free(tok Token) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[tok]; !ok {
		return false
	}
	delete(r.slots, tok)
	return true
}

func (r *registry) counts() (oneShot, persistent int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.slots {
		if s.persistent {
			persistent++
		} else {
			oneShot++
		}
	}
	return oneShot, persistent
}

// Pending describes an outstanding registration.
type Pending struct {
	Started    time.Time
	Label      string
	Token      Token
	Kind       Kind
	Persistent bool
}

func (r *registry) snapshot() []Pending {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Pending, 0, len(r.slots))
	for tok, s := range r.slots {
		out = append(out, Pending{
			Token:      tok,
			Kind:       s.kind,
			Label:      s.label,
			Started:    s.started,
			Persistent: s.persistent,
		})
	}
	return out
}
