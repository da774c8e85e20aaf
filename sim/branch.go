package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/knadh/koanf/v2"

	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/result"
	"github.com/wippyai/yogi-go/timestamp"
)

// Branch defaults, in seconds where applicable.
const (
	DefaultBranchTimeout       = 3.0
	DefaultAdvertisingInterval = 1.0
)

type branchInfo struct {
	UUID                string              `json:"uuid"`
	Name                string              `json:"name"`
	Description         string              `json:"description"`
	NetworkName         string              `json:"network_name"`
	Path                string              `json:"path"`
	Hostname            string              `json:"hostname"`
	StartTime           timestamp.Timestamp `json:"start_time"`
	PID                 int                 `json:"pid"`
	TCPServerPort       int                 `json:"tcp_server_port"`
	Timeout             float64             `json:"timeout"`
	AdvertisingInterval float64             `json:"advertising_interval"`
	GhostMode           bool                `json:"ghost_mode"`
}

func newBranchInfo(id uuid.UUID, k *koanf.Koanf) branchInfo {
	host, _ := os.Hostname()
	pid := os.Getpid()

	info := branchInfo{
		UUID:                id.String(),
		Name:                fmt.Sprintf("%d@%s", pid, host),
		NetworkName:         host,
		Hostname:            host,
		PID:                 pid,
		StartTime:           timestamp.Now(),
		Timeout:             DefaultBranchTimeout,
		AdvertisingInterval: DefaultAdvertisingInterval,
	}
	if k == nil {
		info.Path = "/" + info.Name
		return info
	}

	if s := k.String("name"); s != "" {
		info.Name = s
	}
	info.Description = k.String("description")
	if s := k.String("network_name"); s != "" {
		info.NetworkName = s
	}
	info.Path = k.String("path")
	if info.Path == "" {
		info.Path = "/" + info.Name
	}
	if k.Exists("timeout") {
		info.Timeout = k.Float64("timeout")
	}
	if k.Exists("advertising_interval") {
		info.AdvertisingInterval = k.Float64("advertising_interval")
	}
	info.GhostMode = k.Bool("ghost_mode")
	return info
}

type branchAwait struct {
	fn       core.EventFunc
	uuid     []byte
	json     []byte
	userdata uintptr
	events   core.BranchEvents
}

// branch holds a branch's identity. Events come from EmitBranchEvent; there
// is no network underneath.
type branch struct {
	ctx   *ioContext
	await *branchAwait
	info  string
	mu    sync.Mutex
	id    uuid.UUID
}

func (b *branch) typeName() string { return "Branch" }

func (b *branch) destroy() { b.awaitEvent(nil) }

// awaitEvent replaces the pending await, completing the old one with
// ErrCanceled. It reports whether an await was pending.
func (b *branch) awaitEvent(a *branchAwait) bool {
	b.mu.Lock()
	old := b.await
	b.await = a
	b.mu.Unlock()

	if old == nil {
		return false
	}
	b.ctx.post(func() {
		old.fn(int32(result.ErrCanceled), core.BranchEventNone, int32(result.OK), old.userdata)
	})
	return true
}

func (b *branch) emit(ev core.BranchEvents, evres int32, remote uuid.UUID, info string) bool {
	b.mu.Lock()
	a := b.await
	if a == nil || a.events&ev == 0 {
		b.mu.Unlock()
		return false
	}
	b.await = nil
	b.mu.Unlock()

	if len(a.uuid) >= core.UUIDSize {
		copy(a.uuid, remote[:])
	}
	if !writeCString(a.json, info) && evres >= 0 {
		evres = int32(result.ErrBufferTooSmall)
	}
	b.ctx.post(func() { a.fn(int32(result.OK), ev, evres, a.userdata) })
	return true
}

// writeCString copies s into buf with a trailing NUL, truncating if needed.
// It reports whether s fit.
func writeCString(buf []byte, s string) bool {
	if len(buf) == 0 {
		return false
	}
	n := copy(buf[:len(buf)-1], s)
	buf[n] = 0
	return n == len(s)
}

// BranchCreate creates a branch on ctx using the given section of config.
// The invalid config handle selects the defaults.
func (c *Core) BranchCreate(ctx, config core.Handle, section string) (core.Handle, int32) {
	x, code := lookup[*ioContext](c, ctx, "Context")
	if code < 0 {
		return core.Invalid, code
	}

	var k *koanf.Koanf
	if config != core.Invalid {
		cfg, code := lookup[*configuration](c, config, "Configuration")
		if code < 0 {
			return core.Invalid, code
		}
		var ok bool
		if k, ok = cfg.section(section); !ok {
			return core.Invalid, c.fail(result.ErrConfigurationSectionNotFound, "section %q not found", section)
		}
	}

	id := uuid.New()
	raw, err := json.Marshal(newBranchInfo(id, k))
	if err != nil {
		return core.Invalid, c.fail(result.ErrUnknown, "%v", err)
	}
	return c.register(&branch{ctx: x, id: id, info: string(raw)}, ctx)
}

// BranchGetInfo writes the branch UUID and its info JSON. Either buffer may
// be nil. A truncated JSON buffer yields ErrBufferTooSmall.
func (c *Core) BranchGetInfo(br core.Handle, uuidBuf, jsonBuf []byte) int32 {
	b, code := lookup[*branch](c, br, "Branch")
	if code < 0 {
		return code
	}
	if uuidBuf != nil {
		if len(uuidBuf) < core.UUIDSize {
			return c.fail(result.ErrInvalidParam, "uuid buffer needs %d bytes", core.UUIDSize)
		}
		copy(uuidBuf, b.id[:])
	}
	if jsonBuf != nil && !writeCString(jsonBuf, b.info) {
		return c.fail(result.ErrBufferTooSmall, "info needs %d bytes", len(b.info)+1)
	}
	return c.ok()
}

// BranchAwaitEventAsync waits for one of events. The buffers receive the
// remote branch's UUID and info JSON.
func (c *Core) BranchAwaitEventAsync(br core.Handle, events core.BranchEvents, uuidBuf, jsonBuf []byte, fn core.EventFunc, userdata uintptr) int32 {
	if fn == nil || events&^core.BranchEventAll != 0 {
		return c.fail(result.ErrInvalidParam, "invalid events or nil fn")
	}
	b, code := lookup[*branch](c, br, "Branch")
	if code < 0 {
		return code
	}
	b.awaitEvent(&branchAwait{
		fn:       fn,
		uuid:     uuidBuf,
		json:     jsonBuf,
		userdata: userdata,
		events:   events,
	})
	return c.ok()
}

// BranchCancelAwaitEvent cancels the pending await. It fails with
// ErrOperationNotRunning if there is none.
func (c *Core) BranchCancelAwaitEvent(br core.Handle) int32 {
	b, code := lookup[*branch](c, br, "Branch")
	if code < 0 {
		return code
	}
	if !b.awaitEvent(nil) {
		return c.fail(result.ErrOperationNotRunning, "")
	}
	return c.ok()
}

// EmitBranchEvent completes a pending await on br if it observes ev. It
// reports whether an await consumed the event.
func (c *Core) EmitBranchEvent(br core.Handle, ev core.BranchEvents, evres result.ErrorCode, remote uuid.UUID, info string) bool {
	b, code := lookup[*branch](c, br, "Branch")
	if code < 0 {
		return false
	}
	return b.emit(ev, int32(evres), remote, info)
}
