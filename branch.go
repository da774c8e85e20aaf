package yogi

import (
	"encoding/json"
	"runtime"

	"github.com/google/uuid"

	"github.com/wippyai/yogi-go/bridge"
	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/duration"
	"github.com/wippyai/yogi-go/errors"
	"github.com/wippyai/yogi-go/result"
	"github.com/wippyai/yogi-go/timestamp"
)

const maxInfoBufferSize = 1 << 20

// BranchInfo describes a branch.
type BranchInfo struct {
	UUID                uuid.UUID           `json:"-"`
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

	// JSON is the document as returned by the core.
	JSON string `json:"-"`
}

// TimeoutDuration returns Timeout as a Duration. Negative values mean the
// branch never times out.
func (i BranchInfo) TimeoutDuration() (duration.Duration, error) {
	if i.Timeout < 0 {
		return duration.Inf, nil
	}
	return duration.FromSecondsFloat(i.Timeout)
}

// Branch is a node of a Yogi network.
type Branch struct {
	Object
}

// NewBranch creates a branch on ctx. cfg may be nil to use defaults; an
// empty section uses the configuration root.
func (l *Library) NewBranch(ctx *Context, cfg *Configuration, section string) (*Branch, error) {
	obj, err := l.create("Branch", func() (core.Handle, int32) {
		var ch core.Handle
		if cfg != nil {
			ch = cfg.Handle()
		}
		defer runtime.KeepAlive(cfg)
		return l.api.BranchCreate(ctx.Handle(), ch, section)
	}, &ctx.Object)
	if err != nil {
		return nil, err
	}
	return &Branch{Object: obj}, nil
}

// Info fetches the branch description, growing the buffer as needed.
func (b *Branch) Info() (BranchInfo, error) {
	idBuf := make([]byte, core.UUIDSize)
	for size := bridge.DefaultJSONBufferSize; ; size *= 2 {
		jsonBuf := make([]byte, size)
		code := b.res.Call(func(h core.Handle) int32 {
			return b.lib.api.BranchGetInfo(h, idBuf, jsonBuf)
		})
		if code == int32(result.ErrBufferTooSmall) && size < maxInfoBufferSize {
			continue
		}
		if _, err := b.lib.check(code); err != nil {
			return BranchInfo{}, err
		}
		return decodeBranchInfo(idBuf, bridge.CString(jsonBuf))
	}
}

func decodeBranchInfo(idBuf []byte, doc string) (BranchInfo, error) {
	var info BranchInfo
	if err := json.Unmarshal([]byte(doc), &info); err != nil {
		return BranchInfo{}, errors.Wrap(errors.PhaseCore, errors.KindInvalidData, err, "decode branch info")
	}
	id, err := bridge.DecodeUUID(idBuf)
	if err != nil {
		return BranchInfo{}, err
	}
	info.UUID = id
	info.JSON = doc
	return info, nil
}

// AwaitEventAsync waits for one of events. The handler gets the remote
// branch's UUID and JSON; evres reports ErrBufferTooSmall if the JSON was
// truncated to jsonSize bytes. A jsonSize of zero selects the default.
func (b *Branch) AwaitEventAsync(events core.BranchEvents, jsonSize int, h bridge.EventHandler) error {
	if h == nil {
		return result.ErrInvalidParam
	}
	_, err := b.lib.bridge.BeginEvent("Branch.AwaitEventAsync", jsonSize,
		func(id, doc []byte, fn core.EventFunc, ud uintptr) int32 {
			return b.res.Call(func(h core.Handle) int32 {
				return b.lib.api.BranchAwaitEventAsync(h, events, id, doc, fn, ud)
			})
		}, h)
	return err
}

// CancelAwaitEvent cancels a pending await. It returns false if there was
// none.
func (b *Branch) CancelAwaitEvent() (bool, error) {
	return b.callBool(result.ErrOperationNotRunning, b.lib.api.BranchCancelAwaitEvent)
}
