package bridge

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/errors"
)

// DefaultJSONBufferSize is the size of the JSON out-buffer handed to the
// native layer for branch events.
const DefaultJSONBufferSize = 4096

// CString returns the bytes of buf up to the first NUL as a string.
func CString(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return string(buf[:i])
	}
	return string(buf)
}

// DecodeUUID parses a native UUID buffer.
func DecodeUUID(buf []byte) (uuid.UUID, error) {
	if len(buf) < core.UUIDSize {
		return uuid.Nil, errors.InvalidData(errors.PhaseBridge, "uuid buffer too short")
	}
	id, err := uuid.FromBytes(buf[:core.UUIDSize])
	if err != nil {
		return uuid.Nil, errors.Wrap(errors.PhaseBridge, errors.KindInvalidData, err, "decode uuid")
	}
	return id, nil
}
