package timestamp

import (
	"time"

	"github.com/wippyai/yogi-go/duration"
	"github.com/wippyai/yogi-go/errors"
)

// Timestamp is a UTC point in time with nanosecond resolution, stored as
// the finite, non-negative duration since 1970-01-01T00:00:00Z. The zero
// value is the epoch.
type Timestamp struct {
	d duration.Duration
}

// Epoch is 1970-01-01T00:00:00Z.
var Epoch = Timestamp{}

// FromDurationSinceEpoch creates a timestamp. Infinite and negative
// durations are rejected.
func FromDurationSinceEpoch(d duration.Duration) (Timestamp, error) {
	if !d.IsFinite() || d.Sign() < 0 {
		return Timestamp{}, errors.New(errors.PhaseTimestamp, errors.KindArithmetic).
			Op("from_duration").
			Value(d).
			Detail("duration %s is not a valid time since the epoch", d).
			Build()
	}
	return Timestamp{d: d}, nil
}

// FromUnixNano creates a timestamp from nanoseconds since the epoch.
func FromUnixNano(ns int64) (Timestamp, error) {
	return FromDurationSinceEpoch(duration.FromNanoseconds(ns))
}

// FromTime converts t. Times before the epoch are rejected.
func FromTime(t time.Time) (Timestamp, error) {
	return FromUnixNano(t.UnixNano())
}

// Now returns the current time.
func Now() Timestamp {
	return Timestamp{d: duration.FromNanoseconds(time.Now().UnixNano())}
}

// DurationSinceEpoch returns the time elapsed since the epoch.
func (t Timestamp) DurationSinceEpoch() duration.Duration {
	return t.d
}

// UnixNano returns nanoseconds since the epoch.
func (t Timestamp) UnixNano() int64 {
	return t.d.NanosecondsCount()
}

// Time converts to a UTC time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, t.UnixNano()).UTC()
}

// Sub-second fractions, each in 0-999.
func (t Timestamp) Milliseconds() int { return int(t.UnixNano() / 1e6 % 1000) }
func (t Timestamp) Microseconds() int { return int(t.UnixNano() / 1e3 % 1000) }
func (t Timestamp) Nanoseconds() int  { return int(t.UnixNano() % 1000) }

// Add returns t + d. The result must be a finite time at or after the epoch.
func (t Timestamp) Add(d duration.Duration) (Timestamp, error) {
	s, err := t.d.Add(d)
	if err != nil {
		return Timestamp{}, err
	}
	return FromDurationSinceEpoch(s)
}

// Sub returns t - d.
func (t Timestamp) Sub(d duration.Duration) (Timestamp, error) {
	n, err := d.Neg()
	if err != nil {
		return Timestamp{}, err
	}
	return t.Add(n)
}

// Since returns t - o. Both operands are non-negative so the difference
// always fits.
func (t Timestamp) Since(o Timestamp) duration.Duration {
	return duration.FromNanoseconds(t.UnixNano() - o.UnixNano())
}

// Compare returns -1, 0 or +1.
func (t Timestamp) Compare(o Timestamp) int {
	return t.d.Compare(o.d)
}

func (t Timestamp) Equal(o Timestamp) bool  { return t.d.Equal(o.d) }
func (t Timestamp) Before(o Timestamp) bool { return t.d.Less(o.d) }
func (t Timestamp) After(o Timestamp) bool  { return o.d.Less(t.d) }

// String formats t with DefaultFormat.
func (t Timestamp) String() string {
	return t.Format("")
}

// MarshalText encodes t with DefaultFormat.
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.Format("")), nil
}

// UnmarshalText parses DefaultFormat.
func (t *Timestamp) UnmarshalText(b []byte) error {
	v, err := Parse(string(b), "")
	if err != nil {
		return err
	}
	*t = v
	return nil
}
