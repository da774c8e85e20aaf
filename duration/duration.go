package duration

import (
	"math"
	"math/big"
	"time"

	"github.com/wippyai/yogi-go/errors"
)

// Nanoseconds per unit.
const (
	Nanosecond  int64 = 1
	Microsecond       = 1000 * Nanosecond
	Millisecond       = 1000 * Microsecond
	Second            = 1000 * Millisecond
	Minute            = 60 * Second
	Hour              = 60 * Minute
	Day               = 24 * Hour
)

// APIInfinite is the wire value for an infinite timeout.
const APIInfinite int64 = -1

const (
	// exactFloat is 2^53, the end of the contiguous float64 integers.
	exactFloat = 1 << 53
	// scalePrec holds an int64 times a float64 mantissa without rounding.
	scalePrec = 128
)

// Duration is a signed nanosecond count that may also be positive or
// negative infinity. The zero value is a zero-length duration.
type Duration struct {
	inf int8 // 0 finite, +1 positive infinity, -1 negative infinity
	ns  int64
}

var (
	// Zero is the zero-length duration.
	Zero = Duration{}
	// Inf is positive infinity.
	Inf = Duration{inf: 1}
	// NegInf is negative infinity.
	NegInf = Duration{inf: -1}
)

// FromNanoseconds creates a finite duration. It cannot fail.
func FromNanoseconds(ns int64) Duration {
	return Duration{ns: ns}
}

// FromMicroseconds creates a finite duration from whole microseconds.
func FromMicroseconds(us int64) (Duration, error) {
	return fromUnit("from_microseconds", us, Microsecond)
}

// FromMilliseconds creates a finite duration from whole milliseconds.
func FromMilliseconds(ms int64) (Duration, error) {
	return fromUnit("from_milliseconds", ms, Millisecond)
}

// FromSeconds creates a finite duration from whole seconds.
func FromSeconds(s int64) (Duration, error) {
	return fromUnit("from_seconds", s, Second)
}

// FromMinutes creates a finite duration from whole minutes.
func FromMinutes(m int64) (Duration, error) {
	return fromUnit("from_minutes", m, Minute)
}

// FromHours creates a finite duration from whole hours.
func FromHours(h int64) (Duration, error) {
	return fromUnit("from_hours", h, Hour)
}

// FromDays creates a finite duration from whole days.
func FromDays(d int64) (Duration, error) {
	return fromUnit("from_days", d, Day)
}

// FromNanosecondsFloat creates a duration from a float count.
// ±Inf map to the infinities; NaN is rejected.
func FromNanosecondsFloat(ns float64) (Duration, error) {
	return fromUnitFloat("from_nanoseconds", ns, Nanosecond)
}

func FromMicrosecondsFloat(us float64) (Duration, error) {
	return fromUnitFloat("from_microseconds", us, Microsecond)
}

func FromMillisecondsFloat(ms float64) (Duration, error) {
	return fromUnitFloat("from_milliseconds", ms, Millisecond)
}

func FromSecondsFloat(s float64) (Duration, error) {
	return fromUnitFloat("from_seconds", s, Second)
}

func FromMinutesFloat(m float64) (Duration, error) {
	return fromUnitFloat("from_minutes", m, Minute)
}

func FromHoursFloat(h float64) (Duration, error) {
	return fromUnitFloat("from_hours", h, Hour)
}

func FromDaysFloat(d float64) (Duration, error) {
	return fromUnitFloat("from_days", d, Day)
}

// FromStd converts a time.Duration. It cannot fail.
func FromStd(d time.Duration) Duration {
	return Duration{ns: int64(d)}
}

// FromAPIValue decodes a wire timeout: negative values mean infinity.
func FromAPIValue(v int64) Duration {
	if v < 0 {
		return Inf
	}
	return Duration{ns: v}
}

// Must returns d or panics with err.
func Must(d Duration, err error) Duration {
	if err != nil {
		panic(err)
	}
	return d
}

func fromUnit(op string, v, unit int64) (Duration, error) {
	limit := math.MaxInt64 / unit
	if v > limit || v < -limit {
		return Duration{}, errors.Overflow(errors.PhaseDuration, op, v, "int64 nanoseconds")
	}
	return Duration{ns: v * unit}, nil
}

func fromUnitFloat(op string, v float64, unit int64) (Duration, error) {
	switch {
	case math.IsNaN(v):
		return Duration{}, errors.Arithmetic(errors.PhaseDuration, op, "cannot construct duration from NaN")
	case math.IsInf(v, 1):
		return Inf, nil
	case math.IsInf(v, -1):
		return NegInf, nil
	}
	ns, ok := scaleNanos(unit, v, false)
	if !ok {
		return Duration{}, errors.Overflow(errors.PhaseDuration, op, v, "int64 nanoseconds")
	}
	return Duration{ns: ns}, nil
}

// scaleNanos returns ns*f, or ns/f when div is set, truncated toward zero.
// ok is false when the result does not fit in int64. f must be finite and,
// for div, non-zero.
//
// Within ±2^53 float64 holds every integer and the float result is used as
// is. Beyond that the product is computed exactly.
func scaleNanos(ns int64, f float64, div bool) (int64, bool) {
	if ns <= exactFloat && ns >= -exactFloat {
		r := float64(ns) * f
		if div {
			r = float64(ns) / f
		}
		if r < exactFloat && r > -exactFloat {
			return int64(r), true
		}
	}

	x := new(big.Float).SetPrec(scalePrec).SetInt64(ns)
	y := new(big.Float).SetPrec(scalePrec).SetFloat64(f)
	if div {
		x.Quo(x, y)
	} else {
		x.Mul(x, y)
	}
	i, _ := x.Int(nil)
	if !i.IsInt64() {
		return 0, false
	}
	return i.Int64(), true
}

// IsFinite reports whether d is neither infinity.
func (d Duration) IsFinite() bool {
	return d.inf == 0
}

// IsInf reports whether d is an infinity of the given sign. A sign of zero
// matches either infinity.
func (d Duration) IsInf(sign int) bool {
	switch {
	case sign > 0:
		return d.inf > 0
	case sign < 0:
		return d.inf < 0
	}
	return d.inf != 0
}

// Sign returns -1, 0 or +1.
func (d Duration) Sign() int {
	switch {
	case d.inf != 0:
		return int(d.inf)
	case d.ns < 0:
		return -1
	case d.ns > 0:
		return 1
	}
	return 0
}

// NanosecondsCount returns the raw count. It is zero for infinities.
func (d Duration) NanosecondsCount() int64 {
	return d.ns
}

// Parts is a finite duration broken into calendar-like components. The
// components describe the magnitude; Negative carries the sign.
type Parts struct {
	Negative     bool
	Days         int64
	Hours        int
	Minutes      int
	Seconds      int
	Milliseconds int
	Microseconds int
	Nanoseconds  int
}

// Split decomposes d. Infinities yield zero components with the sign set.
func (d Duration) Split() Parts {
	p := Parts{Negative: d.Sign() < 0}
	if d.inf != 0 {
		return p
	}
	m := d.magnitude()
	p.Days = int64(m / uint64(Day))
	p.Hours = int(m / uint64(Hour) % 24)
	p.Minutes = int(m / uint64(Minute) % 60)
	p.Seconds = int(m / uint64(Second) % 60)
	p.Milliseconds = int(m / uint64(Millisecond) % 1000)
	p.Microseconds = int(m / uint64(Microsecond) % 1000)
	p.Nanoseconds = int(m % 1000)
	return p
}

// magnitude is |ns| as uint64 so MinInt64 is representable.
func (d Duration) magnitude() uint64 {
	if d.ns < 0 {
		return uint64(-(d.ns + 1)) + 1
	}
	return uint64(d.ns)
}

func (d Duration) total(unit int64) float64 {
	switch {
	case d.inf > 0:
		return math.Inf(1)
	case d.inf < 0:
		return math.Inf(-1)
	}
	return float64(d.ns) / float64(unit)
}

func (d Duration) TotalNanoseconds() float64  { return d.total(Nanosecond) }
func (d Duration) TotalMicroseconds() float64 { return d.total(Microsecond) }
func (d Duration) TotalMilliseconds() float64 { return d.total(Millisecond) }
func (d Duration) TotalSeconds() float64      { return d.total(Second) }
func (d Duration) TotalMinutes() float64      { return d.total(Minute) }
func (d Duration) TotalHours() float64        { return d.total(Hour) }
func (d Duration) TotalDays() float64         { return d.total(Day) }

// Std converts to time.Duration, saturating the infinities.
func (d Duration) Std() time.Duration {
	switch {
	case d.inf > 0:
		return time.Duration(math.MaxInt64)
	case d.inf < 0:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(d.ns)
}

// APIValue encodes d for the native layer: Inf becomes -1 and negative
// durations are rejected.
func (d Duration) APIValue() (int64, error) {
	switch {
	case d.inf > 0:
		return APIInfinite, nil
	case d.inf < 0 || d.ns < 0:
		return 0, errors.New(errors.PhaseDuration, errors.KindInvalidInput).
			Op("api_value").
			Value(d).
			Detail("duration %s must not be negative", d).
			Build()
	}
	return d.ns, nil
}
