package duration

import (
	"math"

	"github.com/wippyai/yogi-go/errors"
)

func overflow(op string, v any) error {
	return errors.Overflow(errors.PhaseDuration, op, v, "int64 nanoseconds")
}

func infOf(sign int) Duration {
	if sign < 0 {
		return NegInf
	}
	return Inf
}

// Add returns d + o.
func (d Duration) Add(o Duration) (Duration, error) {
	if d.inf == 0 && o.inf == 0 {
		s := d.ns + o.ns
		if (o.ns > 0 && s < d.ns) || (o.ns < 0 && s > d.ns) {
			return Duration{}, overflow("add", d.ns)
		}
		return Duration{ns: s}, nil
	}
	if d.inf != 0 && o.inf != 0 && d.inf != o.inf {
		return Duration{}, errors.Arithmetic(errors.PhaseDuration, "add",
			"cannot add positive and negative infinite durations")
	}
	if d.inf != 0 {
		return infOf(int(d.inf)), nil
	}
	return infOf(int(o.inf)), nil
}

// Sub returns d - o, which equals d + (-o).
func (d Duration) Sub(o Duration) (Duration, error) {
	if d.inf == 0 && o.inf == 0 {
		s := d.ns - o.ns
		if (o.ns < 0 && s < d.ns) || (o.ns > 0 && s > d.ns) {
			return Duration{}, overflow("sub", d.ns)
		}
		return Duration{ns: s}, nil
	}
	return d.Add(Duration{inf: -o.inf})
}

// Neg returns -d. Negating the most negative finite value overflows.
func (d Duration) Neg() (Duration, error) {
	if d.inf != 0 {
		return Duration{inf: -d.inf}, nil
	}
	if d.ns == math.MinInt64 {
		return Duration{}, overflow("neg", d.ns)
	}
	return Duration{ns: -d.ns}, nil
}

// Mul scales d by f.
func (d Duration) Mul(f float64) (Duration, error) {
	if math.IsNaN(f) {
		return Duration{}, errors.Arithmetic(errors.PhaseDuration, "mul", "cannot multiply duration by NaN")
	}
	if d.inf != 0 {
		if f == 0 {
			return Duration{}, errors.Arithmetic(errors.PhaseDuration, "mul",
				"cannot multiply infinite duration by zero")
		}
		return infOf(int(d.inf) * signOf(f)), nil
	}
	if math.IsInf(f, 0) {
		if d.ns == 0 {
			return Duration{}, errors.Arithmetic(errors.PhaseDuration, "mul",
				"cannot multiply zero duration by infinity")
		}
		return infOf(d.Sign() * signOf(f)), nil
	}
	if f == 0 {
		return Zero, nil
	}
	if n, ok := wholeFactor(f); ok {
		return d.MulInt(n)
	}
	ns, ok := scaleNanos(d.ns, f, false)
	if !ok {
		return Duration{}, overflow("mul", d.ns)
	}
	return Duration{ns: ns}, nil
}

// MulInt scales d by an integer factor without going through float64.
func (d Duration) MulInt(n int64) (Duration, error) {
	if d.inf != 0 {
		if n == 0 {
			return Duration{}, errors.Arithmetic(errors.PhaseDuration, "mul",
				"cannot multiply infinite duration by zero")
		}
		return infOf(int(d.inf) * signOf(float64(n))), nil
	}
	if d.ns == 0 || n == 0 {
		return Zero, nil
	}
	p := d.ns * n
	if p/n != d.ns || (d.ns == -1 && n == math.MinInt64) || (n == -1 && d.ns == math.MinInt64) {
		return Duration{}, overflow("mul", d.ns)
	}
	return Duration{ns: p}, nil
}

// Div divides d by f. Dividing a finite duration by an infinity yields Zero.
func (d Duration) Div(f float64) (Duration, error) {
	if err := checkDivisor(f); err != nil {
		return Duration{}, err
	}
	if d.inf != 0 {
		return infOf(int(d.inf) * signOf(f)), nil
	}
	if math.IsInf(f, 0) {
		return Zero, nil
	}
	if n, ok := wholeFactor(f); ok {
		return d.DivInt(n)
	}
	ns, ok := scaleNanos(d.ns, f, true)
	if !ok {
		return Duration{}, overflow("div", d.ns)
	}
	return Duration{ns: ns}, nil
}

// DivInt divides d by an integer, truncating toward zero.
func (d Duration) DivInt(n int64) (Duration, error) {
	if n == 0 {
		return Duration{}, errors.DivideByZero(errors.PhaseDuration, "div")
	}
	if d.inf != 0 {
		return infOf(int(d.inf) * signOf(float64(n))), nil
	}
	if n == -1 && d.ns == math.MinInt64 {
		return Duration{}, overflow("div", d.ns)
	}
	return Duration{ns: d.ns / n}, nil
}

// wholeFactor reports whether f is an integer that fits in int64.
func wholeFactor(f float64) (int64, bool) {
	if f != math.Trunc(f) || f >= 1<<63 || f < -(1<<63) {
		return 0, false
	}
	return int64(f), true
}

func checkDivisor(f float64) error {
	if math.IsNaN(f) {
		return errors.Arithmetic(errors.PhaseDuration, "div", "cannot divide duration by NaN")
	}
	if f == 0 {
		return errors.DivideByZero(errors.PhaseDuration, "div")
	}
	return nil
}

func signOf(f float64) int {
	if f < 0 {
		return -1
	}
	return 1
}

// Compare returns -1, 0 or +1. NegInf < every finite value < Inf.
func (d Duration) Compare(o Duration) int {
	if d.inf != o.inf {
		if d.inf < o.inf {
			return -1
		}
		return 1
	}
	if d.inf != 0 {
		return 0
	}
	switch {
	case d.ns < o.ns:
		return -1
	case d.ns > o.ns:
		return 1
	}
	return 0
}

func (d Duration) Equal(o Duration) bool { return d.Compare(o) == 0 }
func (d Duration) Less(o Duration) bool  { return d.Compare(o) < 0 }

// Min returns the smaller of a and b.
func Min(a, b Duration) Duration {
	if b.Less(a) {
		return b
	}
	return a
}

// Max returns the larger of a and b.
func Max(a, b Duration) Duration {
	if a.Less(b) {
		return b
	}
	return a
}
