// Package duration implements a nanosecond duration with explicit positive
// and negative infinity.
//
// The native layer encodes timeouts as signed 64-bit nanosecond counts with
// -1 meaning "wait forever". Duration keeps the infinities as distinct states
// so arithmetic on them is well defined:
//
//	d, _ := duration.FromSeconds(5)
//	sum, _ := d.Add(duration.Inf) // Inf
//	_, err := duration.Inf.Add(duration.NegInf)
//	// err matches errors.ErrArithmetic
//
// All finite arithmetic is checked for int64 overflow before the result is
// produced. NaN operands, inf*0 and mixed-sign infinite sums are arithmetic
// errors; division by zero has its own kind.
//
// APIValue converts to the wire encoding and rejects negative values.
package duration
