// Package errors provides structured error types for the yogi bindings.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// Native result codes are not represented here; see package result for those.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDuration, errors.KindOverflow).
//		Op("mul").
//		Detail("product exceeds int64 nanoseconds").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Arithmetic(errors.PhaseDuration, "add", "+inf + -inf")
//	err := errors.DivideByZero(errors.PhaseDuration, "div")
//
// The Err* sentinels match on Kind alone, so callers can test
// errors.Is(err, errors.ErrOverflow) without knowing the phase.
package errors
