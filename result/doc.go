// Package result maps native result codes onto Go values and errors.
//
// Every native call returns an int32. Non-negative values are successes and
// may carry a payload such as an operation id or a byte count; negative values
// are failures identified by an ErrorCode:
//
//	r := result.ToResult(-7)
//	r.OK()   // false
//	r.Code() // result.ErrCanceled
//
// Check performs the same mapping but consults the native "last error
// details" side channel and returns an error suitable for propagation:
//
//	id, err := result.Check(api, api.TimerStartAsync(...))
//	if errors.Is(err, result.ErrInvalidHandle) { ... }
//
// FalseIfSpecific turns one expected failure into a boolean, which the object
// wrappers use for cancel and wait operations.
package result
