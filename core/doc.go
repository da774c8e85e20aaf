// Package core defines the native function table the bindings talk to.
//
// The table mirrors the C interface of the core library. Every function
// returns an int32 result code (see package result); functions that produce
// a handle or value return it alongside the code. Asynchronous functions take
// a callback and an opaque userdata word which the native side passes back
// unchanged when the operation completes.
//
// Implementations must invoke each completion callback exactly once per
// successfully started operation and never for an operation whose start call
// returned a negative code. Destroying an object with pending operations must
// complete them with ErrCanceled.
package core
