// Package bridge routes native completion callbacks back to Go handlers.
//
// Native asynchronous calls take a plain function and an opaque userdata
// word. A Bridge owns a fixed set of trampolines, one per callback shape, and
// a registry of tokens. Starting an operation allocates a token holding the
// Go handler and passes the token as userdata:
//
//	b := bridge.New(api)
//	_, err := b.Begin("timer", func(fn core.ResultFunc, ud uintptr) int32 {
//	    return api.TimerStartAsync(timer, timeout, fn, ud)
//	}, func(res result.Result) {
//	    fmt.Println("timer:", res.Code())
//	})
//
// Guarantees:
//
//   - a handler runs at most once and the token is released after it returns,
//     even if it panics
//   - if the start call fails synchronously the handler never runs and the
//     token is released before Begin returns
//   - a callback for an unknown or already completed token is dropped, logged
//     and counted in RejectedFires
//
// Cancellation is a native concern: the native side completes the pending
// operation with ErrCanceled and the handler sees that code unchanged.
//
// Persistent registrations (log hooks, signal arguments) are released
// explicitly. Tokens still registered at process exit are simply leaked.
package bridge
