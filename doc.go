// Package yogi provides Go bindings over the Yogi core function table.
//
// The bindings never touch native memory directly. Every native object is
// owned through a resource.Table entry, every asynchronous call goes through
// a bridge.Bridge token, and every result code is mapped by the result
// package. The native side is anything implementing core.API; sim.Core is
// an in-process implementation.
//
// # Architecture Overview
//
//	yogi/          Library, Context, Timer, SignalSet, Configuration, Logger, Branch
//	├── core/      Native function table contract and enumerations
//	├── result/    Result codes, Failure errors, Check
//	├── duration/  Duration value with infinities and checked arithmetic
//	├── timestamp/ UTC points in time, parse and format
//	├── resource/  Handle lifetime graph with dependency ref-counting
//	├── bridge/    Callback tokens and trampolines for async completions
//	├── errors/    Structured error types
//	├── sim/       In-process core used by tests and the CLI
//	└── cmd/yogi/  Command line tool
//
// # Quick Start
//
//	lib, err := yogi.Open(sim.New(), yogi.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer lib.Close()
//
//	ctx, _ := lib.NewContext()
//	tmr, _ := lib.NewTimer(ctx)
//	tmr.StartAsync(duration.Must(duration.FromSeconds(1)), func(res result.Result) {
//	    fmt.Println("timer:", res)
//	})
//	ctx.RunOne(duration.Inf)
//
// # Lifetime
//
// Objects created from another object keep it alive: disposing a Context
// while a Timer built on it exists defers the native destroy until the
// Timer is disposed too. Dispose is idempotent and a disposed object passes
// the invalid handle to the core, which rejects the call with
// ErrInvalidHandle. Objects that are dropped without Dispose are cleaned up
// when the garbage collector finds them unless finalizers are disabled.
//
// # Asynchronous Operations
//
// Handlers passed to StartAsync, AwaitSignalAsync, AwaitEventAsync and Post
// run exactly once on the goroutine executing the owning Context. If the
// call fails synchronously the handler never runs and the error is
// returned instead. Canceling or disposing completes the handler with
// ErrCanceled.
package yogi
