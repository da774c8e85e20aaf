// Package sim provides Core, an in-process implementation of core.API.
//
// Core stands in for the native library: it hands out handles, runs
// contexts, timers and signal sets, keeps configurations in koanf and routes
// log objects to zap sinks. Branches have an identity but no network; tests
// inject events with EmitBranchEvent.
//
// The calling conventions match the native table exactly: every call
// returns a result code, failures record a detail string readable through
// LastErrorDetails, and completions run on the goroutine executing the
// owning context.
//
//	c := sim.New()
//	ctx, _ := c.ContextCreate()
//	tmr, _ := c.TimerCreate(ctx)
//	c.TimerStartAsync(tmr, int64(time.Millisecond), fn, userdata)
//	c.ContextRunOne(ctx, -1)
package sim
