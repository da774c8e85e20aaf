// Package resource manages the lifetime of native objects and the
// dependency edges between them.
//
// # Ownership
//
// A Table wraps every native handle it creates in an Object. The owner holds
// one reference; every object created with it as a dependency holds another:
//
//	table := resource.NewTable(api)
//
//	ctx, err := table.Create("Context", func() (core.Handle, int32) {
//	    return api.ContextCreate()
//	})
//
//	timer, err := table.Create("Timer", func() (core.Handle, int32) {
//	    return api.TimerCreate(ctx.Native())
//	}, ctx)
//
// Disposing ctx first only marks it disposed; the native context stays alive
// until timer is disposed too. The native destructor of an object always runs
// before its dependencies are released.
//
// # Disposal
//
// Dispose is idempotent. After disposal Native returns core.Invalid so the
// native layer rejects further calls with ErrInvalidHandle. Objects the owner
// drops without disposing are disposed by a runtime cleanup; disable that
// with WithFinalizers(false).
//
// Destructor failures never propagate out of Dispose. They are logged and
// published as EventDestroyFailed:
//
//	unsubscribe := table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    if e.Type == resource.EventDestroyFailed {
//	        log.Printf("%s %s: %v", e.TypeName, e.ID, e.Err)
//	    }
//	}))
//	defer unsubscribe()
//
// Close disposes every remaining object in reverse creation order.
package resource
