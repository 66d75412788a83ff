// Package resource provides the handle table that owns Go values attached
// to script objects as private data.
//
// A script object created with private data (for example the closure behind
// a wrapped function) stores only a Handle. The table holds the value until
// the engine finalizes the object:
//
//	table := resource.NewTable()
//	handle, err := table.Insert(resource.TypeFunction, closure)
//
//	// During a call the value is pinned
//	value, ok := table.Borrow(handle)
//	defer table.ReturnBorrow(handle)
//
//	// Finalization drops the value exactly once
//	table.Release(handle)
//
// # Deferred release
//
// Releasing a borrowed handle only marks it. The value is dropped by the
// final ReturnBorrow, so a value is never dropped while a call that uses it
// is still on the stack, and no new borrow is granted once release begins.
//
// # Observers
//
// Observers receive Created, Borrowed, BorrowReturned and Dropped events:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    if e.Type == resource.EventDropped {
//	        log.Printf("handle %d dropped", e.Handle)
//	    }
//	}))
//
// Values implementing Dropper have Drop called when they are dropped.
// Close drops every value still live.
package resource
