// Package engine defines the narrow view of a JavaScript engine that the
// bridge consumes, and implements it on top of goja.
//
// # Collaborator Interfaces
//
//	Value    - a script value: type tests, conversions, export to Go
//	Object   - a script object: properties, private slot, calls from Go
//	Context  - global scope, value constructors, object allocation, evaluation
//	Class    - an immutable trap table (call, get-property, finalize)
//
// Failures inside the engine are reported out of band: EvaluateScript and
// friends return an exception value next to the result instead of an error,
// and callers decide how to translate it.
//
// # Classes and Private Data
//
// Objects created with MakeObject take ownership of a private Go value. The
// value lives in a resource.Table; the class finalizer receives it back
// exactly once when the object is collected:
//
//	class := engine.NewClass(engine.ClassDefinition{
//	    Name:           "HostFunction",
//	    CallAsFunction: dispatch,
//	    Finalize: func(obj engine.Object, private any) {
//	        // release private
//	    },
//	})
//	fn, err := ctx.MakeObject(class, closure)
//
// A Class holds no per-object state and can be shared by every object of
// that kind.
//
// # goja
//
// GojaContext is the goja-backed Context. goja offers no collector hook, so
// collection is explicit: Collect finalizes one object (deferred while the
// object is being called), Close finalizes everything still live.
//
// Calls made with an undefined or null receiver see the global object as
// this, matching sloppy-mode function calls.
//
// GojaContext is not safe for concurrent use.
package engine
