// Package bridge exposes Go functions and computed objects to script code
// and translates failures across the boundary in both directions.
//
// # Wrapping and Installing
//
// MakeFunction turns a NativeFunc into a script function object. The
// function object owns the closure; the closure is released when the engine
// finalizes the object and is never invoked after that.
//
//	err := bridge.InstallGlobalFunction(ctx, "add", func(ctx engine.Context, this engine.Value, args []engine.Value) (engine.Value, error) {
//	    return ctx.Number(args[0].ToNumber() + args[1].ToNumber()), nil
//	})
//
// InstallGlobalProxy binds an object whose properties are computed on read,
// and RemoveGlobal sets a binding back to undefined.
//
// # Evaluation
//
// EvaluateScript runs source text; CreateSourceCode and EvaluateSourceCode
// split compilation from evaluation. A script exception is logged and
// returned as *errors.ScriptExecutionError:
//
//	_, err := bridge.EvaluateScript(goctx, ctx, `throw new Error("boom")`, "main.js")
//	// err.Error() == "Error: boom (main.js)"
//
// The source URL is empty for scripts built in-process. In that case a
// reported line of 1 carries no location suffix.
//
// # Native Failures
//
// An error returned by a NativeFunc, or a panic inside it, becomes a script
// Error thrown at the call site:
//
//	error          Native exception in '<name>': <message>
//	string panic   Native exception (raised as text) in '<name>': <text>
//	other panic    Unknown native exception in '<name>'
//
// Allocation failures (errors.IsAllocation) are never converted. They unwind
// the script and come back out of EvaluateScript unchanged.
package bridge
