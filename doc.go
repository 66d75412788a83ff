// Package jsbridge exposes Go functions to JavaScript and reports script
// failures back to Go.
//
// The library is organized into several packages with distinct responsibilities:
//
//	jsbridge/
//	├── runtime/    High-level API: register Go functions and hosts, evaluate scripts
//	├── bridge/     Function wrapping, global installation, exception translation
//	├── engine/     Script engine interfaces and the goja implementation
//	├── wasmbind/   Core WebAssembly module exports as script functions (wazero)
//	├── resource/   Handle table backing deferred finalization
//	├── errors/     Structured error types for debugging
//	└── cmd/jsrun/  Command line runner and REPL
//
// # Quick Start
//
// Register a function and call it from script code:
//
//	rt, err := runtime.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	rt.RegisterFunc("add", func(a, b int) int { return a + b })
//
//	v, err := rt.Eval(ctx, "add(2, 3)", "main.js")
//	// v.ToInteger() == 5
//
// # Failures
//
// A Go error returned or panicked by a registered function becomes a script
// Error with the message "Native exception in '<name>': <text>". A script
// exception that escapes evaluation comes back as an
// *errors.ScriptExecutionError whose message carries the source location.
// Allocation failures are never turned into script errors; they reach the Go
// caller unchanged.
package jsbridge
