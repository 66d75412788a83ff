// Package errors provides structured error types for the js-bridge library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes context: property path, Go type name, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCall, errors.KindTypeMismatch).
//		Path("add", "arg0").
//		GoType("int").
//		Detail("cannot convert string to int").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidInput(errors.PhaseInstall, "global name cannot be empty")
//	err := errors.AllocationFailed(errors.PhaseEngine, "function object")
//
// Script exceptions that escape evaluation are reported as *ScriptExecutionError,
// which carries the formatted message and, when the engine provided one, the
// script stack trace.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
