// Package wasmbind exposes the exported functions of a core WebAssembly
// module to script code.
//
//	mod, err := wasmbind.Load(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mod.Close(ctx)
//
//	if err := mod.Install(rt.CallContext, rt.Context(), "math"); err != nil {
//	    log.Fatal(err)
//	}
//	// script: math.add(1, 2)
//
// Numbers are converted to the declared parameter types (i32, i64, f32,
// f64). A trap inside the module becomes a script Error thrown at the call
// site. Reference-typed parameters are not supported.
package wasmbind
