// Package runtime provides the high-level API for running scripts with Go
// functions and hosts bound into the global scope.
//
// # Quick Start
//
//	rt, err := runtime.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	rt.RegisterFunc("greet", func(name string) string {
//	    return "Hello, " + name
//	})
//
//	v, err := rt.Eval(ctx, `greet("World")`, "main.js")
//	if err != nil {
//	    log.Fatal(err) // *errors.ScriptExecutionError for script exceptions
//	}
//	fmt.Println(v.Export()) // "Hello, World"
//
// # Host Functions
//
// RegisterFunc accepts a bridge.NativeFunc or any Go function. Arguments are
// converted by reflection; an optional leading context.Context receives the
// context passed to Eval:
//
//	rt.RegisterFunc("fetch", func(ctx context.Context, url string) (string, error) {
//	    ...
//	})
//
// A returned error becomes a script Error thrown at the call site:
//
//	Native exception in 'fetch': <err.Error()>
//
// # Hosts
//
// A Host exposes its exported methods on a global object named by
// Namespace, created on first access:
//
//	type Files struct{}
//
//	func (Files) Namespace() string                      { return "files" }
//	func (Files) ReadText(path string) (string, error)   { ... }
//
//	rt.RegisterHost(Files{}) // files.readText("a.txt")
//
// Method names are converted from PascalCase to lowerCamelCase, with
// leading acronyms lowered (HTTPGet -> httpGet). Hosts that need other
// names implement ExplicitRegistrar.
//
// # Type Mapping
//
//	Go Type              Script argument
//	─────────────────────────────────────
//	bool                 ToBoolean
//	int*/uint*           ToInteger (negative uint arguments fail)
//	float32/float64      ToNumber
//	string               ToString
//	engine.Value         as is
//	engine.Object        objects only
//	any                  exported Go value
//
// Missing arguments are zero values. Results are converted with the
// engine's default marshaling; an engine.Value result is returned as is.
//
// # Console
//
// Unless WithoutConsole is given, a console global (log, info, warn, error,
// debug) writes to stdout or the writer given to WithConsole, and to the
// runtime logger.
//
// # Thread Safety
//
// Runtime methods are serialized between evaluations. Functions and hosts
// run on the evaluating goroutine and may call back into the Runtime:
// registering, unregistering and nested Eval work, Close returns an
// unsupported error. Other goroutines must wait for the evaluation to
// return before using the Runtime.
package runtime
