package bridge

import (
	"sync"

	"github.com/wippyai/js-bridge/engine"
	"github.com/wippyai/js-bridge/errors"
)

// NativeFunc is a Go closure callable from script. this is the receiver of
// the call (the global object for plain calls). A returned error, or a panic,
// is converted into a script error thrown at the call site.
type NativeFunc func(ctx engine.Context, this engine.Value, args []engine.Value) (engine.Value, error)

// nativeBox is the private value of a wrapped function object.
type nativeBox struct {
	fn NativeFunc
}

var functionClass = sync.OnceValue(func() *engine.Class {
	return engine.NewClass(engine.ClassDefinition{
		Name:           "NativeFunction",
		CallAsFunction: callNative,
		Finalize:       finalizeNative,
	})
})

// MakeFunction wraps fn as a script function object named name. The object
// owns fn from now on; fn is released when the engine collects the object.
func MakeFunction(ctx engine.Context, name string, fn NativeFunc) (engine.Object, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseInstall, "function name cannot be empty")
	}
	if fn == nil {
		return nil, errors.InvalidInput(errors.PhaseInstall, "function cannot be nil")
	}

	obj, err := ctx.MakeObject(functionClass(), &nativeBox{fn: fn})
	if err != nil {
		return nil, err
	}
	if err := obj.DefineProperty("name", ctx.String(name)); err != nil {
		return nil, errors.New(errors.PhaseInstall, errors.KindRegistration).
			Path(name, "name").
			Cause(err).
			Detail("set function name").
			Build()
	}
	return obj, nil
}

// MakeFunctionWithCallback wraps a callback that already has the engine's
// native signature. No private data or finalizer is involved.
func MakeFunctionWithCallback(ctx engine.Context, name string, cb engine.CallTrap) (engine.Object, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseInstall, "function name cannot be empty")
	}
	return ctx.MakeFunctionWithCallback(name, cb)
}

func callNative(ctx engine.Context, function engine.Object, this engine.Value, args []engine.Value) (result, exception engine.Value) {
	box, ok := function.Private().(*nativeBox)
	if !ok || box.fn == nil {
		return nil, ctx.MakeError("native function has been finalized")
	}

	defer func() {
		if r := recover(); r != nil {
			result, exception = nil, raiseNative(ctx, function, r)
		}
	}()

	res, err := box.fn(ctx, this, args)
	if err != nil {
		return nil, raiseNative(ctx, function, err)
	}
	if res == nil {
		res = ctx.Undefined()
	}
	return res, nil
}

// raiseNative translates caught for the script. Allocation failures cannot be
// represented in the script and continue as a panic.
func raiseNative(ctx engine.Context, function engine.Object, caught any) engine.Value {
	exception, err := TranslateNativeErrorForFunction(ctx, function, caught)
	if err != nil {
		panic(err)
	}
	return exception
}

func finalizeNative(_ engine.Object, private any) {
	box, ok := private.(*nativeBox)
	if !ok {
		return
	}
	box.fn = nil
	Logger().Debug("native function finalized")
}

// Finalized reports whether finalization of a function made by MakeFunction
// has begun. Such a function can no longer be invoked.
func Finalized(function engine.Object) bool {
	box, ok := function.Private().(*nativeBox)
	return !ok || box.fn == nil
}
