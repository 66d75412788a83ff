package bridge

import (
	"go.uber.org/zap"

	"github.com/wippyai/js-bridge/engine"
	"github.com/wippyai/js-bridge/errors"
)

const proxyClassName = "_BridgeProxyClass"

// InstallGlobalFunction binds fn as name in the global scope, replacing any
// existing binding.
func InstallGlobalFunction(ctx engine.Context, name string, fn NativeFunc) error {
	obj, err := MakeFunction(ctx, name, fn)
	if err != nil {
		return err
	}
	return setGlobal(ctx, name, obj)
}

// InstallGlobalCallback binds a stateless engine callback as name in the
// global scope.
func InstallGlobalCallback(ctx engine.Context, name string, cb engine.CallTrap) error {
	obj, err := MakeFunctionWithCallback(ctx, name, cb)
	if err != nil {
		return err
	}
	return setGlobal(ctx, name, obj)
}

// InstallGlobalProxy binds an object whose properties are computed by
// resolver when read.
func InstallGlobalProxy(ctx engine.Context, name string, resolver engine.PropertyResolver) error {
	if resolver == nil {
		return errors.InvalidInput(errors.PhaseInstall, "property resolver cannot be nil")
	}
	class := engine.NewClass(engine.ClassDefinition{
		Name:        proxyClassName,
		GetProperty: resolver,
	})
	obj, err := ctx.MakeObject(class, nil)
	if err != nil {
		return err
	}
	return setGlobal(ctx, name, obj)
}

// RemoveGlobal unbinds name by setting it to undefined. The property itself
// is left in place.
func RemoveGlobal(ctx engine.Context, name string) error {
	return setGlobal(ctx, name, ctx.Undefined())
}

func setGlobal(ctx engine.Context, name string, v engine.Value) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseInstall, "global name cannot be empty")
	}
	if err := ctx.GlobalObject().SetProperty(name, v); err != nil {
		return errors.New(errors.PhaseInstall, errors.KindRegistration).
			Path(name).
			Cause(err).
			Detail("set global").
			Build()
	}
	Logger().Debug("global bound", zap.String("name", name), zap.Bool("undefined", v.IsUndefined()))
	return nil
}
