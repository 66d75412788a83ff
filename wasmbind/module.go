package wasmbind

import (
	"context"
	"fmt"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/js-bridge/bridge"
	"github.com/wippyai/js-bridge/engine"
	"github.com/wippyai/js-bridge/errors"
)

// CallContext returns the context for a call into the module. It is read on
// every call, so it can follow the evaluation currently running.
type CallContext func() context.Context

// Config holds configuration for loading a module
type Config struct {
	// Name is the module name inside the wazero runtime. Empty means anonymous.
	Name string

	// MemoryLimitPages sets the maximum memory in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32
}

// Module is an instantiated core WebAssembly module whose exported functions
// can be bound into a script context.
type Module struct {
	runtime  wazero.Runtime
	instance api.Module
	defs     map[string]api.FunctionDefinition
}

// Load compiles and instantiates a core WebAssembly module.
func Load(ctx context.Context, wasm []byte) (*Module, error) {
	return LoadWithConfig(ctx, wasm, nil)
}

// LoadWithConfig is Load with custom configuration.
func LoadWithConfig(ctx context.Context, wasm []byte, cfg *Config) (*Module, error) {
	if len(wasm) == 0 {
		return nil, errors.InvalidInput(errors.PhaseWasm, "empty wasm binary")
	}

	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	modConfig := wazero.NewModuleConfig().WithName("")
	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.Name != "" {
			modConfig = modConfig.WithName(cfg.Name)
		}
	}

	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, multierr.Append(errors.Wrap(errors.PhaseWasm, errors.KindInvalidInput, err, "compile module"), rt.Close(ctx))
	}
	instance, err := rt.InstantiateModule(ctx, compiled, modConfig)
	if err != nil {
		return nil, multierr.Append(errors.Instantiation(errors.PhaseWasm, err), rt.Close(ctx))
	}

	m := &Module{
		runtime:  rt,
		instance: instance,
		defs:     instance.ExportedFunctionDefinitions(),
	}
	Logger().Debug("wasm module loaded", zap.Strings("exports", m.Exports()))
	return m, nil
}

// Exports returns the names of the exported functions in sorted order.
func (m *Module) Exports() []string {
	names := make([]string, 0, len(m.defs))
	for name := range m.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Install binds the module as a global object named global. Reading a
// property resolves the export of that name to a script function, created
// on first access. Each call runs with the context returned by callCtx; a
// nil callCtx means context.Background. Cancelling that context stops a
// running call and closes the module.
func (m *Module) Install(callCtx CallContext, jsctx engine.Context, global string) error {
	if callCtx == nil {
		callCtx = context.Background
	}
	cache := make(map[string]engine.Object)
	return bridge.InstallGlobalProxy(jsctx, global, func(ctx engine.Context, _ engine.Object, name string) (engine.Value, engine.Value) {
		if fn, ok := cache[name]; ok {
			return fn, nil
		}
		def, ok := m.defs[name]
		if !ok {
			return nil, nil
		}
		fn, err := bridge.MakeFunction(ctx, name, m.export(callCtx, name, def))
		if err != nil {
			exception, aerr := bridge.TranslateNativeError(ctx, global+"."+name, err)
			if aerr != nil {
				panic(aerr)
			}
			return nil, exception
		}
		cache[name] = fn
		return fn, nil
	})
}

// export adapts one exported function. Arguments are converted to the
// declared parameter types; missing ones are zero. Multiple results come
// back as an array.
func (m *Module) export(callCtx CallContext, name string, def api.FunctionDefinition) bridge.NativeFunc {
	paramTypes := def.ParamTypes()
	resultTypes := def.ResultTypes()

	return func(ctx engine.Context, _ engine.Value, args []engine.Value) (engine.Value, error) {
		fn := m.instance.ExportedFunction(name)
		if fn == nil {
			return nil, errors.NotFound(errors.PhaseWasm, "export", name)
		}

		params := make([]uint64, len(paramTypes))
		for i, t := range paramTypes {
			if i >= len(args) {
				break
			}
			p, err := encode(args[i], t)
			if err != nil {
				return nil, errors.New(errors.PhaseWasm, errors.KindTypeMismatch).
					Path(name, fmt.Sprintf("arg%d", i)).
					Detail("%v", err).
					Build()
			}
			params[i] = p
		}

		results, err := fn.Call(callCtx(), params...)
		if err != nil {
			return nil, err
		}

		switch len(results) {
		case 0:
			return ctx.Undefined(), nil
		case 1:
			return ctx.Number(decode(results[0], resultTypes[0])), nil
		}
		out := make([]any, len(results))
		for i, r := range results {
			out[i] = decode(r, resultTypes[i])
		}
		return ctx.ValueOf(out), nil
	}
}

func encode(v engine.Value, t api.ValueType) (uint64, error) {
	switch t {
	case api.ValueTypeI32:
		return api.EncodeI32(int32(v.ToInteger())), nil
	case api.ValueTypeI64:
		return api.EncodeI64(v.ToInteger()), nil
	case api.ValueTypeF32:
		return api.EncodeF32(float32(v.ToNumber())), nil
	case api.ValueTypeF64:
		return api.EncodeF64(v.ToNumber()), nil
	}
	return 0, fmt.Errorf("unsupported parameter type %s", api.ValueTypeName(t))
}

// decode converts a result to a script number. i64 results beyond 2^53
// lose precision.
func decode(r uint64, t api.ValueType) float64 {
	switch t {
	case api.ValueTypeI32:
		return float64(api.DecodeI32(r))
	case api.ValueTypeI64:
		return float64(int64(r))
	case api.ValueTypeF32:
		return float64(api.DecodeF32(r))
	case api.ValueTypeF64:
		return api.DecodeF64(r)
	}
	return float64(r)
}

// Close closes the instance and its runtime.
func (m *Module) Close(ctx context.Context) error {
	return multierr.Append(m.instance.Close(ctx), m.runtime.Close(ctx))
}
