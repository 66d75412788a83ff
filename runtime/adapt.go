package runtime

import (
	"context"
	"fmt"
	"reflect"

	"github.com/wippyai/js-bridge/bridge"
	"github.com/wippyai/js-bridge/engine"
	"github.com/wippyai/js-bridge/errors"
)

// CallContext returns the Go context for the evaluation currently running.
type CallContext func() context.Context

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	valueType   = reflect.TypeOf((*engine.Value)(nil)).Elem()
	objectType  = reflect.TypeOf((*engine.Object)(nil)).Elem()
)

// adapt builds the script adapter for a Go function.
//
// Accepted shapes:
//
//	bridge.NativeFunc (or the same signature)    called as is
//	func([context.Context,] params...) results  converted by reflection
//
// Parameters may be bool, integer, float, string, engine.Value,
// engine.Object, any, or anything the exported script value converts to.
// Missing arguments are zero values. Results may be (), (T), (error) or
// (T, error).
func adapt(name string, fn any, callCtx CallContext) (bridge.NativeFunc, error) {
	switch f := fn.(type) {
	case nil:
		return nil, errors.InvalidInput(errors.PhaseHost, "handler cannot be nil")
	case bridge.NativeFunc:
		return f, nil
	case func(engine.Context, engine.Value, []engine.Value) (engine.Value, error):
		return f, nil
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, errors.New(errors.PhaseHost, errors.KindTypeMismatch).
			Path(name).
			GoType(reflect.TypeOf(fn).String()).
			Detail("handler must be a function").
			Build()
	}
	if rv.IsNil() {
		return nil, errors.InvalidInput(errors.PhaseHost, "handler cannot be nil")
	}

	ft := rv.Type()
	withCtx := ft.NumIn() > 0 && ft.In(0) == contextType
	first := 0
	if withCtx {
		first = 1
	}

	switch ft.NumOut() {
	case 0, 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, errors.TypeMismatch(errors.PhaseHost, []string{name}, ft.String(), "second result must be error")
		}
	default:
		return nil, errors.TypeMismatch(errors.PhaseHost, []string{name}, ft.String(), "at most two results are supported")
	}

	return func(ctx engine.Context, _ engine.Value, args []engine.Value) (engine.Value, error) {
		in := make([]reflect.Value, 0, ft.NumIn())
		if withCtx {
			goctx := context.Background()
			if callCtx != nil {
				goctx = callCtx()
			}
			in = append(in, reflect.ValueOf(&goctx).Elem())
		}

		params := ft.NumIn() - first
		fixed := params
		if ft.IsVariadic() {
			fixed--
		}
		for i := 0; i < fixed; i++ {
			pt := ft.In(first + i)
			if i >= len(args) {
				in = append(in, reflect.Zero(pt))
				continue
			}
			v, err := fromScript(args[i], pt)
			if err != nil {
				return nil, argError(name, i, pt, err)
			}
			in = append(in, v)
		}
		if ft.IsVariadic() {
			et := ft.In(ft.NumIn() - 1).Elem()
			for i := fixed; i < len(args); i++ {
				v, err := fromScript(args[i], et)
				if err != nil {
					return nil, argError(name, i, et, err)
				}
				in = append(in, v)
			}
		}

		out := rv.Call(in)
		return toScript(ctx, ft, out)
	}, nil
}

func toScript(ctx engine.Context, ft reflect.Type, out []reflect.Value) (engine.Value, error) {
	if len(out) == 0 {
		return ctx.Undefined(), nil
	}
	last := out[len(out)-1]
	if ft.Out(len(out)-1) == errorType {
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return ctx.Undefined(), nil
	}

	res := out[0]
	if (res.Kind() == reflect.Interface || res.Kind() == reflect.Pointer) && res.IsNil() {
		return ctx.Null(), nil
	}
	if v, ok := res.Interface().(engine.Value); ok {
		return v, nil
	}
	return ctx.ValueOf(res.Interface()), nil
}

func fromScript(v engine.Value, t reflect.Type) (reflect.Value, error) {
	switch t {
	case valueType:
		return reflect.ValueOf(&v).Elem(), nil
	case objectType:
		obj, err := v.AsObject()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(&obj).Elem(), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return reflect.ValueOf(v.ToBoolean()).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(v.ToInteger()).Convert(t), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i := v.ToInteger()
		if i < 0 {
			return reflect.Value{}, fmt.Errorf("%d is negative", i)
		}
		return reflect.ValueOf(uint64(i)).Convert(t), nil
	case reflect.Float32, reflect.Float64:
		return reflect.ValueOf(v.ToNumber()).Convert(t), nil
	case reflect.String:
		s, err := v.ToString()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(s).Convert(t), nil
	case reflect.Interface:
		if t.NumMethod() == 0 {
			exported := v.Export()
			if exported == nil {
				return reflect.Zero(t), nil
			}
			return reflect.ValueOf(exported), nil
		}
	}

	exported := v.Export()
	if exported == nil {
		return reflect.Zero(t), nil
	}
	ev := reflect.ValueOf(exported)
	if ev.Type().AssignableTo(t) {
		return ev, nil
	}
	if ev.Type().ConvertibleTo(t) {
		return ev.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", ev.Type(), t)
}

func argError(name string, i int, t reflect.Type, cause error) error {
	return errors.New(errors.PhaseCall, errors.KindTypeMismatch).
		Path(name, fmt.Sprintf("arg%d", i)).
		GoType(t.String()).
		Cause(cause).
		Detail("convert argument").
		Build()
}
