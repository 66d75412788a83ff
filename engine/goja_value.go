package engine

import (
	"math"
	"reflect"

	"github.com/dop251/goja"

	"github.com/wippyai/js-bridge/errors"
)

type gojaValue struct {
	ctx *GojaContext
	v   goja.Value
}

type gojaObject struct {
	gojaValue
	obj *goja.Object
}

func (c *GojaContext) wrap(v goja.Value) Value {
	if v == nil {
		v = goja.Undefined()
	}
	if o, ok := v.(*goja.Object); ok {
		return c.wrapObject(o)
	}
	return &gojaValue{ctx: c, v: v}
}

func (c *GojaContext) wrapObject(o *goja.Object) *gojaObject {
	return &gojaObject{gojaValue: gojaValue{ctx: c, v: o}, obj: o}
}

// unwrap converts a Value back to goja. Values from other implementations
// are marshaled through their exported form.
func (c *GojaContext) unwrap(v Value) goja.Value {
	switch x := v.(type) {
	case nil:
		return goja.Undefined()
	case *gojaObject:
		return x.obj
	case *gojaValue:
		return x.v
	}
	return c.rt.ToValue(v.Export())
}

func (v *gojaValue) kind() reflect.Kind {
	if v.v == nil || goja.IsUndefined(v.v) || goja.IsNull(v.v) {
		return reflect.Invalid
	}
	if _, ok := v.v.(*goja.Object); ok {
		return reflect.Struct
	}
	t := v.v.ExportType()
	if t == nil {
		return reflect.Invalid
	}
	return t.Kind()
}

func (v *gojaValue) IsUndefined() bool { return v.v == nil || goja.IsUndefined(v.v) }

func (v *gojaValue) IsNull() bool { return v.v != nil && goja.IsNull(v.v) }

func (v *gojaValue) IsBoolean() bool { return v.kind() == reflect.Bool }

func (v *gojaValue) IsNumber() bool {
	k := v.kind()
	return k == reflect.Int64 || k == reflect.Float64
}

func (v *gojaValue) IsString() bool { return v.kind() == reflect.String }

func (v *gojaValue) IsObject() bool {
	_, ok := v.v.(*goja.Object)
	return ok
}

func (v *gojaValue) ToString() (string, error) {
	var s string
	if ex := v.ctx.rt.Try(func() { s = v.v.String() }); ex != nil {
		return "", &ExceptionError{Exception: v.ctx.wrap(ex.Value()), Op: "toString"}
	}
	return s, nil
}

func (v *gojaValue) ToNumber() float64 {
	f := math.NaN()
	v.ctx.rt.Try(func() { f = v.v.ToFloat() })
	return f
}

func (v *gojaValue) ToInteger() int64 {
	var i int64
	v.ctx.rt.Try(func() { i = v.v.ToInteger() })
	return i
}

func (v *gojaValue) ToBoolean() bool { return v.v.ToBoolean() }

func (v *gojaValue) AsObject() (Object, error) {
	if o, ok := v.v.(*goja.Object); ok {
		return v.ctx.wrapObject(o), nil
	}
	return nil, errors.TypeMismatch(errors.PhaseEngine, nil, "engine.Object", "value is not an object")
}

func (v *gojaValue) Export() any {
	if v.v == nil {
		return nil
	}
	return v.v.Export()
}

func (o *gojaObject) GetProperty(name string) (Value, error) {
	var res goja.Value
	if ex := o.ctx.rt.Try(func() { res = o.obj.Get(name) }); ex != nil {
		return nil, &ExceptionError{Exception: o.ctx.wrap(ex.Value()), Op: "get " + name}
	}
	return o.ctx.wrap(res), nil
}

func (o *gojaObject) SetProperty(name string, v Value) error {
	if err := o.obj.Set(name, o.ctx.unwrap(v)); err != nil {
		return o.ctx.operationError(err, "set "+name)
	}
	return nil
}

func (o *gojaObject) DefineProperty(name string, v Value) error {
	if err := o.obj.DefineDataProperty(name, o.ctx.unwrap(v), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		return o.ctx.operationError(err, "define "+name)
	}
	return nil
}

func (o *gojaObject) Private() any {
	st, ok := o.ctx.objects[o.obj]
	if !ok {
		return nil
	}
	v, ok := o.ctx.private.Get(st.handle)
	if !ok {
		return nil
	}
	return v.(*slot).value
}

func (o *gojaObject) IsFunction() bool {
	_, ok := goja.AssertFunction(o.obj)
	return ok
}

func (o *gojaObject) CallAsFunction(this Value, args ...Value) (Value, Value) {
	fn, ok := goja.AssertFunction(o.obj)
	if !ok {
		return nil, o.ctx.wrap(o.ctx.rt.NewTypeError("object is not a function"))
	}
	gargs := make([]goja.Value, len(args))
	for i, a := range args {
		gargs[i] = o.ctx.unwrap(a)
	}
	res, err := fn(o.ctx.unwrap(this), gargs...)
	if err != nil {
		return nil, o.ctx.exceptionFrom(err)
	}
	return o.ctx.wrap(res), nil
}

func (c *GojaContext) operationError(err error, op string) error {
	if ex, ok := err.(*goja.Exception); ok {
		return &ExceptionError{Exception: c.wrap(ex.Value()), Op: op}
	}
	return errors.Wrap(errors.PhaseEngine, errors.KindScriptException, err, op)
}
