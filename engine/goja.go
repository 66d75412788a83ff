package engine

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/js-bridge/errors"
	"github.com/wippyai/js-bridge/resource"
)

// GojaContext implements Context on top of a goja runtime.
//
// goja has no collector hook, so objects carrying private data are finalized
// explicitly with Collect, or all at once by Close.
type GojaContext struct {
	rt        *goja.Runtime
	private   *resource.Table
	objects   map[*goja.Object]*objectState
	errorCtor goja.Value
	syntaxErr goja.Value
	closed    bool
}

type objectState struct {
	class  *Class
	handle resource.Handle
}

// slot is what the private table stores for an object: the caller's private
// value plus the class finalizer that takes it back.
type slot struct {
	value    any
	object   Object
	finalize Finalizer
}

func (s *slot) Drop() {
	if s.finalize != nil {
		s.finalize(s.object, s.value)
	}
	s.value = nil
}

// NewGojaContext creates a context with a fresh goja runtime.
func NewGojaContext() *GojaContext {
	rt := goja.New()
	return &GojaContext{
		rt:        rt,
		private:   resource.NewTable(),
		objects:   make(map[*goja.Object]*objectState),
		errorCtor: rt.Get("Error"),
		syntaxErr: rt.Get("SyntaxError"),
	}
}

// Runtime returns the underlying goja runtime.
func (c *GojaContext) Runtime() *goja.Runtime {
	return c.rt
}

// Private returns the table owning private data, for lifecycle observation.
func (c *GojaContext) Private() *resource.Table {
	return c.private
}

func (c *GojaContext) GlobalObject() Object {
	return c.wrapObject(c.rt.GlobalObject())
}

func (c *GojaContext) Undefined() Value { return c.wrap(goja.Undefined()) }

func (c *GojaContext) Null() Value { return c.wrap(goja.Null()) }

func (c *GojaContext) Boolean(b bool) Value { return c.wrap(c.rt.ToValue(b)) }

func (c *GojaContext) Number(f float64) Value { return c.wrap(c.rt.ToValue(f)) }

func (c *GojaContext) String(s string) Value { return c.wrap(c.rt.ToValue(s)) }

func (c *GojaContext) ValueOf(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case goja.Value:
		return c.wrap(x)
	}
	return c.wrap(c.rt.ToValue(v))
}

func (c *GojaContext) MakeError(message string) Value {
	obj, err := c.rt.New(c.errorCtor, c.rt.ToValue(message))
	if err != nil {
		return c.wrap(c.rt.NewGoError(&errors.Error{Phase: errors.PhaseEngine, Kind: errors.KindScriptException, Detail: message}))
	}
	return c.wrap(obj)
}

func (c *GojaContext) MakeObject(class *Class, private any) (Object, error) {
	if c.closed {
		return nil, errors.Closed(errors.PhaseEngine, "context")
	}
	if class == nil {
		return nil, errors.InvalidInput(errors.PhaseEngine, "class cannot be nil")
	}
	def := class.Definition()
	if def.CallAsFunction != nil && def.GetProperty != nil {
		return nil, errors.Unsupported(errors.PhaseEngine, "class with both call and get-property traps")
	}

	owned := private != nil || def.Finalize != nil
	var self *goja.Object
	switch {
	case def.CallAsFunction != nil:
		self = c.newNativeFunction(func() *goja.Object { return self }, def.CallAsFunction, owned)
	case def.GetProperty != nil:
		self = c.rt.NewDynamicObject(&proxyObject{ctx: c, resolve: def.GetProperty, self: func() *goja.Object { return self }})
	default:
		self = c.rt.NewObject()
	}

	if !owned {
		return c.wrapObject(self), nil
	}

	obj := c.wrapObject(self)
	typeID := resource.TypeProxy
	if def.CallAsFunction != nil {
		typeID = resource.TypeFunction
	}
	handle, err := c.private.Insert(typeID, &slot{value: private, object: obj, finalize: def.Finalize})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEngine, errors.KindClosed, err, "attach private data")
	}
	c.objects[self] = &objectState{class: class, handle: handle}
	return obj, nil
}

func (c *GojaContext) MakeFunctionWithCallback(name string, cb CallTrap) (Object, error) {
	if c.closed {
		return nil, errors.Closed(errors.PhaseEngine, "context")
	}
	if cb == nil {
		return nil, errors.InvalidInput(errors.PhaseEngine, "callback cannot be nil")
	}

	var self *goja.Object
	self = c.newNativeFunction(func() *goja.Object { return self }, cb, false)
	obj := c.wrapObject(self)
	if err := obj.DefineProperty("name", c.String(name)); err != nil {
		return nil, err
	}
	return obj, nil
}

// Collect simulates the collector reclaiming obj: its private value is handed
// to the class finalizer exactly once. If obj is being called, finalization
// happens when the outermost call returns. Collect reports whether obj had
// anything to finalize.
func (c *GojaContext) Collect(obj Object) bool {
	o, ok := obj.(*gojaObject)
	if !ok {
		return false
	}
	st, ok := c.objects[o.obj]
	if !ok {
		return false
	}
	delete(c.objects, o.obj)
	if !c.private.Release(st.handle) {
		Logger().Debug("finalization deferred until call returns", zap.String("class", st.class.Name()))
	}
	return true
}

// Close finalizes every object still owning private data. The context must
// not be used afterwards.
func (c *GojaContext) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.objects = make(map[*goja.Object]*objectState)
	return c.private.Close()
}

func (c *GojaContext) EvaluateScript(source, sourceURL string) (Value, Value) {
	res, err := c.rt.RunScript(sourceURL, source)
	if err != nil {
		return nil, c.exceptionFrom(err)
	}
	return c.wrap(res), nil
}

type gojaSource struct {
	program   *goja.Program
	sourceURL string
}

func (s *gojaSource) SourceURL() string { return s.sourceURL }

func (c *GojaContext) CreateSourceCode(source, sourceURL string) (SourceCode, Value) {
	program, err := goja.Compile(sourceURL, source, false)
	if err != nil {
		return nil, c.exceptionFrom(err)
	}
	return &gojaSource{program: program, sourceURL: sourceURL}, nil
}

func (c *GojaContext) EvaluateSourceCode(code SourceCode) (Value, Value) {
	src, ok := code.(*gojaSource)
	if !ok || src == nil {
		return nil, c.MakeError("source code was not created by this engine")
	}
	res, err := c.rt.RunProgram(src.program)
	if err != nil {
		return nil, c.exceptionFrom(err)
	}
	return c.wrap(res), nil
}

// exceptionFrom turns an error returned by goja into the exception value.
func (c *GojaContext) exceptionFrom(err error) Value {
	switch e := err.(type) {
	case *goja.Exception:
		return c.wrap(e.Value())
	case *goja.CompilerSyntaxError:
		if obj, nerr := c.rt.New(c.syntaxErr, c.rt.ToValue(e.Error())); nerr == nil {
			return c.wrap(obj)
		}
	}
	return c.MakeError(err.Error())
}

// newNativeFunction creates a goja function dispatching to trap. When owned
// is set the object's private value is pinned for the duration of each call,
// and calls after finalization began throw a TypeError.
func (c *GojaContext) newNativeFunction(self func() *goja.Object, trap CallTrap, owned bool) *goja.Object {
	fn := func(call goja.FunctionCall) goja.Value {
		obj := self()
		if owned {
			st, ok := c.objects[obj]
			if !ok {
				panic(c.rt.NewTypeError("native function has been finalized"))
			}
			if _, ok := c.private.Borrow(st.handle); !ok {
				panic(c.rt.NewTypeError("native function has been finalized"))
			}
			defer c.private.ReturnBorrow(st.handle)
		}

		this := call.This
		if this == nil || goja.IsUndefined(this) || goja.IsNull(this) {
			this = c.rt.GlobalObject()
		}
		args := make([]Value, len(call.Arguments))
		for i, a := range call.Arguments {
			args[i] = c.wrap(a)
		}

		result, exception := trap(c, c.wrapObject(obj), c.wrap(this), args)
		if exception != nil {
			panic(c.unwrap(exception))
		}
		return c.unwrap(result)
	}
	return c.rt.ToValue(fn).(*goja.Object)
}

// proxyObject backs objects whose class resolves properties on demand.
type proxyObject struct {
	ctx     *GojaContext
	resolve PropertyResolver
	self    func() *goja.Object
}

func (p *proxyObject) Get(key string) goja.Value {
	v, exception := p.resolve(p.ctx, p.ctx.wrapObject(p.self()), key)
	if exception != nil {
		panic(p.ctx.unwrap(exception))
	}
	if v == nil {
		return nil
	}
	return p.ctx.unwrap(v)
}

func (p *proxyObject) Set(string, goja.Value) bool { return false }

func (p *proxyObject) Has(key string) bool { return p.Get(key) != nil }

func (p *proxyObject) Delete(string) bool { return false }

func (p *proxyObject) Keys() []string { return nil }
