package engine

// CallTrap is the engine's native callback signature for callable objects.
// function is the object being called. A non-nil exception is thrown into the
// script and result is ignored.
type CallTrap func(ctx Context, function Object, this Value, args []Value) (result Value, exception Value)

// PropertyResolver computes a property of a proxy object on demand.
// A nil value means the property is not handled and reads as undefined.
// A non-nil exception is thrown into the script.
type PropertyResolver func(ctx Context, object Object, name string) (value Value, exception Value)

// Finalizer runs once when the engine collects an object, receiving the
// private value the object owned.
type Finalizer func(object Object, private any)

// ClassDefinition is the trap table objects are created from.
type ClassDefinition struct {
	Name           string
	CallAsFunction CallTrap
	GetProperty    PropertyResolver
	Finalize       Finalizer
}

// Class is an immutable class created from a ClassDefinition.
// A Class holds no per-object state and may be shared by any number of objects.
type Class struct {
	def ClassDefinition
}

// NewClass creates a class from def.
func NewClass(def ClassDefinition) *Class {
	return &Class{def: def}
}

// Name returns the class name.
func (c *Class) Name() string { return c.def.Name }

// Callable reports whether objects of this class can be called.
func (c *Class) Callable() bool { return c.def.CallAsFunction != nil }

// Definition returns a copy of the trap table.
func (c *Class) Definition() ClassDefinition { return c.def }

// SourceCode is a source unit parsed ahead of evaluation.
type SourceCode interface {
	SourceURL() string
}

// Context is an engine context: the global scope plus the value constructors
// the bridge consumes. Implementations are not safe for concurrent use.
type Context interface {
	GlobalObject() Object

	Undefined() Value
	Null() Value
	Boolean(b bool) Value
	Number(f float64) Value
	String(s string) Value
	// ValueOf converts a Go value using the engine's default marshaling.
	ValueOf(v any) Value

	// MakeError creates a script Error object with the given message.
	MakeError(message string) Value
	// MakeObject allocates an object of class, taking ownership of private.
	MakeObject(class *Class, private any) (Object, error)
	// MakeFunctionWithCallback creates a function object calling cb directly,
	// without a private slot or finalizer.
	MakeFunctionWithCallback(name string, cb CallTrap) (Object, error)

	// EvaluateScript runs source as a top-level script. Failure is reported
	// only through the exception slot.
	EvaluateScript(source, sourceURL string) (result Value, exception Value)
	// CreateSourceCode parses source for later evaluation.
	CreateSourceCode(source, sourceURL string) (code SourceCode, exception Value)
	// EvaluateSourceCode runs a parsed source unit.
	EvaluateSourceCode(code SourceCode) (result Value, exception Value)
}
