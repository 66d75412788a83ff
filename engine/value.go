package engine

import "strings"

// Value is a script value handed across the boundary.
type Value interface {
	IsUndefined() bool
	IsNull() bool
	IsBoolean() bool
	IsNumber() bool
	IsString() bool
	IsObject() bool

	// ToString converts the value to its displayable string form.
	// It fails when the conversion itself throws in the script.
	ToString() (string, error)
	ToNumber() float64
	ToInteger() int64
	ToBoolean() bool

	// AsObject returns the value as an Object, or an error for primitives.
	AsObject() (Object, error)

	// Export returns the closest plain Go representation of the value.
	Export() any
}

// Object is a script object.
type Object interface {
	Value

	GetProperty(name string) (Value, error)
	// SetProperty assigns a property the way script assignment does.
	SetProperty(name string, v Value) error
	// DefineProperty defines a read-only, non-enumerable, configurable own property.
	DefineProperty(name string, v Value) error

	// Private returns the Go value stored in the object's private slot, or nil.
	Private() any

	IsFunction() bool
	// CallAsFunction calls the object from Go. A non-nil exception means the
	// call threw and result is nil.
	CallAsFunction(this Value, args ...Value) (result Value, exception Value)
}

// ExceptionError reports a script exception raised while the engine carried
// out an operation requested from Go.
type ExceptionError struct {
	Exception Value
	Op        string
}

func (e *ExceptionError) Error() string {
	var b strings.Builder
	b.WriteString("script exception")
	if e.Op != "" {
		b.WriteString(" during ")
		b.WriteString(e.Op)
	}
	if e.Exception != nil {
		if s, err := e.Exception.ToString(); err == nil {
			b.WriteString(": ")
			b.WriteString(s)
		}
	}
	return b.String()
}
