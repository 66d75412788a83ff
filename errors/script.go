package errors

// ErrScriptExecution matches any *ScriptExecutionError with errors.Is.
var ErrScriptExecution = &ScriptExecutionError{}

// ScriptExecutionError reports an exception that escaped script evaluation.
// Message carries the exception text with an optional " (file:line)" suffix.
// Stack is only meaningful when HasStack is set.
type ScriptExecutionError struct {
	Message   string
	Stack     string
	SourceURL string
	HasStack  bool
}

// NewScriptExecutionError creates an error without a stack trace.
func NewScriptExecutionError(message string) *ScriptExecutionError {
	return &ScriptExecutionError{Message: message}
}

// NewScriptExecutionErrorWithStack creates an error carrying the engine's stack trace text.
func NewScriptExecutionErrorWithStack(message, stack string) *ScriptExecutionError {
	return &ScriptExecutionError{Message: message, Stack: stack, HasStack: true}
}

func (e *ScriptExecutionError) Error() string {
	return e.Message
}

// Is reports whether target is a *ScriptExecutionError.
func (e *ScriptExecutionError) Is(target error) bool {
	_, ok := target.(*ScriptExecutionError)
	return ok
}

// NativeKind classifies a Go-side failure caught at the script boundary.
type NativeKind uint8

const (
	// NativeAllocationFailure is never translated; it propagates to the Go caller unchanged.
	NativeAllocationFailure NativeKind = iota
	// NativeExceptionWithMessage is a Go error value.
	NativeExceptionWithMessage
	// NativeTextException is a panic raised with a plain string.
	NativeTextException
	// UnknownNativeException is anything else recovered from a panic.
	UnknownNativeException
	// NameResolutionFailure is reported when the failing function could not be named.
	NameResolutionFailure
)

func (k NativeKind) String() string {
	switch k {
	case NativeAllocationFailure:
		return "allocation_failure"
	case NativeExceptionWithMessage:
		return "native_exception"
	case NativeTextException:
		return "native_text_exception"
	case UnknownNativeException:
		return "unknown_native_exception"
	case NameResolutionFailure:
		return "name_resolution_failure"
	default:
		return "invalid"
	}
}
