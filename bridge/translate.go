package bridge

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/js-bridge/engine"
	"github.com/wippyai/js-bridge/errors"
)

const (
	unknownFile         = "<unknown file>"
	unprintableMessage  = "<unprintable script exception>"
	nameResolutionError = "Failed to get function name while handling exception"
)

// diagnostic is the transient record built from a script exception.
type diagnostic struct {
	message  string
	location string
	stack    string
	hasStack bool
}

// TranslateScriptException converts a script exception into the error the
// host sees. sourceURL is empty when the script was built in-process rather
// than loaded from a named resource. The message is logged, and so is the
// stack when the exception carries one. The result is always a
// *errors.ScriptExecutionError.
func TranslateScriptException(ctx engine.Context, exception engine.Value, sourceURL string) error {
	d := diagnose(exception, sourceURL)

	Logger().Error("script exception", zap.String("message", d.message))

	if !d.hasStack {
		err := errors.NewScriptExecutionError(d.message)
		err.SourceURL = sourceURL
		return err
	}

	Logger().Error("script stack", zap.String("stack", d.stack))
	err := errors.NewScriptExecutionErrorWithStack(d.message, d.stack)
	err.SourceURL = sourceURL
	return err
}

func diagnose(exception engine.Value, sourceURL string) diagnostic {
	d := diagnostic{
		message:  describe(exception),
		location: sourceURL,
	}

	var obj engine.Object
	if exception != nil && exception.IsObject() {
		obj, _ = exception.AsObject()
	}

	if obj != nil {
		if line, err := obj.GetProperty("line"); err == nil && line != nil && line.IsNumber() {
			n := line.ToInteger()
			if d.location == "" && n != 1 {
				// line 1 without a source URL is not reported
				d.location = unknownFile + ":" + strconv.FormatInt(n, 10)
			} else if d.location != "" {
				d.location += ":" + strconv.FormatInt(n, 10)
			}
		}
	}

	if d.location != "" {
		d.message += " (" + d.location + ")"
	}

	if obj != nil {
		if stack, err := obj.GetProperty("stack"); err == nil && stack != nil && stack.IsString() {
			if s, err := stack.ToString(); err == nil {
				d.stack = s
				d.hasStack = true
			}
		}
	}

	return d
}

func describe(v engine.Value) string {
	if v == nil {
		return "undefined"
	}
	s, err := v.ToString()
	if err != nil {
		return unprintableMessage
	}
	return s
}

// ClassifyNative reports which kind of Go-side failure caught is.
func ClassifyNative(caught any) errors.NativeKind {
	switch x := caught.(type) {
	case error:
		if errors.IsAllocation(x) {
			return errors.NativeAllocationFailure
		}
		return errors.NativeExceptionWithMessage
	case string:
		return errors.NativeTextException
	default:
		return errors.UnknownNativeException
	}
}

// TranslateNativeError converts a failure caught while running Go code on
// behalf of the script into a script error value. caught is what the caller
// caught: a returned error or a recovered panic value. location names the
// call site.
//
// Allocation failures are not converted: they come back unchanged as the
// error result and must keep propagating to the Go caller.
func TranslateNativeError(ctx engine.Context, location string, caught any) (engine.Value, error) {
	kind := ClassifyNative(caught)

	var msg string
	switch kind {
	case errors.NativeAllocationFailure:
		return nil, caught.(error)
	case errors.NativeExceptionWithMessage:
		msg = fmt.Sprintf("Native exception in '%s': %s", location, caught.(error).Error())
	case errors.NativeTextException:
		msg = fmt.Sprintf("Native exception (raised as text) in '%s': %s", location, caught.(string))
	default:
		msg = fmt.Sprintf("Unknown native exception in '%s'", location)
	}

	Logger().Debug("native failure translated",
		zap.String("location", location),
		zap.Stringer("kind", kind))
	return ctx.MakeError(msg), nil
}

// TranslateNativeErrorForFunction is TranslateNativeError with the call site
// named by function's name property. If the name cannot be resolved the
// result is a fixed script error instead.
func TranslateNativeErrorForFunction(ctx engine.Context, function engine.Object, caught any) (engine.Value, error) {
	if ClassifyNative(caught) == errors.NativeAllocationFailure {
		return nil, caught.(error)
	}

	name, ok := functionName(function)
	if !ok {
		Logger().Debug("native failure translated",
			zap.Stringer("kind", errors.NameResolutionFailure))
		return ctx.MakeError(nameResolutionError), nil
	}
	return TranslateNativeError(ctx, name, caught)
}

func functionName(function engine.Object) (name string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			name, ok = "", false
		}
	}()

	if function == nil {
		return "", false
	}
	v, err := function.GetProperty("name")
	if err != nil {
		return "", false
	}
	name, err = v.ToString()
	if err != nil {
		return "", false
	}
	return name, true
}
