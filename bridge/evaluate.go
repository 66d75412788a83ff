package bridge

import (
	"context"

	"go.opencensus.io/trace"

	"github.com/wippyai/js-bridge/engine"
	"github.com/wippyai/js-bridge/errors"
)

// outcome is the result of one evaluation: either value or exception is set.
type outcome struct {
	value     engine.Value
	exception engine.Value
}

func (o outcome) failed() bool { return o.exception != nil }

// EvaluateScript runs source as a top-level script. sourceURL labels where
// the script came from and is empty for scripts built in-process. A script
// exception is returned as *errors.ScriptExecutionError.
func EvaluateScript(goctx context.Context, ctx engine.Context, source, sourceURL string) (_ engine.Value, err error) {
	_, span := trace.StartSpan(goctx, "bridge::EvaluateScript")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("source_url", sourceURL))
	defer func() { finishSpan(span, err) }()
	defer recoverAllocation(&err)

	res, exception := ctx.EvaluateScript(source, sourceURL)
	return settle(ctx, outcome{value: res, exception: exception}, sourceURL)
}

// CreateSourceCode compiles source for later evaluation with
// EvaluateSourceCode. Syntax errors are reported like script exceptions.
func CreateSourceCode(ctx engine.Context, source, sourceURL string) (engine.SourceCode, error) {
	code, exception := ctx.CreateSourceCode(source, sourceURL)
	if exception != nil {
		return nil, TranslateScriptException(ctx, exception, sourceURL)
	}
	return code, nil
}

// EvaluateSourceCode runs code made by CreateSourceCode.
func EvaluateSourceCode(goctx context.Context, ctx engine.Context, code engine.SourceCode) (_ engine.Value, err error) {
	if code == nil {
		return nil, errors.InvalidInput(errors.PhaseEvaluate, "source code cannot be nil")
	}

	_, span := trace.StartSpan(goctx, "bridge::EvaluateSourceCode")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("source_url", code.SourceURL()))
	defer func() { finishSpan(span, err) }()
	defer recoverAllocation(&err)

	res, exception := ctx.EvaluateSourceCode(code)
	return settle(ctx, outcome{value: res, exception: exception}, code.SourceURL())
}

func settle(ctx engine.Context, o outcome, sourceURL string) (engine.Value, error) {
	if o.failed() {
		return nil, TranslateScriptException(ctx, o.exception, sourceURL)
	}
	if o.value == nil {
		return ctx.Undefined(), nil
	}
	return o.value, nil
}

// recoverAllocation stops an allocation failure raised inside a wrapped
// function and returns it through err. Other panics continue.
func recoverAllocation(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok && errors.IsAllocation(e) {
		*err = e
		return
	}
	panic(r)
}

func finishSpan(span *trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()})
}
