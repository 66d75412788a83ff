package bridge

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/wippyai/js-bridge/engine"
	"github.com/wippyai/js-bridge/errors"
)

func TestTranslateScriptException_Location(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		sourceURL string
		want      string
	}{
		{
			name:      "label and line",
			source:    `throw {toString() { return "boom" }, line: 5}`,
			sourceURL: "foo.js",
			want:      "boom (foo.js:5)",
		},
		{
			name:      "label and line one",
			source:    `throw {toString() { return "boom" }, line: 1}`,
			sourceURL: "foo.js",
			want:      "boom (foo.js:1)",
		},
		{
			name:   "no label line one suppressed",
			source: `throw {toString() { return "boom" }, line: 1}`,
			want:   "boom",
		},
		{
			name:   "no label other line",
			source: `throw {toString() { return "boom" }, line: 7}`,
			want:   "boom (<unknown file>:7)",
		},
		{
			name:      "label without line",
			source:    `throw {toString() { return "boom" }}`,
			sourceURL: "foo.js",
			want:      "boom (foo.js)",
		},
		{
			name:      "non-numeric line ignored",
			source:    `throw {toString() { return "boom" }, line: "5"}`,
			sourceURL: "foo.js",
			want:      "boom (foo.js)",
		},
		{
			name:   "primitive exception",
			source: `throw "plain"`,
			want:   "plain",
		},
		{
			name:   "unprintable exception",
			source: `throw {toString() { throw new Error("nope") }}`,
			want:   unprintableMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(t)
			_, err := EvaluateScript(context.Background(), ctx, tt.source, tt.sourceURL)

			var se *errors.ScriptExecutionError
			if !stderrors.As(err, &se) {
				t.Fatalf("expected ScriptExecutionError, got %T: %v", err, err)
			}
			if se.Message != tt.want {
				t.Errorf("message = %q, want %q", se.Message, tt.want)
			}
			if se.HasStack {
				t.Errorf("unexpected stack %q", se.Stack)
			}
			if se.SourceURL != tt.sourceURL {
				t.Errorf("SourceURL = %q, want %q", se.SourceURL, tt.sourceURL)
			}
		})
	}
}

func TestTranslateScriptException_ErrorObject(t *testing.T) {
	ctx := newContext(t)
	_, err := EvaluateScript(context.Background(), ctx, `throw Object.assign(new Error("boom"), {line: 5})`, "foo.js")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasSuffix(err.Error(), "boom (foo.js:5)") {
		t.Errorf("message = %q, want suffix %q", err.Error(), "boom (foo.js:5)")
	}
	if !stderrors.Is(err, errors.ErrScriptExecution) {
		t.Error("expected errors.Is(err, ErrScriptExecution)")
	}
}

func TestTranslateScriptException_Stack(t *testing.T) {
	logs := observeLogs(t)
	ctx := newContext(t)

	const stack = "at run (foo.js:3:7)\nat main (foo.js:9:1)"
	_, err := EvaluateScript(context.Background(), ctx,
		`throw {toString() { return "boom" }, stack: "at run (foo.js:3:7)\nat main (foo.js:9:1)"}`, "foo.js")

	var se *errors.ScriptExecutionError
	if !stderrors.As(err, &se) {
		t.Fatalf("expected ScriptExecutionError, got %T: %v", err, err)
	}
	if se.Message != "boom (foo.js)" {
		t.Errorf("message = %q", se.Message)
	}
	if !se.HasStack || se.Stack != stack {
		t.Errorf("stack = %q (HasStack %v), want %q", se.Stack, se.HasStack, stack)
	}

	msgLogs := logs.FilterMessage("script exception").All()
	if len(msgLogs) != 1 {
		t.Fatalf("expected 1 message log, got %d", len(msgLogs))
	}
	if got := msgLogs[0].ContextMap()["message"]; got != "boom (foo.js)" {
		t.Errorf("logged message = %v", got)
	}
	stackLogs := logs.FilterMessage("script stack").All()
	if len(stackLogs) != 1 {
		t.Fatalf("expected 1 stack log, got %d", len(stackLogs))
	}
	if got := stackLogs[0].ContextMap()["stack"]; got != stack {
		t.Errorf("logged stack = %v", got)
	}
}

func TestTranslateScriptException_LogsWithoutStack(t *testing.T) {
	logs := observeLogs(t)
	ctx := newContext(t)

	err := TranslateScriptException(ctx, ctx.String("bare"), "")
	if err.Error() != "bare" {
		t.Errorf("message = %q", err.Error())
	}
	if n := logs.FilterMessage("script exception").Len(); n != 1 {
		t.Errorf("expected 1 message log, got %d", n)
	}
	if n := logs.FilterMessage("script stack").Len(); n != 0 {
		t.Errorf("expected no stack log, got %d", n)
	}
}

func TestClassifyNative(t *testing.T) {
	tests := []struct {
		name   string
		caught any
		want   errors.NativeKind
	}{
		{"allocation", errors.AllocationFailed(errors.PhaseCall, "buffer"), errors.NativeAllocationFailure},
		{"wrapped allocation", fmt.Errorf("grow: %w", errors.AllocationFailed(errors.PhaseCall, "buffer")), errors.NativeAllocationFailure},
		{"error", stderrors.New("bad arg"), errors.NativeExceptionWithMessage},
		{"text", "bad arg", errors.NativeTextException},
		{"int", 42, errors.UnknownNativeException},
		{"nil", nil, errors.UnknownNativeException},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyNative(tt.caught); got != tt.want {
				t.Errorf("ClassifyNative() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranslateNativeError(t *testing.T) {
	tests := []struct {
		name   string
		caught any
		want   string
	}{
		{"error", stderrors.New("bad arg"), "Native exception in 'myFn': bad arg"},
		{"text", "bad arg", "Native exception (raised as text) in 'myFn': bad arg"},
		{"unknown", struct{}{}, "Unknown native exception in 'myFn'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(t)
			v, err := TranslateNativeError(ctx, "myFn", tt.caught)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := errorMessage(t, v); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslateNativeError_AllocationUnchanged(t *testing.T) {
	ctx := newContext(t)
	alloc := errors.AllocationFailed(errors.PhaseCall, "buffer")

	v, err := TranslateNativeError(ctx, "myFn", alloc)
	if v != nil {
		t.Errorf("expected no script value, got %v", v)
	}
	if err != alloc {
		t.Errorf("expected the same error back, got %v", err)
	}

	v, err = TranslateNativeErrorForFunction(ctx, nil, alloc)
	if v != nil || err != alloc {
		t.Errorf("function variant converted allocation failure: %v, %v", v, err)
	}
}

func TestTranslateNativeErrorForFunction(t *testing.T) {
	ctx := newContext(t)

	fn, err := MakeFunction(ctx, "myFn", func(ctx engine.Context, this engine.Value, args []engine.Value) (engine.Value, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	v, err := TranslateNativeErrorForFunction(ctx, fn, stderrors.New("bad arg"))
	if err != nil {
		t.Fatal(err)
	}
	if got := errorMessage(t, v); got != "Native exception in 'myFn': bad arg" {
		t.Errorf("message = %q", got)
	}
}

func TestTranslateNativeErrorForFunction_NameFailure(t *testing.T) {
	tests := []struct {
		name   string
		target func(t *testing.T, ctx engine.Context) engine.Object
	}{
		{
			name:   "nil function",
			target: func(*testing.T, engine.Context) engine.Object { return nil },
		},
		{
			name: "throwing name getter",
			target: func(t *testing.T, ctx engine.Context) engine.Object {
				v := mustEval(t, ctx, `(function() {
					var o = {};
					Object.defineProperty(o, "name", {get: function() { throw new Error("no name") }});
					return o;
				})()`)
				obj, err := v.AsObject()
				if err != nil {
					t.Fatal(err)
				}
				return obj
			},
		},
		{
			name: "unprintable name",
			target: func(t *testing.T, ctx engine.Context) engine.Object {
				v := mustEval(t, ctx, `({name: {toString: function() { throw new Error("no") }}})`)
				obj, err := v.AsObject()
				if err != nil {
					t.Fatal(err)
				}
				return obj
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(t)
			v, err := TranslateNativeErrorForFunction(ctx, tt.target(t, ctx), stderrors.New("bad arg"))
			if err != nil {
				t.Fatal(err)
			}
			if got := errorMessage(t, v); got != nameResolutionError {
				t.Errorf("message = %q, want %q", got, nameResolutionError)
			}
		})
	}
}
