package bridge

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/js-bridge/engine"
)

func newContext(t *testing.T) *engine.GojaContext {
	t.Helper()
	ctx := engine.NewGojaContext()
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx
}

// observeLogs routes the package logger into an in-memory core for the
// duration of the test.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })
	return logs
}

func mustEval(t *testing.T, ctx engine.Context, source string) engine.Value {
	t.Helper()
	v, err := EvaluateScript(context.Background(), ctx, source, "test.js")
	if err != nil {
		t.Fatalf("evaluate %q: %v", source, err)
	}
	return v
}

func mustString(t *testing.T, v engine.Value) string {
	t.Helper()
	s, err := v.ToString()
	if err != nil {
		t.Fatalf("to string: %v", err)
	}
	return s
}

func errorMessage(t *testing.T, v engine.Value) string {
	t.Helper()
	obj, err := v.AsObject()
	if err != nil {
		t.Fatalf("script error is not an object: %v", err)
	}
	msg, err := obj.GetProperty("message")
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	return mustString(t, msg)
}
