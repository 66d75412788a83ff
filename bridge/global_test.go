package bridge

import (
	"testing"

	"github.com/wippyai/js-bridge/engine"
)

func TestInstallGlobalFunction(t *testing.T) {
	ctx := newContext(t)

	var gotThis engine.Value
	var gotArgs []engine.Value
	if err := InstallGlobalFunction(ctx, "probe", func(ctx engine.Context, this engine.Value, args []engine.Value) (engine.Value, error) {
		gotThis, gotArgs = this, args
		return this, nil
	}); err != nil {
		t.Fatal(err)
	}

	res := mustEval(t, ctx, `probe(1, "two", true) === this`)
	if !res.ToBoolean() {
		t.Error("expected this to be the global object")
	}
	if gotThis == nil || !gotThis.IsObject() {
		t.Fatalf("this = %v", gotThis)
	}
	if len(gotArgs) != 3 {
		t.Fatalf("got %d args, want 3", len(gotArgs))
	}
	if gotArgs[0].ToNumber() != 1 || mustString(t, gotArgs[1]) != "two" || !gotArgs[2].ToBoolean() {
		t.Errorf("unexpected args %v %v %v", gotArgs[0].Export(), gotArgs[1].Export(), gotArgs[2].Export())
	}
}

func TestInstallGlobalFunction_MatchesDirectCall(t *testing.T) {
	ctx := newContext(t)
	if err := InstallGlobalFunction(ctx, "sum", sum); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		source string
		args   []float64
	}{
		{"no args", `sum()`, nil},
		{"one arg", `sum(4)`, []float64{4}},
		{"several args", `sum(1, 2, 3.5)`, []float64{1, 2, 3.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := make([]engine.Value, len(tt.args))
			for i, a := range tt.args {
				args[i] = ctx.Number(a)
			}
			direct, err := sum(ctx, ctx.GlobalObject(), args)
			if err != nil {
				t.Fatal(err)
			}
			viaScript := mustEval(t, ctx, tt.source)
			if viaScript.ToNumber() != direct.ToNumber() {
				t.Errorf("script result %v, direct result %v", viaScript.ToNumber(), direct.ToNumber())
			}
		})
	}
}

func TestInstallGlobalFunction_Replace(t *testing.T) {
	ctx := newContext(t)

	constant := func(s string) NativeFunc {
		return func(ctx engine.Context, _ engine.Value, _ []engine.Value) (engine.Value, error) {
			return ctx.String(s), nil
		}
	}
	if err := InstallGlobalFunction(ctx, "which", constant("first")); err != nil {
		t.Fatal(err)
	}
	if err := InstallGlobalFunction(ctx, "which", constant("second")); err != nil {
		t.Fatal(err)
	}

	if got := mustString(t, mustEval(t, ctx, `which()`)); got != "second" {
		t.Errorf("which() = %q, want %q", got, "second")
	}
}

func TestInstallGlobalFunction_EmptyName(t *testing.T) {
	ctx := newContext(t)
	if err := InstallGlobalFunction(ctx, "", sum); err == nil {
		t.Error("expected error for empty name")
	}
	if err := InstallGlobalCallback(ctx, "", nil); err == nil {
		t.Error("expected error for empty callback name")
	}
}

func TestRemoveGlobal(t *testing.T) {
	tests := []struct {
		name    string
		install bool
	}{
		{"installed", true},
		{"never installed", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(t)
			if tt.install {
				if err := InstallGlobalFunction(ctx, "gone", sum); err != nil {
					t.Fatal(err)
				}
			}
			if err := RemoveGlobal(ctx, "gone"); err != nil {
				t.Fatal(err)
			}

			v, err := ctx.GlobalObject().GetProperty("gone")
			if err != nil {
				t.Fatal(err)
			}
			if !v.IsUndefined() {
				t.Errorf("gone = %v, want undefined", v.Export())
			}
			// the binding stays present with an undefined value
			if !mustEval(t, ctx, `"gone" in this`).ToBoolean() {
				t.Error(`expected "gone" in this`)
			}
		})
	}
}

func TestInstallGlobalCallback(t *testing.T) {
	ctx := newContext(t)
	err := InstallGlobalCallback(ctx, "twice", func(ctx engine.Context, _ engine.Object, _ engine.Value, args []engine.Value) (engine.Value, engine.Value) {
		return ctx.Number(2 * args[0].ToNumber()), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := mustEval(t, ctx, `twice(21)`).ToNumber(); got != 42 {
		t.Errorf("twice(21) = %v", got)
	}
}

func TestInstallGlobalProxy(t *testing.T) {
	ctx := newContext(t)

	var seen []string
	err := InstallGlobalProxy(ctx, "env", func(ctx engine.Context, _ engine.Object, name string) (engine.Value, engine.Value) {
		seen = append(seen, name)
		switch name {
		case "answer":
			return ctx.Number(42), nil
		case "greeting":
			return ctx.String("hello"), nil
		case "broken":
			return nil, ctx.MakeError("broken is not available")
		}
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"number", `String(env.answer)`, "42"},
		{"string", `env.greeting`, "hello"},
		{"unresolved", `typeof env.missing`, "undefined"},
		{"in operator", `String("answer" in env)`, "true"},
		{"throwing resolver", `try { env.broken } catch (e) { e.message }`, "broken is not available"},
		{"not callable", `typeof env`, "object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustString(t, mustEval(t, ctx, tt.source)); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.source, got, tt.want)
			}
		})
	}

	if len(seen) == 0 {
		t.Error("resolver was never consulted")
	}
}

func TestInstallGlobalProxy_NilResolver(t *testing.T) {
	ctx := newContext(t)
	if err := InstallGlobalProxy(ctx, "env", nil); err == nil {
		t.Error("expected error for nil resolver")
	}
}
