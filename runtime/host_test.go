package runtime

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/wippyai/js-bridge/errors"
)

type calcHost struct {
	calls int
}

func (h *calcHost) Namespace() string { return "calc" }

func (h *calcHost) Add(a, b int) int {
	h.calls++
	return a + b
}

func (h *calcHost) Greet(name string) string { return "hi " + name }

func (h *calcHost) Fail() error { return stderrors.New("calc failed") }

func (h *calcHost) HTTPStatus() int { return 204 }

type explicitHost struct{}

func (explicitHost) Namespace() string { return "ex" }

func (explicitHost) Register() map[string]any {
	return map[string]any{
		"do_it": func() string { return "done" },
	}
}

type emptyNamespaceHost struct{}

func (emptyNamespaceHost) Namespace() string { return "" }

func TestToLowerCamel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GetValue", "getValue"},
		{"Add", "add"},
		{"HTTPGet", "httpGet"},
		{"HTTPStatus", "httpStatus"},
		{"URL", "url"},
		{"ID", "id"},
		{"GetHTTPURL", "getHTTPURL"},
		{"already", "already"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := toLowerCamel(tt.in); got != tt.want {
				t.Errorf("toLowerCamel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHostRegistry_RegisterHost(t *testing.T) {
	r := NewHostRegistry(nil)
	if err := r.RegisterHost(&calcHost{}); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterHost(explicitHost{}); err != nil {
		t.Fatal(err)
	}

	if got, want := r.Names(), []string{"calc", "ex"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if got, want := r.Members("calc"), []string{"add", "fail", "greet", "httpStatus"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Members(calc) = %v, want %v", got, want)
	}
	if got, want := r.Members("ex"), []string{"do_it"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Members(ex) = %v, want %v", got, want)
	}

	if !r.Unregister("calc") {
		t.Error("Unregister(calc) = false")
	}
	if r.Unregister("calc") {
		t.Error("second Unregister(calc) = true")
	}
}

func TestHostRegistry_Errors(t *testing.T) {
	r := NewHostRegistry(nil)

	tests := []struct {
		name string
		err  error
		kind errors.Kind
	}{
		{"empty namespace", r.RegisterHost(emptyNamespaceHost{}), errors.KindInvalidInput},
		{"empty function name", r.RegisterFunc("", func() {}), errors.KindInvalidInput},
		{"not a function", r.RegisterFunc("x", 42), errors.KindTypeMismatch},
		{"nil handler", r.RegisterFunc("x", nil), errors.KindInvalidInput},
		{"bad second result", r.RegisterFunc("x", func() (int, int) { return 0, 0 }), errors.KindTypeMismatch},
		{"too many results", r.RegisterFunc("x", func() (int, int, error) { return 0, 0, nil }), errors.KindTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !stderrors.Is(tt.err, &errors.Error{Phase: errors.PhaseHost, Kind: tt.kind}) {
				t.Errorf("got %v, want kind %s", tt.err, tt.kind)
			}
		})
	}

	if len(r.Names()) != 0 {
		t.Errorf("failed registrations left names %v", r.Names())
	}
}

func TestHostRegistry_BindUnknown(t *testing.T) {
	rt := newRuntime(t)
	err := rt.Hosts().BindName(rt.Context(), "nothing")
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseHost, Kind: errors.KindNotFound}) {
		t.Errorf("got %v, want not found", err)
	}
}
