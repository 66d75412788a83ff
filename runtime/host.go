package runtime

import (
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/wippyai/js-bridge/bridge"
	"github.com/wippyai/js-bridge/engine"
	"github.com/wippyai/js-bridge/errors"
)

// Host is the interface for struct-based host objects.
// All exported methods (except Namespace) appear on a global object named
// by Namespace.
type Host interface {
	// Namespace returns the global name the host is installed under (e.g., "fs").
	Namespace() string
}

// ExplicitRegistrar allows hosts to provide exact script member names
// when automatic PascalCase-to-lowerCamelCase conversion doesn't apply
// (e.g., "log" for console methods).
type ExplicitRegistrar interface {
	Register() map[string]any
}

// HostRegistry holds Go functions and hosts and binds them into an engine
// context as globals.
type HostRegistry struct {
	funcs   map[string]*HostFunc
	hosts   map[string]map[string]*HostFunc
	callCtx CallContext
	mu      sync.RWMutex
}

// HostFunc is a registered Go function and its script adapter.
type HostFunc struct {
	Handler  any
	Receiver reflect.Value
	native   bridge.NativeFunc
}

// NewHostRegistry creates an empty registry. callCtx supplies the Go
// context handed to functions that take a context.Context first.
func NewHostRegistry(callCtx CallContext) *HostRegistry {
	return &HostRegistry{
		funcs:   make(map[string]*HostFunc),
		hosts:   make(map[string]map[string]*HostFunc),
		callCtx: callCtx,
	}
}

// RegisterFunc registers fn as the global function name.
func (r *HostRegistry) RegisterFunc(name string, fn any) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseHost, "function name cannot be empty")
	}
	hf, err := r.newHostFunc(name, fn, reflect.Value{})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = hf
	return nil
}

// RegisterHost registers the methods of h under h.Namespace().
func (r *HostRegistry) RegisterHost(h Host) error {
	ns := h.Namespace()
	if ns == "" {
		return errors.InvalidInput(errors.PhaseHost, "namespace cannot be empty")
	}

	members := make(map[string]*HostFunc)
	rv := reflect.ValueOf(h)

	if er, ok := h.(ExplicitRegistrar); ok {
		for name, handler := range er.Register() {
			hf, err := r.newHostFunc(ns+"."+name, handler, rv)
			if err != nil {
				return err
			}
			members[name] = hf
		}
	} else {
		rt := rv.Type()
		for i := 0; i < rt.NumMethod(); i++ {
			method := rt.Method(i)
			if !method.IsExported() || method.Name == "Namespace" || method.Name == "Close" {
				continue
			}

			name := toLowerCamel(method.Name)
			hf, err := r.newHostFunc(ns+"."+name, rv.Method(i).Interface(), rv)
			if err != nil {
				return err
			}
			members[name] = hf
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts[ns] = members
	return nil
}

// Unregister forgets a function or host registered under name.
// It reports whether anything was registered.
func (r *HostRegistry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, fn := r.funcs[name]
	_, host := r.hosts[name]
	delete(r.funcs, name)
	delete(r.hosts, name)
	return fn || host
}

// Names returns the registered global names in sorted order.
func (r *HostRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs)+len(r.hosts))
	for name := range r.funcs {
		names = append(names, name)
	}
	for name := range r.hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Members returns the script member names of a registered host.
func (r *HostRegistry) Members(namespace string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.hosts[namespace]
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bind installs every registered function and host into ctx.
func (r *HostRegistry) Bind(ctx engine.Context) error {
	for _, name := range r.Names() {
		if err := r.BindName(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// BindName installs the function or host registered under name into ctx.
func (r *HostRegistry) BindName(ctx engine.Context, name string) error {
	r.mu.RLock()
	hf, isFunc := r.funcs[name]
	members, isHost := r.hosts[name]
	r.mu.RUnlock()

	switch {
	case isFunc:
		if err := bridge.InstallGlobalFunction(ctx, name, hf.native); err != nil {
			return errors.Registration(errors.PhaseHost, name, err)
		}
	case isHost:
		if err := bridge.InstallGlobalProxy(ctx, name, hostResolver(name, members)); err != nil {
			return errors.Registration(errors.PhaseHost, name, err)
		}
	default:
		return errors.NotFound(errors.PhaseHost, "host", name)
	}

	Logger().Debug("host bound", zap.String("name", name), zap.Bool("proxy", isHost))
	return nil
}

// hostResolver resolves host members to function objects, creating each one
// on first access.
func hostResolver(namespace string, members map[string]*HostFunc) engine.PropertyResolver {
	cache := make(map[string]engine.Object, len(members))
	return func(ctx engine.Context, _ engine.Object, name string) (engine.Value, engine.Value) {
		if fn, ok := cache[name]; ok {
			return fn, nil
		}
		hf, ok := members[name]
		if !ok {
			return nil, nil
		}
		fn, err := bridge.MakeFunction(ctx, name, hf.native)
		if err != nil {
			exception, aerr := bridge.TranslateNativeError(ctx, namespace+"."+name, err)
			if aerr != nil {
				panic(aerr)
			}
			return nil, exception
		}
		cache[name] = fn
		return fn, nil
	}
}

func (r *HostRegistry) newHostFunc(name string, fn any, receiver reflect.Value) (*HostFunc, error) {
	native, err := adapt(name, fn, r.callCtx)
	if err != nil {
		return nil, err
	}
	return &HostFunc{Handler: fn, Receiver: receiver, native: native}, nil
}

// toLowerCamel converts PascalCase to lowerCamelCase.
// Handles leading acronyms: HTTPGet -> httpGet, URL -> url
func toLowerCamel(s string) string {
	runes := []rune(s)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return s
	}

	end := 1
	for end < len(runes) && unicode.IsUpper(runes[end]) {
		end++
	}
	if end > 1 && end < len(runes) && unicode.IsLower(runes[end]) {
		// Last uppercase before lowercase starts next word, not part of acronym
		end--
	}

	var result strings.Builder
	for i, r := range runes {
		if i < end {
			r = unicode.ToLower(r)
		}
		result.WriteRune(r)
	}
	return result.String()
}
