package runtime

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/js-bridge/bridge"
	"github.com/wippyai/js-bridge/engine"
	"github.com/wippyai/js-bridge/errors"
)

// Runtime owns a script context and the Go functions and hosts bound into it.
//
// Methods are serialized. While an evaluation runs, host functions it calls
// may use the runtime again (register, unregister, evaluate); such calls run
// on the evaluating goroutine without taking the lock. Other goroutines must
// not use the runtime until the evaluation returns.
type Runtime struct {
	ctx     *engine.GojaContext
	hosts   *HostRegistry
	logger  *zap.Logger
	callCtx context.Context
	closers []io.Closer
	mu      sync.Mutex
	depth   atomic.Int32
	closed  bool
}

// New creates a runtime with a fresh goja context. Unless WithoutConsole is
// given, a console global writing to stdout is installed.
func New(opts ...Option) (*Runtime, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}

	r := &Runtime{
		ctx:     engine.NewGojaContext(),
		logger:  o.logger,
		callCtx: context.Background(),
	}
	r.hosts = NewHostRegistry(r.currentContext)

	hosts := o.hosts
	if !o.noConsole {
		hosts = append([]Host{NewConsole(o.console, o.logger)}, hosts...)
	}
	for _, h := range hosts {
		if err := r.RegisterHost(h); err != nil {
			return nil, multierr.Append(err, r.Close())
		}
	}
	return r, nil
}

// currentContext is read by adapted functions while an evaluation runs.
func (r *Runtime) currentContext() context.Context {
	if r.callCtx == nil {
		return context.Background()
	}
	return r.callCtx
}

// CallContext returns the context of the evaluation currently running, or
// the background context between evaluations. Collaborators bound directly
// to Context (such as wasm exports) read it on each call.
func (r *Runtime) CallContext() context.Context {
	return r.currentContext()
}

// Context returns the underlying engine context. It must not be used
// concurrently with the runtime's own methods.
func (r *Runtime) Context() *engine.GojaContext {
	return r.ctx
}

// Hosts returns the registry of bound functions and hosts.
func (r *Runtime) Hosts() *HostRegistry {
	return r.hosts
}

// RegisterFunc binds fn as the global function name, replacing any previous
// binding. See adapt for the accepted function shapes.
func (r *Runtime) RegisterFunc(name string, fn any) error {
	defer r.lock()()
	if err := r.check(errors.PhaseHost); err != nil {
		return err
	}

	if err := r.hosts.RegisterFunc(name, fn); err != nil {
		return err
	}
	return r.hosts.BindName(r.ctx, name)
}

// RegisterHost binds the exported methods of h on a global object named
// h.Namespace(). Method names are converted from PascalCase to
// lowerCamelCase (GetValue -> getValue) unless h is an ExplicitRegistrar.
// Hosts implementing io.Closer are closed with the runtime.
func (r *Runtime) RegisterHost(h Host) error {
	defer r.lock()()
	if err := r.check(errors.PhaseHost); err != nil {
		return err
	}

	if err := r.hosts.RegisterHost(h); err != nil {
		return err
	}
	if err := r.hosts.BindName(r.ctx, h.Namespace()); err != nil {
		return err
	}
	if c, ok := h.(io.Closer); ok {
		r.closers = append(r.closers, c)
	}
	r.logger.Debug("host registered",
		zap.String("namespace", h.Namespace()),
		zap.Strings("members", r.hosts.Members(h.Namespace())))
	return nil
}

// Unregister sets the global name back to undefined.
func (r *Runtime) Unregister(name string) error {
	defer r.lock()()
	if err := r.check(errors.PhaseHost); err != nil {
		return err
	}

	r.hosts.Unregister(name)
	return bridge.RemoveGlobal(r.ctx, name)
}

// Eval runs source as a top-level script. sourceURL is empty for scripts
// built in-process.
func (r *Runtime) Eval(ctx context.Context, source, sourceURL string) (engine.Value, error) {
	defer r.lock()()
	if err := r.check(errors.PhaseEvaluate); err != nil {
		return nil, err
	}

	defer r.enter(ctx)()
	return bridge.EvaluateScript(ctx, r.ctx, source, sourceURL)
}

// Compile parses source for repeated evaluation with Run.
func (r *Runtime) Compile(source, sourceURL string) (engine.SourceCode, error) {
	defer r.lock()()
	if err := r.check(errors.PhaseCompile); err != nil {
		return nil, err
	}
	return bridge.CreateSourceCode(r.ctx, source, sourceURL)
}

// Run evaluates code made by Compile.
func (r *Runtime) Run(ctx context.Context, code engine.SourceCode) (engine.Value, error) {
	defer r.lock()()
	if err := r.check(errors.PhaseEvaluate); err != nil {
		return nil, err
	}

	defer r.enter(ctx)()
	return bridge.EvaluateSourceCode(ctx, r.ctx, code)
}

// lock takes r.mu unless an evaluation is running, in which case the caller
// is a host function on the evaluating goroutine and the lock is already held.
func (r *Runtime) lock() func() {
	if r.depth.Load() > 0 {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *Runtime) check(phase errors.Phase) error {
	if r.ctx == nil {
		return errors.NotInitialized(phase, "runtime")
	}
	if r.closed {
		return errors.Closed(phase, "runtime")
	}
	return nil
}

// enter makes ctx visible to adapted functions and returns the restore func.
func (r *Runtime) enter(ctx context.Context) func() {
	prev := r.callCtx
	r.callCtx = ctx
	r.depth.Add(1)
	return func() {
		r.depth.Add(-1)
		r.callCtx = prev
	}
}

// Close finalizes every script object owning Go data, then closes hosts
// implementing io.Closer. Closing from inside an evaluation is unsupported.
func (r *Runtime) Close() error {
	if r.depth.Load() > 0 {
		return errors.New(errors.PhaseHost, errors.KindUnsupported).
			Detail("close during evaluation").
			Build()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.ctx == nil {
		return nil
	}
	r.closed = true

	err := r.ctx.Close()
	for _, c := range r.closers {
		err = multierr.Append(err, c.Close())
	}
	r.closers = nil
	return err
}
