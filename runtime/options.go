package runtime

import (
	"io"
	"os"

	"go.uber.org/zap"
)

type options struct {
	logger    *zap.Logger
	console   io.Writer
	noConsole bool
	hosts     []Host
}

func defaultOptions() options {
	return options{
		console: os.Stdout,
	}
}

// Option configures a Runtime.
type Option func(*options)

// WithLogger sets the logger used by the runtime and its console host.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithConsole directs console output to w. A nil w keeps console output in
// the logger only.
func WithConsole(w io.Writer) Option {
	return func(o *options) {
		o.console = w
		o.noConsole = false
	}
}

// WithoutConsole leaves the console global undefined.
func WithoutConsole() Option {
	return func(o *options) {
		o.noConsole = true
	}
}

// WithHost registers h when the runtime is created.
func WithHost(h Host) Option {
	return func(o *options) {
		o.hosts = append(o.hosts, h)
	}
}
