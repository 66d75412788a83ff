package runtime

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/js-bridge/engine"
)

// Console is the host behind the script console global.
// Each call writes one line to the output and one entry to the logger.
type Console struct {
	out    io.Writer
	logger *zap.Logger
	mu     sync.Mutex
}

// NewConsole creates a console host. out may be nil.
func NewConsole(out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{out: out, logger: logger}
}

func (c *Console) Namespace() string {
	return "console"
}

// Register implements ExplicitRegistrar.
func (c *Console) Register() map[string]any {
	return map[string]any{
		"log":   c.printer(zapcore.InfoLevel),
		"info":  c.printer(zapcore.InfoLevel),
		"warn":  c.printer(zapcore.WarnLevel),
		"error": c.printer(zapcore.ErrorLevel),
		"debug": c.printer(zapcore.DebugLevel),
	}
}

func (c *Console) printer(level zapcore.Level) func(args ...engine.Value) error {
	return func(args ...engine.Value) error {
		line := formatArgs(args)
		if ce := c.logger.Check(level, line); ce != nil {
			ce.Write(zap.String("source", "console"))
		}
		if c.out == nil {
			return nil
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		_, err := fmt.Fprintln(c.out, line)
		return err
	}
}

func formatArgs(args []engine.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		s, err := a.ToString()
		if err != nil {
			s = "<unprintable>"
		}
		parts[i] = s
	}
	return strings.Join(parts, " ")
}
