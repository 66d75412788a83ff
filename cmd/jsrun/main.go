package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/js-bridge/bridge"
	"github.com/wippyai/js-bridge/engine"
	"github.com/wippyai/js-bridge/runtime"
	"github.com/wippyai/js-bridge/wasmbind"
)

func main() {
	var (
		scriptFile  = flag.String("script", "", "Path to a script file to evaluate")
		expr        = flag.String("e", "", "Script source to evaluate")
		wasmFile    = flag.String("wasm", "", "Path to a core wasm module to expose (optional)")
		wasmGlobal  = flag.String("wasm-global", "wasm", "Global name for the wasm module exports")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	bridge.SetLogger(logger)
	engine.SetLogger(logger)
	wasmbind.SetLogger(logger)

	if err := run(logger, *scriptFile, *expr, *wasmFile, *wasmGlobal, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func run(logger *zap.Logger, scriptFile, expr, wasmFile, wasmGlobal string, interactive bool) (err error) {
	ctx := context.Background()

	opts := []runtime.Option{runtime.WithLogger(logger)}
	var console *consoleBuffer
	if interactive {
		// console output is shown inside the REPL view
		console = &consoleBuffer{}
		opts = append(opts, runtime.WithConsole(console))
	}
	rt, err := runtime.New(opts...)
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer func() { err = multierr.Append(err, rt.Close()) }()

	if wasmFile != "" {
		mod, lerr := loadWasm(ctx, rt, wasmFile, wasmGlobal)
		if lerr != nil {
			return lerr
		}
		defer func() { err = multierr.Append(err, mod.Close(ctx)) }()
		logger.Debug("wasm module installed",
			zap.String("global", wasmGlobal),
			zap.Strings("exports", mod.Exports()))
	}

	source, label, err := readSource(scriptFile, expr, interactive)
	if err != nil {
		return err
	}
	if source != "" {
		if err := evalAndPrint(ctx, rt, source, label); err != nil {
			return err
		}
	}

	if interactive {
		return runInteractive(rt, console)
	}
	return nil
}

func loadWasm(ctx context.Context, rt *runtime.Runtime, file, global string) (*wasmbind.Module, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read wasm: %w", err)
	}
	mod, err := wasmbind.Load(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("load wasm: %w", err)
	}
	if err := mod.Install(rt.CallContext, rt.Context(), global); err != nil {
		return nil, multierr.Append(fmt.Errorf("install wasm: %w", err), mod.Close(ctx))
	}
	return mod, nil
}

// readSource picks the script to run: -e, then -script, then piped stdin.
func readSource(scriptFile, expr string, interactive bool) (string, string, error) {
	switch {
	case expr != "":
		return expr, "", nil
	case scriptFile != "":
		data, err := os.ReadFile(scriptFile)
		if err != nil {
			return "", "", fmt.Errorf("read script: %w", err)
		}
		return string(data), scriptFile, nil
	case interactive:
		return "", "", nil
	case term.IsTerminal(int(os.Stdin.Fd())):
		return "", "", fmt.Errorf("no script given; use -script, -e, -i or pipe source on stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), "<stdin>", nil
}

func evalAndPrint(ctx context.Context, rt *runtime.Runtime, source, label string) error {
	v, err := rt.Eval(ctx, source, label)
	if err != nil {
		return err
	}
	if v.IsUndefined() {
		return nil
	}
	s, err := v.ToString()
	if err != nil {
		return err
	}
	fmt.Println(s)
	return nil
}
