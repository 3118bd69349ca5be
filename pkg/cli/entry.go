// Package cli implements the liftc command: load a typed AST bundle, run
// the lowering pipeline, and print, encode or execute the result.
package cli

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/funvibe/liftc/internal/analyzer"
	"github.com/funvibe/liftc/internal/ast"
	"github.com/funvibe/liftc/internal/buildcache"
	"github.com/funvibe/liftc/internal/codegen"
	"github.com/funvibe/liftc/internal/config"
	"github.com/funvibe/liftc/internal/diagnostics"
	"github.com/funvibe/liftc/internal/ir"
	"github.com/funvibe/liftc/internal/lifter"
	"github.com/funvibe/liftc/internal/logging"
	"github.com/funvibe/liftc/internal/pipeline"
	"github.com/funvibe/liftc/internal/runtime"
)

const usage = `usage: liftc [flags] <program.astb>

Lowers a typed AST bundle (produced by a front-end with liftc's ast package)
into a module with a flat function table and explicit closure operations.

flags:
  -config path   config file (default: liftc.yaml if present)
  -o path        write the binary artifact
  -disasm        print the lowered module
  -run           execute the module's entry expression
  -log-debug     set log level to debug
`

// Entry is the CLI entry point. Returns the process exit code.
func Entry(args []string) int {
	fs := flag.NewFlagSet("liftc", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	configPath := fs.String("config", "", "config file path")
	outPath := fs.String("o", "", "artifact output path")
	disasm := fs.Bool("disasm", false, "print the lowered module")
	run := fs.Bool("run", false, "execute the entry expression")
	logDebug := fs.Bool("log-debug", false, "set log level to debug")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	closeLogs, err := logging.Setup(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLogs()
	if *logDebug {
		logging.SetDebug()
	}

	program, err := readProgram(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var cache *buildcache.Cache
	ctx := pipeline.NewPipelineContext(program)
	if cfg.Cache != "" {
		cache, err = buildcache.Open(cfg.Cache)
		if err != nil {
			slog.Warn("build cache unavailable", "path", cfg.Cache, "error", err)
		} else {
			defer cache.Close()
			if hints, err := cache.IndexHints(); err == nil {
				ctx.IndexHints = hints
			} else {
				slog.Warn("build cache unreadable", "error", err)
			}
		}
	}

	ctx = pipeline.New(
		&analyzer.Processor{},
		&lifter.Processor{},
		&codegen.Processor{},
	).Run(ctx)

	if len(ctx.Errors) > 0 {
		reportErrors(ctx.Errors)
		return 1
	}
	mod := ctx.Module

	if cache != nil {
		if err := cache.Store(mod); err != nil {
			slog.Warn("build cache not updated", "error", err)
		}
	}

	if *disasm {
		fmt.Print(ir.Disassemble(mod))
	}

	if *outPath != "" {
		artifact, err := ir.EncodeModule(mod)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if err := os.WriteFile(*outPath, artifact, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		slog.Info("artifact written", "path", *outPath, "bytes", len(artifact), "build_id", mod.BuildID)
	}

	if *run {
		vm := runtime.NewMachine(mod, runtime.Options{
			MemorySize:  cfg.ArenaSize,
			DebugChecks: cfg.DebugChecks,
		})
		result, err := vm.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
			return 1
		}
		fmt.Println(formatValue(result))
	}

	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		if _, err := os.Stat(config.ConfigFileName); err == nil {
			path = config.ConfigFileName
		}
	}
	if path == "" {
		return config.Default().WithEnvOverrides(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	return cfg.WithEnvOverrides(), nil
}

func readProgram(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ast.DecodeProgram(data)
}

// reportErrors prints diagnostics, colored when stderr is a terminal.
func reportErrors(errors []*diagnostics.DiagnosticError) {
	colored := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	for _, e := range errors {
		if colored {
			fmt.Fprintf(os.Stderr, "\x1b[31mError:\x1b[0m %s\n", e.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", e.Error())
		}
	}
}

func formatValue(v runtime.Value) string {
	switch v.Kind {
	case runtime.KindF64:
		return fmt.Sprintf("%g", v.F64())
	case runtime.KindBool:
		return fmt.Sprintf("%v", v.Bool())
	case runtime.KindClosure:
		return fmt.Sprintf("<closure @%d>", v.Addr())
	default:
		return fmt.Sprintf("%d", v.I64())
	}
}
