package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ritzau/jdeps-cycles/pkg/analysis"
	"github.com/ritzau/jdeps-cycles/pkg/config"
	"github.com/ritzau/jdeps-cycles/pkg/jdeps"
	"github.com/ritzau/jdeps-cycles/pkg/logging"
	"github.com/ritzau/jdeps-cycles/pkg/output"
	"github.com/ritzau/jdeps-cycles/pkg/watcher"
	"github.com/ritzau/jdeps-cycles/pkg/web"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := config.NewFlagSet("jdeps-cycles")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: jdeps-cycles [flags] [classes]\n\n")
		fmt.Fprintf(os.Stderr, "Runs jdeps on compiled classes and reports package dependency cycles.\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		logging.Error("invalid configuration", "error", err)
		return 2
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		logging.Error("invalid configuration", "error", err)
		return 2
	}
	if cfg.LogJSON {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	executor := jdeps.NewExecutor(jdeps.ResolveBinary(cfg.JDeps))

	if cfg.Mode == config.ModeReport {
		if err := analysis.NewRunner(cfg, executor).PassThrough(ctx); err != nil {
			reportError(err)
			return 1
		}
		return 0
	}

	runner := analysis.NewRunner(cfg, executor, reporters(cfg)...)

	if cfg.Web || cfg.Watch {
		if err := serve(ctx, cfg, runner); err != nil {
			reportError(err)
			return 1
		}
		return 0
	}

	report, err := runner.FindCycles(ctx)
	if err != nil {
		reportError(err)
		return 1
	}
	if cfg.FailOnCycles && report.Count > 0 {
		return 1
	}
	return 0
}

func reporters(cfg *config.Config) []output.Reporter {
	if cfg.Console {
		return []output.Reporter{output.NewConsoleReporter(os.Stdout, cfg.Color)}
	}
	return []output.Reporter{&output.LogReporter{Multiline: true}}
}

func reportError(err error) {
	switch {
	case errors.Is(err, jdeps.ErrToolNotFound):
		logging.Error("jdeps not found, set --jdeps or JAVA_HOME", "error", err)
	case errors.Is(err, context.Canceled):
		logging.Warn("interrupted")
	default:
		logging.Error("analysis failed", "error", err)
	}
}

// serve runs the long-lived modes: an HTTP server for the latest report,
// re-analysis on class changes, or both. It returns when ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, runner *analysis.Runner) error {
	var server *web.Server
	if cfg.Web {
		server = web.NewServer(runner)
	}

	analyze := func() {
		report, err := runner.FindCycles(ctx)
		if err != nil {
			reportError(err)
			return
		}
		if server != nil {
			server.SetReport(report)
		}
	}

	errCh := make(chan error, 1)
	if server != nil {
		go func() { errCh <- server.Start(ctx, cfg.Port) }()
	}

	analyze()

	var changes <-chan watcher.ChangeEvent
	if cfg.Watch {
		if cfg.Input != "" {
			logging.Warn("watch ignored when reading a saved report", "input", cfg.Input)
		} else {
			fw, err := watcher.NewFileWatcher(cfg.Classes)
			if err != nil {
				return err
			}
			if err := fw.Start(ctx); err != nil {
				return err
			}
			debouncer := watcher.NewDebouncer(fw.Events(), cfg.QuietPeriod, watcher.DefaultMaxWait)
			debouncer.Start(ctx)
			changes = debouncer.Output()
		}
	}

	for {
		select {
		case <-ctx.Done():
			if server != nil {
				return <-errCh
			}
			return nil

		case err := <-errCh:
			if err == nil {
				return nil
			}
			return fmt.Errorf("web server: %w", err)

		case ev, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			logging.Info("classes changed, re-running analysis", "type", ev.Type.String(), "files", len(ev.Paths))
			analyze()
		}
	}
}
