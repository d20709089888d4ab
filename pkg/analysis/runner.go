package analysis

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ritzau/jdeps-cycles/pkg/config"
	"github.com/ritzau/jdeps-cycles/pkg/cycles"
	"github.com/ritzau/jdeps-cycles/pkg/graph"
	"github.com/ritzau/jdeps-cycles/pkg/jdeps"
	"github.com/ritzau/jdeps-cycles/pkg/logging"
	"github.com/ritzau/jdeps-cycles/pkg/output"
)

// Runner orchestrates the analysis process
type Runner struct {
	cfg       *config.Config
	executor  jdeps.Executor
	reporters []output.Reporter
	stdin     io.Reader
	mu        sync.Mutex // Prevent concurrent analysis runs
}

// NewRunner creates a runner. Every cycle found is forwarded to the reporters.
func NewRunner(cfg *config.Config, executor jdeps.Executor, reporters ...output.Reporter) *Runner {
	return &Runner{
		cfg:       cfg,
		executor:  executor,
		reporters: reporters,
		stdin:     os.Stdin,
	}
}

// FindCycles builds the dependency graph from jdeps (or a saved report when
// an input is configured) and reports its cycles.
func (r *Runner) FindCycles(ctx context.Context) (*output.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := &output.Report{
		RunID:     uuid.NewString(),
		Classes:   r.cfg.Classes,
		StartedAt: time.Now(),
		Tangles:   make([][]string, 0),
	}
	logger := logging.New("analysis").With("run", report.RunID[:8])

	// Build phase
	g := graph.New()
	extractor := jdeps.NewExtractor(g)

	if r.cfg.Input != "" {
		logger.Info("reading jdeps report", "input", r.cfg.Input)
		if err := r.readInput(extractor); err != nil {
			return nil, err
		}
	} else {
		logger.Info("running jdeps", "classes", r.cfg.Classes)
		if err := r.runJDeps(ctx, extractor.Line); err != nil {
			return nil, err
		}
	}

	logger.Info("dependency graph built",
		"lines", extractor.Lines(), "nodes", g.NodeCount(), "edges", g.EdgeCount())

	// Analysis phase
	collector := output.NewCollector()
	reporters := append([]output.Reporter{collector}, r.reporters...)
	reporter := output.Multi(reporters...)

	count := cycles.FindCycles(g, reporter)
	reporter.Done(count)

	tangles := cycles.FindTangles(g)
	for _, t := range tangles {
		report.Tangles = append(report.Tangles, t.Members)
	}
	if len(tangles) > 0 {
		logger.Debug("strongly connected packages", "tangles", len(tangles), "largest", len(tangles[0].Members))
	}

	report.Lines = extractor.Lines()
	report.Nodes = g.NodeCount()
	report.Edges = g.EdgeCount()
	report.Count = count
	report.Cycles = output.NewCycles(collector.Cycles)
	report.DurationMs = time.Since(report.StartedAt).Milliseconds()

	if r.cfg.JSON != "" {
		if err := output.WriteJSONFile(r.cfg.JSON, report); err != nil {
			return report, err
		}
		logger.Info("wrote JSON report", "path", r.cfg.JSON)
	}

	return report, nil
}

// PassThrough runs jdeps and forwards its report unchanged, to the
// configured output file or, without one, to the log.
func (r *Runner) PassThrough(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cfg.Output == "" {
		return r.runJDeps(ctx, func(line string) { logging.Info(line) })
	}

	f, err := os.Create(r.cfg.Output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", r.cfg.Output, err)
	}

	writeErr := r.runJDepsTo(ctx, f)
	if err := f.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("closing %s: %w", r.cfg.Output, err)
	}
	if writeErr != nil {
		return writeErr
	}

	logging.Info("wrote jdeps report", "path", r.cfg.Output)
	return nil
}

// runJDeps runs jdeps, handing every stdout line to line
func (r *Runner) runJDeps(ctx context.Context, line func(string)) error {
	stdout := jdeps.NewLineWriter(line)
	err := r.runJDepsTo(ctx, stdout)
	_ = stdout.Close()
	return err
}

// runJDepsTo runs jdeps with stdout going to w. Diagnostics on stderr are
// logged; other stderr lines are logged as errors.
func (r *Runner) runJDepsTo(ctx context.Context, w io.Writer) error {
	stderr := jdeps.NewLineWriter(jdeps.Diagnostics(func(line string) { logging.Error(line) }))
	defer stderr.Close()

	args := jdeps.BuildArgs(jdeps.OptionsFromConfig(r.cfg))
	if err := r.executor.Run(ctx, args, w, stderr); err != nil {
		return fmt.Errorf("running jdeps: %w", err)
	}
	return nil
}

func (r *Runner) readInput(extractor *jdeps.Extractor) error {
	if r.cfg.Input == "-" {
		return extractor.Read(r.stdin)
	}

	f, err := os.Open(r.cfg.Input)
	if err != nil {
		return fmt.Errorf("opening jdeps report: %w", err)
	}
	defer func() { _ = f.Close() }()

	return extractor.Read(f)
}
