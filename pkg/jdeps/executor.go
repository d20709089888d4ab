package jdeps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/ritzau/jdeps-cycles/pkg/logging"
)

var (
	// ErrToolNotFound is returned when the jdeps executable cannot be located
	ErrToolNotFound = errors.New("no jdeps tool found")

	// ErrAnalysisFailed is returned when jdeps exits with a non-zero status
	ErrAnalysisFailed = errors.New("dependency analysis failed")
)

// Executor runs jdeps
type Executor interface {
	// Run executes jdeps with args, streaming its standard output and error.
	// It respects the provided context for cancellation.
	Run(ctx context.Context, args []string, stdout, stderr io.Writer) error
}

// DefaultExecutor is the default implementation of Executor that runs actual commands
type DefaultExecutor struct {
	Binary string
}

// NewExecutor creates an executor for the given jdeps binary
func NewExecutor(binary string) Executor {
	return &DefaultExecutor{Binary: binary}
}

func (e *DefaultExecutor) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	path, err := exec.LookPath(e.Binary)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrToolNotFound, e.Binary, err)
	}

	logging.Debug("running jdeps", "path", path, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return fmt.Errorf("%w: exit status %d", ErrAnalysisFailed, exitErr.ExitCode())
		}
		return fmt.Errorf("running %s: %w", e.Binary, err)
	}

	return nil
}
